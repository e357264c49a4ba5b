package cli

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/dataexplorer/internal/cli/testutil"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cfgFile = ""
	cmd := NewRootCmd()
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCommands(t *testing.T) {
	cmd := NewRootCmd()
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"serve", "show", "export", "init", "version", "completion"} {
		assert.Contains(t, names, want)
	}
}

func TestRoot_FlagsOverrideConfig(t *testing.T) {
	testutil.SetupTestProject(t)
	require.NoError(t, os.WriteFile("dataexplorer.yaml", []byte("output: json\n"), 0o600))

	out, _, err := run(t, "show", "--species", "setosa", "-o", "csv")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "sepal_length,"), out)
	assert.Equal(t, 51, strings.Count(out, "\n"))
}

func TestRoot_DotEnv(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	require.NoError(t, os.Rename("data/sample.csv", "iris.csv"))
	require.NoError(t, os.WriteFile(".env", []byte("DATAEXPLORER_LOCAL_PATH=iris.csv\nDATAEXPLORER_OUTPUT=csv\n"), 0o600))
	t.Cleanup(func() {
		_ = os.Unsetenv("DATAEXPLORER_LOCAL_PATH")
		_ = os.Unsetenv("DATAEXPLORER_OUTPUT")
	})

	out, _, err := run(t, "show", "--species", "virginica")
	require.NoError(t, err)
	assert.Equal(t, 51, strings.Count(out, "\n"))
	assert.NoFileExists(t, dir+"/data/sample.csv")
}

func TestRoot_UnknownKeysWarn(t *testing.T) {
	testutil.SetupTestProject(t)
	require.NoError(t, os.WriteFile("dataexplorer.yaml", []byte("output: csv\ncolour_column: species\n"), 0o600))

	_, errOut, err := run(t, "show")
	require.NoError(t, err)
	assert.Contains(t, errOut, "colour_column")
}

func TestRoot_InvalidConfig(t *testing.T) {
	testutil.SetupTestProject(t)

	_, _, err := run(t, "show", "--data-url", "ftp://example.com/iris.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data_url")
}

func TestCompletionCommand(t *testing.T) {
	out, _, err := run(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "dataexplorer")
}
