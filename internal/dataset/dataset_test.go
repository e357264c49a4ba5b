package dataset

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tinyCSV = `name,score,team
ada,9.5,red
bob,7,blue
cy,8.25,red
dee,6,green
`

func loadSample(t *testing.T) *Dataset {
	t.Helper()
	f, err := os.Open(filepath.Join("..", "..", "data", "sample.csv"))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	d, err := ReadCSV(f)
	require.NoError(t, err)
	return d
}

func TestReadCSV(t *testing.T) {
	d, err := ReadCSV(strings.NewReader(tinyCSV))
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "score", "team"}, d.Columns())
	assert.Equal(t, 4, d.Len())
	assert.Equal(t, []string{"bob", "7", "blue"}, d.Records()[1])

	kind, err := d.Kind("score")
	require.NoError(t, err)
	assert.Equal(t, KindNumber, kind)

	kind, err = d.Kind("team")
	require.NoError(t, err)
	assert.Equal(t, KindText, kind)
}

func TestReadCSV_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty input", input: ""},
		{name: "ragged rows", input: "a,b\n1,2\n3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrParse)
		})
	}
}

func TestReadCSV_HeaderOnly(t *testing.T) {
	d, err := ReadCSV(strings.NewReader("species,x\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"species", "x"}, d.Columns())
	assert.Equal(t, 0, d.Len())
	assert.Empty(t, d.Records())

	xs, err := d.Floats("x")
	require.NoError(t, err)
	assert.Empty(t, xs)

	var buf bytes.Buffer
	require.NoError(t, d.WriteCSV(&buf))
	assert.Equal(t, "species,x", strings.TrimSpace(buf.String()))

	_, err = ReadCSV(strings.NewReader("x,x\n"))
	assert.ErrorIs(t, err, ErrParse)
}

func TestReadCSV_NonFiniteIsText(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "positive infinity", input: "x\n1\nInf\n"},
		{name: "negative infinity", input: "x\n-inf\n2\n"},
		{name: "not a number", input: "x\nNaN\n2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ReadCSV(strings.NewReader(tt.input))
			require.NoError(t, err)

			kind, err := d.Kind("x")
			require.NoError(t, err)
			assert.Equal(t, KindText, kind)

			_, err = d.Floats("x")
			assert.ErrorIs(t, err, ErrInvalidColumn)
		})
	}
}

func TestSample_Shape(t *testing.T) {
	d := loadSample(t)

	assert.Equal(t, 150, d.Len())
	assert.Equal(t, []string{"sepal_length", "sepal_width", "petal_length", "petal_width", "species"}, d.Columns())

	species, err := d.Distinct("species")
	require.NoError(t, err)
	assert.Equal(t, []string{"setosa", "versicolor", "virginica"}, species)

	widths, err := d.Floats("petal_width")
	require.NoError(t, err)
	assert.Len(t, widths, 150)
	assert.InDelta(t, 0.2, widths[0], 1e-9)
}

func TestFloats_RejectsText(t *testing.T) {
	d, err := ReadCSV(strings.NewReader(tinyCSV))
	require.NoError(t, err)

	_, err = d.Floats("team")
	assert.ErrorIs(t, err, ErrInvalidColumn)

	_, err = d.Floats("missing")
	assert.ErrorIs(t, err, ErrInvalidColumn)
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	d, err := ReadCSV(strings.NewReader(tinyCSV))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, d.WriteCSV(&buf))

	back, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.True(t, Equal(d, back))
}

func TestWriteCSV_Empty(t *testing.T) {
	d, err := ReadCSV(strings.NewReader(tinyCSV))
	require.NoError(t, err)

	none, err := Filter(d, "team", "purple")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, none.WriteCSV(&buf))
	assert.Equal(t, "name,score,team", strings.TrimSpace(buf.String()))
}

func TestEqual(t *testing.T) {
	a, err := ReadCSV(strings.NewReader(tinyCSV))
	require.NoError(t, err)
	b, err := ReadCSV(strings.NewReader(tinyCSV))
	require.NoError(t, err)
	c, err := FromRecords([][]string{{"name", "score", "team"}, {"ada", "9.5", "red"}})
	require.NoError(t, err)

	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, c))
	assert.False(t, Equal(a, nil))
	assert.True(t, Equal(nil, nil))
}
