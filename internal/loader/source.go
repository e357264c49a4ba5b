// Package loader reads the explorer's dataset from a remote URL or a local
// CSV file, falling back to the local file when the remote fetch fails.
package loader

import (
	"fmt"
	"time"
)

// DefaultTimeout bounds the remote fetch when a Remote source has no timeout.
const DefaultTimeout = 10 * time.Second

// Kind tags which variant a Source holds.
type Kind int

// Source kinds.
const (
	KindLocal Kind = iota
	KindRemote
)

func (k Kind) String() string {
	switch k {
	case KindLocal:
		return "local"
	case KindRemote:
		return "remote"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Local is a CSV file on disk.
type Local struct {
	Path string
}

// Remote is a CSV document fetched with a single HTTP GET.
type Remote struct {
	URL     string
	Timeout time.Duration
}

// Source is a tagged union of the places a dataset can come from.
// For KindRemote, Local names the fallback file.
type Source struct {
	Kind   Kind
	Remote Remote
	Local  Local
}

// LocalSource returns a source reading only the file at path.
func LocalSource(path string) Source {
	return Source{Kind: KindLocal, Local: Local{Path: path}}
}

// RemoteSource returns a source fetching url and falling back to the file at
// fallback.
func RemoteSource(url string, timeout time.Duration, fallback string) Source {
	return Source{
		Kind:   KindRemote,
		Remote: Remote{URL: url, Timeout: timeout},
		Local:  Local{Path: fallback},
	}
}

// NewSource picks the variant from configuration: a non-empty url means a
// remote source with the local path as fallback.
func NewSource(url, localPath string, timeout time.Duration) Source {
	if url == "" {
		return LocalSource(localPath)
	}
	return RemoteSource(url, timeout, localPath)
}

func (s Source) String() string {
	if s.Kind == KindRemote {
		return fmt.Sprintf("remote(%s, fallback %s)", s.Remote.URL, s.Local.Path)
	}
	return fmt.Sprintf("local(%s)", s.Local.Path)
}
