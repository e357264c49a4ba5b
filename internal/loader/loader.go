package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/leapstack-labs/dataexplorer/internal/dataset"
)

// DefaultMaxPayloadBytes caps a remote response when Options leaves it unset.
const DefaultMaxPayloadBytes = 64 << 20

const userAgent = "dataexplorer/1 (+csv)"

var (
	// ErrRemoteFetchFailed covers network errors, timeouts, non-2xx statuses
	// and unusable payloads. Load recovers from it by reading the fallback.
	ErrRemoteFetchFailed = errors.New("remote fetch failed")

	// ErrLocalFileMissing is returned when the local CSV does not exist.
	ErrLocalFileMissing = errors.New("local file missing")

	// ErrParseFailure is returned when CSV text cannot be used as a dataset.
	ErrParseFailure = dataset.ErrParse

	// ErrDataUnavailable wraps every terminal load error: neither the remote
	// source nor the local file produced a dataset.
	ErrDataUnavailable = errors.New("data unavailable")
)

// Origin tells where a loaded dataset came from.
type Origin string

// Origins.
const (
	OriginRemote Origin = "remote"
	OriginLocal  Origin = "local"
)

// Options configures a Loader.
type Options struct {
	// Client performs the remote GET. Defaults to a plain http.Client; the
	// source timeout is applied through the request context.
	Client *http.Client
	Logger *slog.Logger
	// Required lists columns a payload must have to be accepted.
	Required []string
	// MaxPayloadBytes is the largest remote body accepted. A larger body is
	// a failed fetch.
	MaxPayloadBytes int64
}

// Loader turns a Source into a Dataset.
type Loader struct {
	client     *http.Client
	logger     *slog.Logger
	required   []string
	maxPayload int64
}

// New creates a Loader.
func New(opts Options) *Loader {
	client := opts.Client
	if client == nil {
		client = &http.Client{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	maxPayload := opts.MaxPayloadBytes
	if maxPayload <= 0 {
		maxPayload = DefaultMaxPayloadBytes
	}
	return &Loader{
		client:     client,
		logger:     logger,
		required:   opts.Required,
		maxPayload: maxPayload,
	}
}

// Load reads the dataset described by src. A remote source is tried once;
// any failure is logged and the fallback file is read instead. Only a failure
// of the local file is returned, wrapped in ErrDataUnavailable.
func (l *Loader) Load(ctx context.Context, src Source) (*dataset.Dataset, Origin, error) {
	start := time.Now()

	if src.Kind == KindRemote {
		d, err := l.fetch(ctx, src.Remote)
		if err == nil {
			l.logger.Info("dataset loaded",
				"origin", OriginRemote,
				"url", src.Remote.URL,
				"rows", d.Len(),
				"duration", time.Since(start))
			return d, OriginRemote, nil
		}
		l.logger.Warn("remote fetch failed, using local file",
			"url", src.Remote.URL,
			"fallback", src.Local.Path,
			"error", err)
	}

	d, err := l.readLocal(src.Local.Path)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrDataUnavailable, err)
	}
	l.logger.Info("dataset loaded",
		"origin", OriginLocal,
		"path", src.Local.Path,
		"rows", d.Len(),
		"duration", time.Since(start))
	return d, OriginLocal, nil
}

// fetch performs the single remote GET bounded by the source timeout.
func (l *Loader) fetch(ctx context.Context, r Remote) (*dataset.Dataset, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrRemoteFetchFailed, err)
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.1")
	req.Header.Set("User-Agent", userAgent)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRemoteFetchFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: unexpected status %s", ErrRemoteFetchFailed, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, l.maxPayload+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrRemoteFetchFailed, err)
	}
	if int64(len(body)) > l.maxPayload {
		return nil, fmt.Errorf("%w: payload exceeds %d bytes", ErrRemoteFetchFailed, l.maxPayload)
	}

	d, err := l.parse(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRemoteFetchFailed, err)
	}
	return d, nil
}

func (l *Loader) readLocal(path string) (*dataset.Dataset, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: no local path configured", ErrLocalFileMissing)
	}
	body, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrLocalFileMissing, path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	d, err := l.parse(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// parse turns CSV bytes into a dataset and checks the required columns.
func (l *Loader) parse(body []byte) (*dataset.Dataset, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrParseFailure)
	}
	d, err := dataset.ReadCSV(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	for _, col := range l.required {
		if !d.HasColumn(col) {
			return nil, fmt.Errorf("%w: missing column %q", ErrParseFailure, col)
		}
	}
	return d, nil
}
