package school

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

// ErrSeedUnavailable is fatal at boot: without a document nothing can run.
var ErrSeedUnavailable = errors.New("seed resource unavailable")

type (
	// SeedFetcher retrieves the raw static seed document, once.
	SeedFetcher interface {
		Fetch(ctx context.Context) ([]byte, error)
	}

	// Loader loads the document from storage, falling back to the seed
	// resource on first run.
	Loader struct {
		mu      sync.Mutex
		storage Storage
		fetcher SeedFetcher
		logger  core.Logger
		doc     *Document
	}
)

func NewLoader(storage Storage, fetcher SeedFetcher, logger core.Logger) *Loader {
	return &Loader{storage: storage, fetcher: fetcher, logger: logger}
}

// EnsureLoaded returns the document from storage if present, otherwise
// fetches the seed, defaults missing collections and persists the result.
// Idempotent: subsequent calls return the same in-memory document without
// re-fetching.
func (l *Loader) EnsureLoaded(ctx context.Context) (*Document, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.doc != nil {
		return l.doc, nil
	}

	raw, err := l.storage.Get(ctx)
	switch {
	case err == nil:
		doc := new(Document)
		if err := json.Unmarshal(raw, doc); err != nil {
			return nil, errors.Wrap(err, "parsing stored document")
		}
		doc.Normalize()
		l.doc = doc
		return doc, nil
	case errors.Cause(err) == ErrDocumentNotFound:
		// first run; fall through to the seed
	default:
		return nil, errors.Wrap(err, "reading stored document")
	}

	l.logger.Info("no stored document; loading seed")
	raw, err = l.fetcher.Fetch(ctx)
	if err != nil {
		return nil, errors.Wrap(ErrSeedUnavailable, err.Error())
	}
	doc := new(Document)
	if err := json.Unmarshal(raw, doc); err != nil {
		return nil, errors.Wrap(ErrSeedUnavailable, err.Error())
	}
	doc.Normalize()

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling seeded document")
	}
	if err := l.storage.Put(ctx, data); err != nil {
		return nil, errors.Wrap(err, "persisting seeded document")
	}
	l.doc = doc
	return doc, nil
}

// Reset drops the in-memory document so the next EnsureLoaded call reads
// storage (or re-seeds) again; admin CLI only.
func (l *Loader) Reset() {
	l.mu.Lock()
	l.doc = nil
	l.mu.Unlock()
}

type (
	// HTTPFetcher fetches the seed with a single GET; no retry, no
	// cancellation beyond the request context.
	HTTPFetcher struct {
		URL    string
		Client *http.Client
	}

	// FileFetcher reads the seed from disk.
	FileFetcher struct {
		Path string
	}
)

var (
	_ SeedFetcher = (*HTTPFetcher)(nil)
	_ SeedFetcher = (*FileFetcher)(nil)
)

// NewFetcher picks a fetcher for the configured seed location.
func NewFetcher(conf *core.Config) SeedFetcher {
	if strings.HasPrefix(conf.SeedURL, "http://") || strings.HasPrefix(conf.SeedURL, "https://") {
		return &HTTPFetcher{URL: conf.SeedURL, Client: http.DefaultClient}
	}
	return &FileFetcher{Path: conf.SeedURL}
}

func (f *HTTPFetcher) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "building seed request")
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetching seed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("fetching seed: %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func (f *FileFetcher) Fetch(_ context.Context) ([]byte, error) {
	return os.ReadFile(f.Path)
}
