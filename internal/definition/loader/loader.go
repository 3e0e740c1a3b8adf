package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/Dun-Njuguna/form-steward-sub000/pkg/definition"
)

// Loader implements definition.Loader with file, fs.FS and HTTP strategies.
type Loader struct {
	fs      fs.FS
	http    *http.Client
	timeout time.Duration
}

var _ definition.Loader = (*Loader)(nil)

// New constructs a Loader from resolved options.
func New(options definition.LoaderOptions) *Loader {
	timeout := options.RequestTimeout

	var client *http.Client
	switch {
	case options.HTTPClient != nil:
		clone := *options.HTTPClient
		if timeout > 0 && clone.Timeout == 0 {
			clone.Timeout = timeout
		}
		client = &clone
	case options.AllowHTTPFallback:
		client = &http.Client{Timeout: timeout}
	}

	return &Loader{fs: options.FileSystem, http: client, timeout: timeout}
}

// Load reads src and wraps the payload in a Document.
func (l *Loader) Load(ctx context.Context, src definition.Source) (definition.Document, error) {
	if src == nil {
		return definition.Document{}, errors.New("definition loader: source is nil")
	}

	var (
		data []byte
		err  error
	)
	switch src.Kind() {
	case definition.SourceKindFile:
		data, err = loadFile(ctx, src.Location())
	case definition.SourceKindFS:
		data, err = loadFromFS(ctx, l.fs, src.Location())
	case definition.SourceKindURL:
		if l.http == nil {
			return definition.Document{}, errors.New("definition loader: http sources are disabled")
		}
		data, err = loadHTTP(ctx, l.http, src.Location(), l.timeout)
	default:
		err = fmt.Errorf("definition loader: unsupported source kind %q", src.Kind())
	}
	if err != nil {
		return definition.Document{}, err
	}
	return definition.NewDocument(src, data)
}
