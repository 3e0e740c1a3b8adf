package definition

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Source identifies where a form definition lives.
type Source interface {
	Kind() SourceKind
	Location() string
}

// SourceKind enumerates the loader modalities.
type SourceKind string

const (
	SourceKindFile SourceKind = "file"
	SourceKindFS   SourceKind = "fs"
	SourceKindURL  SourceKind = "url"
)

type source struct {
	kind     SourceKind
	location string
}

func (s source) Kind() SourceKind { return s.kind }
func (s source) Location() string { return s.location }

// FromFile points at a definition on disk.
func FromFile(path string) Source {
	return source{kind: SourceKindFile, location: filepath.Clean(path)}
}

// FromFS points at a definition inside the loader's fs.FS.
func FromFS(name string) Source {
	return source{kind: SourceKindFS, location: name}
}

// FromURL points at a definition served over HTTP(S).
func FromURL(raw string) (Source, error) {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return nil, fmt.Errorf("definition: invalid URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("definition: unsupported URL scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("definition: URL %q has no host", raw)
	}
	return source{kind: SourceKindURL, location: raw}, nil
}

// Parse turns a command line argument into a Source: http and https URLs
// become URL sources, everything else a file path.
func Parse(arg string) (Source, error) {
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		return FromURL(arg)
	}
	if strings.TrimSpace(arg) == "" {
		return nil, fmt.Errorf("definition: empty source")
	}
	return FromFile(arg), nil
}
