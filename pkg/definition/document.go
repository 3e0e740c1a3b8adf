package definition

import (
	"errors"
	"path"
	"strings"
)

// Format names the encoding of a definition document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Document is a raw definition payload and its origin.
type Document struct {
	source Source
	raw    []byte
	format Format
}

// NewDocument wraps raw. The format is taken from the location's extension
// and defaults to JSON.
func NewDocument(src Source, raw []byte) (Document, error) {
	if src == nil {
		return Document{}, errors.New("definition: source is required")
	}
	if len(raw) == 0 {
		return Document{}, errors.New("definition: document is empty")
	}
	return Document{
		source: src,
		raw:    append([]byte(nil), raw...),
		format: formatOf(src.Location()),
	}, nil
}

// Source returns the origin of the document.
func (d Document) Source() Source { return d.source }

// Raw returns a copy of the payload.
func (d Document) Raw() []byte { return append([]byte(nil), d.raw...) }

// Format reports the payload encoding.
func (d Document) Format() Format { return d.format }

// Location returns the origin as a string.
func (d Document) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}

func formatOf(location string) Format {
	if i := strings.IndexAny(location, "?#"); i >= 0 {
		location = location[:i]
	}
	switch strings.ToLower(path.Ext(location)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}
