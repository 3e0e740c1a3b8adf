package formsteward

import (
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed forms/*.json forms/*.yaml
var embeddedForms embed.FS

// ExampleForms exposes the bundled sample definitions, keyed by file name
// (registration.json, vehicle.yaml).
func ExampleForms() fs.FS {
	sub, err := fs.Sub(embeddedForms, "forms")
	if err != nil {
		return embeddedForms
	}
	return sub
}

// ExampleNames lists the bundled definitions without their extension.
func ExampleNames() []string {
	entries, err := fs.ReadDir(ExampleForms(), ".")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, strings.TrimSuffix(entry.Name(), path.Ext(entry.Name())))
	}
	sort.Strings(names)
	return names
}

// ExampleFile returns the file name of a bundled definition.
func ExampleFile(name string) (string, bool) {
	entries, err := fs.ReadDir(ExampleForms(), ".")
	if err != nil {
		return "", false
	}
	for _, entry := range entries {
		if strings.TrimSuffix(entry.Name(), path.Ext(entry.Name())) == name {
			return entry.Name(), true
		}
	}
	return "", false
}
