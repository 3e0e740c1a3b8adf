// Package formsteward loads JSON or YAML form definitions and runs
// multi-step fills over them.
//
//	loader := formsteward.NewLoader(definition.WithHTTPFallback(10 * time.Second))
//	def, err := formsteward.Load(ctx, loader, definition.FromFile("signup.json"))
//	if err != nil { ... }
//	s := session.New(def, session.WithFetcher(options.NewHTTPFetcher()))
package formsteward

import (
	"context"
	"fmt"

	internalloader "github.com/Dun-Njuguna/form-steward-sub000/internal/definition/loader"
	"github.com/Dun-Njuguna/form-steward-sub000/pkg/definition"
	"github.com/Dun-Njuguna/form-steward-sub000/pkg/model"
	"github.com/Dun-Njuguna/form-steward-sub000/pkg/parser"
)

// NewLoader constructs a definition loader while keeping the concrete type
// internal.
func NewLoader(options ...definition.LoaderOption) definition.Loader {
	return internalloader.New(definition.NewLoaderOptions(options...))
}

// Load reads src through loader and parses it.
func Load(ctx context.Context, loader definition.Loader, src definition.Source, opts ...parser.Option) (model.FormDefinition, error) {
	if loader == nil {
		loader = NewLoader()
	}
	doc, err := loader.Load(ctx, src)
	if err != nil {
		return model.FormDefinition{}, err
	}
	return ParseDocument(doc, opts...)
}

// ParseDocument parses a loaded document according to its format.
func ParseDocument(doc definition.Document, opts ...parser.Option) (model.FormDefinition, error) {
	var (
		def model.FormDefinition
		err error
	)
	switch doc.Format() {
	case definition.FormatYAML:
		def, err = parser.ParseYAML(doc.Raw(), opts...)
	default:
		def, err = parser.Parse(doc.Raw(), opts...)
	}
	if err != nil {
		return model.FormDefinition{}, fmt.Errorf("%s: %w", doc.Location(), err)
	}
	return def, nil
}
