package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"

	"github.com/Dun-Njuguna/form-steward-sub000/pkg/model"
	"github.com/Dun-Njuguna/form-steward-sub000/pkg/parser"
)

// ErrNoOperations is returned when no operation with a usable request body
// was selected.
var ErrNoOperations = errors.New("openapi: no operations with a JSON object request body")

// ImportOptions controls Import.
type ImportOptions struct {
	// FormName defaults to the document's info.title.
	FormName string
	// Operations selects operationIds in step order. Empty means every
	// operation with an object request body, ordered by path then method.
	Operations []string
	// Labeler derives labels for properties without a title.
	Labeler model.Labeler
	// Validate runs the kin-openapi document validation first.
	Validate bool
	Logger   *zap.Logger
}

type operation struct {
	id      string
	method  string
	path    string
	summary string
	schema  *openapi3.Schema
}

var methodOrder = []string{"POST", "PUT", "PATCH", "GET", "DELETE", "HEAD", "OPTIONS", "TRACE"}

// Import loads raw (JSON or YAML) and builds a definition from the selected
// operations. The result passes through the definition parser so it carries
// the same guarantees as a hand written definition.
func Import(ctx context.Context, raw []byte, opts ImportOptions) (model.FormDefinition, error) {
	if err := ctx.Err(); err != nil {
		return model.FormDefinition{}, err
	}
	if len(raw) == 0 {
		return model.FormDefinition{}, errors.New("openapi: document payload is empty")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	labeler := opts.Labeler
	if labeler == nil {
		labeler = model.DefaultLabeler
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return model.FormDefinition{}, fmt.Errorf("openapi: load document: %w", err)
	}
	if opts.Validate {
		if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return model.FormDefinition{}, fmt.Errorf("openapi: validate: %w", err)
		}
	}

	ops, err := selectOperations(collectOperations(doc), opts.Operations)
	if err != nil {
		return model.FormDefinition{}, err
	}

	def := model.FormDefinition{FormName: opts.FormName}
	if def.FormName == "" && doc.Info != nil {
		def.FormName = doc.Info.Title
	}

	b := &builder{labeler: labeler, logger: logger, nextID: 1}
	for i, op := range ops {
		title := op.summary
		if title == "" {
			title = labeler(op.id)
		}
		step := model.Step{ID: i + 1, Name: op.id, Title: title, Fields: b.fields(op.schema)}
		if len(step.Fields) == 0 {
			logger.Warn("operation has no importable properties", zap.String("operation", op.id))
			continue
		}
		def.Steps = append(def.Steps, step)
	}
	if len(def.Steps) == 0 {
		return model.FormDefinition{}, ErrNoOperations
	}
	def.Dependencies = b.deps

	// round trip through the parser for its structural checks
	payload, err := parser.Serialize(def)
	if err != nil {
		return model.FormDefinition{}, err
	}
	return parser.Parse(payload, parser.WithLogger(logger))
}

func collectOperations(doc *openapi3.T) map[string]operation {
	out := make(map[string]operation)
	if doc.Paths == nil {
		return out
	}
	for path, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op == nil {
				continue
			}
			schema := requestSchema(op.RequestBody)
			if schema == nil {
				continue
			}
			id := op.OperationID
			if id == "" {
				id = syntheticID(method, path)
			}
			out[id] = operation{id: id, method: method, path: path, summary: op.Summary, schema: schema}
		}
	}
	return out
}

func selectOperations(all map[string]operation, wanted []string) ([]operation, error) {
	if len(wanted) > 0 {
		ops := make([]operation, 0, len(wanted))
		for _, id := range wanted {
			op, ok := all[id]
			if !ok {
				return nil, fmt.Errorf("openapi: operation %q not found or has no JSON object request body", id)
			}
			ops = append(ops, op)
		}
		return ops, nil
	}

	ops := make([]operation, 0, len(all))
	for _, op := range all {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool {
		if ops[i].path != ops[j].path {
			return ops[i].path < ops[j].path
		}
		return methodRank(ops[i].method) < methodRank(ops[j].method)
	})
	if len(ops) == 0 {
		return nil, ErrNoOperations
	}
	return ops, nil
}

func requestSchema(body *openapi3.RequestBodyRef) *openapi3.Schema {
	if body == nil || body.Value == nil {
		return nil
	}
	content := body.Value.Content
	for _, mime := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if mt := content.Get(mime); mt != nil && mt.Schema != nil && mt.Schema.Value != nil {
			if isType(mt.Schema.Value, openapi3.TypeObject) || len(mt.Schema.Value.Properties) > 0 {
				return mt.Schema.Value
			}
		}
	}
	return nil
}

func methodRank(method string) int {
	for i, m := range methodOrder {
		if m == method {
			return i
		}
	}
	return len(methodOrder)
}

func syntheticID(method, path string) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(method))
	for _, r := range path {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return strings.TrimRight(b.String(), "_")
}
