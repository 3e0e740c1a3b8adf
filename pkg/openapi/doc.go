// Package openapi turns the JSON request bodies of OpenAPI 3 operations into
// form definitions, one step per operation. Documents are read with
// kin-openapi; callers only see model types.
package openapi
