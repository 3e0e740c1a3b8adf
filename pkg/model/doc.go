// Package model defines the typed form definition shared by the parser, the
// validation evaluator, the state store and renderers. A FormDefinition is an
// ordered list of steps; each step holds ordered fields carrying a
// ValidationRule, optional static options or an option URL, and an optional
// default value. Dependencies link a dependent field to the parent whose value
// fills the dependent's option URL template. Definitions are treated as
// immutable once parsed.
package model
