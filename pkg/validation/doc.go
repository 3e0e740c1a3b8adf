// Package validation evaluates field values against their declarative rules.
// Failures are data: a Result carries the verdict and the user-facing
// message, and no function here returns an error.
package validation
