// Package state holds the mutable values and validity flags of one form
// session. A Store is owned by its session; there is no package-level
// instance.
package state
