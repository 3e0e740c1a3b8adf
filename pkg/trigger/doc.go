// Package trigger implements the "validate now" broadcast that lets a step
// ask its field owners to re-check themselves without holding references to
// them. Trigger returns only after every subscriber has reacted, so a caller
// can read step validity immediately afterwards.
package trigger
