// Package definition describes where form definitions come from: sources,
// raw documents and the loader contract.
package definition
