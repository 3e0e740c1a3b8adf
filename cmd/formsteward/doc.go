// Command formsteward inspects, checks and fills JSON or YAML form
// definitions from the terminal.
//
// Configuration is read from built-in defaults, a .env file, an optional
// YAML file (--config) and FORMSTEWARD_ environment variables, in that
// order. Definitions are given as a file path, an http(s) URL or, with
// --example, the name of a bundled sample.
package main
