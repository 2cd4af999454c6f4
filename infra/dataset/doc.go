// Package dataset loads fleet journey tables from CSV, YAML, JSON or SQLite
// sources. Every row is validated before it reaches the compliance engine.
package dataset
