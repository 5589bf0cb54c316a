// Package types defines the Store and Dataset interfaces, the schema and
// table model, and the standard errors for shopkeep.
//
// A Dataset is a named flat table with a fixed Schema backed by one CSV file.
// Callers never touch the file directly: every read goes through Ensure,
// which reconciles the file against the Schema before returning rows.
package types
