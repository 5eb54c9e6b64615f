// Package testdata loads tabular test data for data-driven scenarios.
//
// CSV, JSON, and YAML files are normalized into ordered records and
// flattened into positional tuples. The key order of the first record
// defines the canonical column order; every record is flattened against
// that order, so all records are expected to share the first record's
// key set.
package testdata
