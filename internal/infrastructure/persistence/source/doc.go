// Package source reads the billing source tables and maps each record to the ledger shape.
//
// Optional tables (manual entries, contractor payments, expenses) and optional columns are
// detected once at startup by Detect. Adapters for missing tables are never registered, and an
// adapter that still hits a missing relation reports no records instead of failing the run.
package source
