// Package report turns raw expense records into period summaries and compares
// two periods category by category.
//
// Aggregation reads from a DataSource and zero-fills every catalog category, so
// two summaries built from the same catalog always share one key set. Comparison
// is a pure function of two summaries: it computes deltas and percent changes,
// buckets each change into a Severity, and ranks categories by absolute delta.
package report
