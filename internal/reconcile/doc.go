// Package reconcile merges per-class response tables and optional
// grade summary tables into one canonical, de-duplicated dataset keyed
// by the derived student identifier. It is the leaf component of the
// analysis pipeline: the statistics engine consumes its output and
// nothing here depends on statistics.
//
// Structural problems (duplicate student identifiers, item layout
// mismatches) abort the whole reconciliation; everything recoverable is
// reported as a data-quality warning alongside the result instead of
// being silently dropped.
package reconcile
