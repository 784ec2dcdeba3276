// Package ingestion parses school-information-system Excel exports
// into the typed raw records the reconciliation component consumes:
// the item information sheet, per-class correctness sheets, and grade
// summary sheets.
//
// The exports are not clean tables; header rows float beneath title
// blocks and column positions drift between schools. Parsing therefore
// scans a preview of each sheet for the structures it needs (the item
// number header run, the name column, the class/roster column) instead
// of assuming fixed offsets, and reports exactly which file and sheet a
// failure came from.
package ingestion
