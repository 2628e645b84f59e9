// Package exporter writes the latest sentiment snapshot as CSV or XLSX.
//
// WriteSnapshotCSV and WriteSnapshotXLSX stream to any io.Writer and back
// the dashboard download endpoints. CSVWriter writes files under the
// configured exports directory with a UTF-8 BOM so Excel detects the
// encoding; the report command uses it.
package exporter
