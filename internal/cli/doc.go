// Package cli implements the sentiment-report command line tool. It reads
// the same workbook and configuration as the dashboard server and prints
// summaries or writes snapshot exports.
package cli
