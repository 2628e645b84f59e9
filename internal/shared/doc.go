// Package shared holds helpers used across the sentiment dashboard packages.
//
// The testutil subpackage provides:
//
//	- a sample sentiment workbook and matching observations
//	- a buffered slog handler for asserting on log output
//
// Example usage:
//
//	func TestLoad(t *testing.T) {
//	    path := testutil.WriteSampleWorkbook(t)
//	    obs, err := dataprocessing.ParseWorkbook(path, testutil.SampleSheet)
//	    ...
//	}
package shared
