// Package dataprocessing turns spreadsheet tables into sentiment observations.
//
// The expected layout is a header row followed by one row per company and
// reporting period:
//
//	Company | Sector | Month | Year | Overall_Score
//
// Overall_Sentiment is accepted when Overall_Score is absent. The table can be
// read from a local XLSX workbook (WorkbookSource) or from a Google
// spreadsheet (SheetsSource); both share ParseRows so they agree on header
// matching, period parsing and row validation.
//
// Dataset holds the parsed rows and derives the latest snapshot per company,
// ranked cards, sector means, the score histogram and per-company trends.
// Summarizer assembles those into a domain.DashboardView.
package dataprocessing
