package config

import (
	"time"

	"sentimentpulse/pkg/contracts"
)

// Application constants for the sentiment dashboard
const (
	// Application Info
	AppName    = "Market Sentiment Pulse"
	AppVersion = contracts.Version

	// Data source kinds
	SourceXLSX   = "xlsx"
	SourceSheets = "sheets"

	// Data defaults (relative to executable)
	DefaultDataFile        = "Sentiment_Analysis_Production.xlsx"
	DefaultSheetName       = "Quarterly Sentiment"
	DefaultCredentialsFile = "credentials.json"
	DefaultSheetsTimeout   = 30 * time.Second
	DefaultWatchInterval   = 30 * time.Second

	// Dashboard
	DefaultDashboardTitle = "Indian Market Sentiment Tracker"
	DefaultTopN           = 5
	DefaultHistogramBins  = 15
	MaxHistogramBins      = 100

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	// Network Timeouts
	DefaultRequestTimeout = 30 * time.Second

	// File Paths (relative to executable)
	DefaultLogsDir    = "logs"
	DefaultExportsDir = "exports"
	DefaultLogFile    = "app.log"

	// WebSocket Buffer Sizes
	WebSocketReadBufferSize  = 1024
	WebSocketWriteBufferSize = 1024

	// Log Settings
	DefaultLogLevel = "info"
)

// Error messages shown to dashboard users
const (
	ErrMsgDataFileNotFound = "Data file not found at: %s"
	ErrMsgDataLoadFailed   = "Error: %v"
)
