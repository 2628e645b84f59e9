// Package app wires the sentiment dashboard together and manages its
// lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration (defaults, config.yaml, SENTIMENT_* environment)
//	2. Initialize logging and OpenTelemetry
//	3. Select the data source (xlsx workbook or Google Sheets)
//	4. Start the WebSocket hub and create the dataset and health services
//	5. Build the chi router and the HTTP server
//
// Start serves in the background, warms the dataset cache and, for the
// xlsx source, polls the workbook every data.watch_interval so edits reach
// open dashboards without a manual reload.
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// Run returns on SIGINT, SIGTERM or context cancellation after in-flight
// requests finish, WebSocket clients are closed and telemetry is flushed.
package app
