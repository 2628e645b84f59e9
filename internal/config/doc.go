// Package config provides centralized configuration management for the
// sentiment dashboard.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file (config.yaml, configs/config.yaml or SENTIMENT_CONFIG_FILE)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern SENTIMENT_<SECTION>_<FIELD>:
//
//	SENTIMENT_SERVER_PORT=8080
//	SENTIMENT_DATA_FILE=/srv/Sentiment_Analysis_Production.xlsx
//	SENTIMENT_DATA_SOURCE=sheets
//	SENTIMENT_SHEETS_SPREADSHEET_ID=1AbC...
//	SENTIMENT_LOGGING_LEVEL=debug
//
// # Path Management
//
// Relative paths (data file, credentials, logs, exports) are resolved against
// the directory holding the executable, so the dashboard finds its workbook
// next to the binary regardless of the working directory.
package config
