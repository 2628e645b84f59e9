// Package http implements the HTTP handlers of the sentiment dashboard.
// Handlers stay thin: they parse and validate the request, call the dataset
// service and format the response. Business logic lives in internal/services.
//
// # Routes
//
//	GET  /                                     dashboard page
//	GET  /api/data/summary                     metric cards
//	GET  /api/data/snapshot                    latest row per company
//	GET  /api/data/sectors                     sector performance
//	GET  /api/data/histogram?bins=             score distribution
//	GET  /api/data/companies?sector=           company filter list
//	GET  /api/data/company/{company}/trend     score history
//	GET  /api/data/download/{format}           csv or xlsx snapshot
//	POST /api/data/reload                      re-read the data source
//	GET  /api/health, /api/health/live, /api/health/ready, /api/version
//
// # Responses
//
// JSON endpoints answer with a success envelope:
//
//	{"status": "success", "data": ..., "count": n}
//
// Errors follow RFC 7807 and are written by apierrors.ErrorHandler:
//
//	{
//	    "type": "/errors/data/company-not-found",
//	    "title": "Not Found",
//	    "status": 404,
//	    "detail": "Company \"Wipro\" not found",
//	    "instance": "/api/data/company/Wipro/trend",
//	    "trace_id": "..."
//	}
//
// The dashboard page is the exception: a failed data load replaces the page
// body with a single error banner and a 5xx status.
package http
