// Package services sits between the HTTP handlers and the data layer.
//
// DatasetService owns the configured dataprocessing.Source. The first
// request loads the sentiment table; later requests are served from the
// cached Dataset until Reload reads the source again and broadcasts a
// data_update message to connected dashboards. Concurrent first loads are
// collapsed into one read with singleflight.
//
// HealthService reports liveness, readiness and version information.
//
// Load failures are returned as *DataLoadError. Its Message method gives
// the text shown in place of the dashboard, and errors.Is matches
// ErrDataFileNotFound when the workbook is missing.
package services
