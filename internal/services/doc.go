// Package services implements the business logic behind the HTTP surface.
//
// # Available Services
//
//	- PipelineService: runs the SPC pipeline, one run at a time, and keeps
//	  the latest run report
//	- DataService: lists and resolves the files written by runs and loads
//	  persisted run reports
//	- HealthService: liveness and component health
//
// # Error Handling
//
// Services return errors from internal/errors that the HTTP error handler
// maps to problem documents:
//
//	- ErrRunInProgress when a run is requested while another is in flight
//	- ErrReportNotFound before the first run report exists
//	- AppError categories for storage and parsing failures
package services
