// Package http implements the HTTP handlers of the SPC service. Handlers are
// a thin layer over the services package: they decode and validate requests,
// call a service and render either JSON or an RFC 7807 problem document.
//
// # Endpoints
//
//	GET  /api/v1/spc/report              latest run report
//	POST /api/v1/spc/runs                run the pipeline synchronously
//	GET  /api/v1/spc/files               list output files
//	GET  /api/v1/spc/files/{kind}/{name} download one output file
//	GET  /api/health                     health of the pipeline and its collaborators
//	GET  /api/health/live                liveness
//	GET  /api/version                    build information
//
// Errors go through errors.ErrorHandler, so the core sentinels map to
// stable problem types (an empty baseline is a 422).
package http
