// Package app wires the SPC pipeline and its HTTP surface together. It
// builds the extractor, exporter, alert dispatcher and step manager from the
// loaded configuration, and owns the HTTP server lifecycle used by
// `spc serve`.
//
// # Initialization Flow
//
//	1. The CLI loads configuration, resolves paths and initializes logging
//	2. NewPipeline builds the collaborators and registers the pipeline steps
//	3. NewApplication adds the services, the router and the HTTP server
//	4. Run serves until the context is cancelled, then shuts down gracefully
//
// All initialization errors are returned to the caller. The package never
// calls os.Exit, so the CLI controls the exit code.
package app
