// Package operations runs the SPC pipeline as a sequence of steps.
//
// Core Components:
//
// Manager: executes the registered steps of a run in registration order,
// keeps a StepState per step, retries retryable failures and skips every
// step after the first failure. Each run and each step gets a span.
//
// Step: a single unit of work. Validate checks that the outputs of earlier
// steps are present on the OperationState; Execute writes its own outputs
// back to it.
//
// Registry: holds the steps in registration order.
//
// OperationState: the typed record of a run (extraction result, events,
// validation report, analysis, run report, written files and alert
// deliveries).
//
// The pipeline steps are extract, standardise, validate, snapshot, spc,
// report and, when a channel is configured, alerts.
//
// Example usage:
//
//	registry := operations.NewRegistry()
//	err := operations.RegisterPipeline(registry, operations.Dependencies{
//		Extractor: extractor,
//		Exporter:  exporter.New(paths, logger),
//		Logger:    logger,
//	})
//
//	manager := operations.NewManager(registry, operations.NewConfig(), tracer, logger)
//	resp, err := manager.Execute(ctx, operations.OperationRequest{
//		Mode:    operations.ModeFull,
//		Options: spc.DefaultOptions(),
//	})
package operations
