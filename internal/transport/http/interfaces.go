package http

import (
	"context"

	api "spccli/pkg/contracts/api/v1"
	"spccli/pkg/contracts/domain"
)

// PipelineServiceInterface runs the pipeline and serves its latest report
type PipelineServiceInterface interface {
	Run(ctx context.Context, req api.RunRequest) (*api.RunResponse, error)
	Latest(ctx context.Context) (*domain.RunReport, error)
}

// DataServiceInterface gives access to the files written by runs
type DataServiceInterface interface {
	ListFiles(ctx context.Context) (*api.FilesResponse, error)
	ResolveFile(ctx context.Context, kind, name string) (string, error)
}
