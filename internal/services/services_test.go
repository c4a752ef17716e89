package services

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"spccli/internal/config"
	apperrors "spccli/internal/errors"
	"spccli/internal/operations"
	"spccli/internal/spc"
	api "spccli/pkg/contracts/api/v1"
	"spccli/pkg/contracts/domain"
)

type mockExecutor struct {
	mock.Mock
}

func (m *mockExecutor) Execute(ctx context.Context, req operations.OperationRequest) (*operations.OperationResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*operations.OperationResponse)
	return resp, args.Error(1)
}

func testPaths(t *testing.T) *config.Paths {
	t.Helper()
	dir := t.TempDir()
	p := &config.Paths{
		BaseDir:      dir,
		RawDir:       filepath.Join(dir, "raw"),
		ProcessedDir: filepath.Join(dir, "processed"),
		ReportsDir:   filepath.Join(dir, "reports"),
		ChartsDir:    filepath.Join(dir, "charts"),
	}
	require.NoError(t, p.EnsureDirectories())
	return p
}

func completedResponse(id string, report *domain.RunReport) *operations.OperationResponse {
	state := operations.NewOperationState(id)
	state.Report = report
	state.AddOutputs("/tmp/spc_run_FY2022.json")
	return &operations.OperationResponse{
		ID:       id,
		Status:   operations.OperationStatusCompleted,
		Duration: 1500 * time.Millisecond,
		Steps: []operations.StepSummary{
			{ID: operations.StepIDExtract, Name: operations.StepNameExtract, Status: operations.StepStatusCompleted, Duration: time.Second},
		},
		State: state,
	}
}

func TestPipelineService_Run(t *testing.T) {
	exec := &mockExecutor{}
	report := &domain.RunReport{RunID: "r1", CurrentFY: 2022, GeneratedAt: time.Date(2022, 4, 1, 0, 0, 0, 0, time.UTC)}

	fy := 2022
	exec.On("Execute", mock.Anything, mock.MatchedBy(func(req operations.OperationRequest) bool {
		return req.Mode == operations.ModeFull &&
			req.ID != "" &&
			req.Options.CurrentFY != nil && *req.Options.CurrentFY == 2022 &&
			req.Options.FYStartMonth == time.April
	})).Return(completedResponse("r1", report), nil).Once()

	svc := NewPipelineService(exec, spc.DefaultOptions(), nil, nil)
	resp, err := svc.Run(context.Background(), api.RunRequest{CurrentFY: &fy})
	require.NoError(t, err)

	assert.Equal(t, "r1", resp.RunID)
	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, int64(1500), resp.DurationMS)
	require.Len(t, resp.Steps, 1)
	assert.Equal(t, int64(1000), resp.Steps[0].DurationMS)
	assert.Equal(t, []string{"/tmp/spc_run_FY2022.json"}, resp.Outputs)
	assert.Same(t, report, resp.Report)

	latest, err := svc.Latest(context.Background())
	require.NoError(t, err)
	assert.Same(t, report, latest)

	running, lastRun := svc.Status()
	assert.False(t, running)
	assert.Equal(t, report.GeneratedAt, lastRun)
	exec.AssertExpectations(t)
}

func TestPipelineService_RunFailureReturnsResponse(t *testing.T) {
	exec := &mockExecutor{}
	failure := operations.NewExecutionError(operations.StepIDSPC, spc.ErrEmptyBaseline, false)
	resp := completedResponse("r2", nil)
	resp.Status = operations.OperationStatusFailed
	resp.Error = failure.Error()
	exec.On("Execute", mock.Anything, mock.Anything).Return(resp, failure)

	svc := NewPipelineService(exec, spc.DefaultOptions(), nil, nil)
	out, err := svc.Run(context.Background(), api.RunRequest{Mode: operations.ModeValidate})
	require.Error(t, err)
	assert.ErrorIs(t, err, spc.ErrEmptyBaseline)
	require.NotNil(t, out)
	assert.Equal(t, "failed", out.Status)

	_, err = svc.Latest(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrReportNotFound)
}

func TestPipelineService_RunInProgress(t *testing.T) {
	exec := &mockExecutor{}
	started := make(chan struct{})
	release := make(chan struct{})
	exec.On("Execute", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			close(started)
			<-release
		}).
		Return(completedResponse("r3", nil), nil).Once()

	svc := NewPipelineService(exec, spc.DefaultOptions(), nil, nil)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Run(context.Background(), api.RunRequest{})
		done <- err
	}()
	<-started

	running, _ := svc.Status()
	assert.True(t, running)

	_, err := svc.Run(context.Background(), api.RunRequest{})
	assert.ErrorIs(t, err, apperrors.ErrRunInProgress)

	close(release)
	require.NoError(t, <-done)
	exec.AssertExpectations(t)
}

func TestPipelineService_LatestFallsBackToDisk(t *testing.T) {
	paths := testPaths(t)
	store := NewDataService(paths, nil)
	svc := NewPipelineService(&mockExecutor{}, spc.DefaultOptions(), store, nil)

	_, err := svc.Latest(context.Background())
	require.ErrorIs(t, err, apperrors.ErrReportNotFound)

	writeReport(t, paths.RunReportPath(2021), domain.RunReport{RunID: "old", CurrentFY: 2021})
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(paths.RunReportPath(2021), past, past))
	writeReport(t, paths.RunReportPath(2022), domain.RunReport{RunID: "new", CurrentFY: 2022})

	latest, err := svc.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new", latest.RunID)
}

func writeReport(t *testing.T, path string, report domain.RunReport) {
	t.Helper()
	data, err := json.Marshal(report)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestDataService_LatestRunReportCorrupt(t *testing.T) {
	paths := testPaths(t)
	require.NoError(t, os.WriteFile(paths.RunReportPath(2022), []byte("{not json"), 0o644))

	_, err := NewDataService(paths, nil).LatestRunReport(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeParsing, apperrors.TypeOf(err))
}

func TestDataService_ListFiles(t *testing.T) {
	paths := testPaths(t)
	require.NoError(t, os.WriteFile(paths.RawEventsCSV(), []byte("EventID\n1\n"), 0o644))
	require.NoError(t, os.WriteFile(paths.SummaryCSV(), []byte("SPCStatus,Days\n"), 0o644))

	resp, err := NewDataService(paths, nil).ListFiles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Total)

	kinds := map[string]string{}
	for _, f := range resp.Files {
		kinds[f.Name] = f.Kind
	}
	assert.Equal(t, map[string]string{
		"infection_events_raw.csv": KindRaw,
		"spc_breach_summary.csv":   KindReports,
	}, kinds)
}

func TestDataService_ListFilesMissingDirectories(t *testing.T) {
	dir := t.TempDir()
	paths := &config.Paths{
		RawDir:       filepath.Join(dir, "none-raw"),
		ProcessedDir: filepath.Join(dir, "none-processed"),
		ReportsDir:   filepath.Join(dir, "none-reports"),
	}

	resp, err := NewDataService(paths, nil).ListFiles(context.Background())
	require.NoError(t, err)
	assert.Zero(t, resp.Total)
	assert.NotNil(t, resp.Files)
}

func TestDataService_ResolveFile(t *testing.T) {
	paths := testPaths(t)
	require.NoError(t, os.WriteFile(paths.SummaryCSV(), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(paths.BaseDir, "secret.txt"), []byte("x"), 0o644))
	ds := NewDataService(paths, nil)
	ctx := context.Background()

	got, err := ds.ResolveFile(ctx, KindReports, "spc_breach_summary.csv")
	require.NoError(t, err)
	assert.Equal(t, paths.SummaryCSV(), got)

	tests := []struct {
		name string
		kind string
		file string
	}{
		{"traversal", KindReports, "../secret.txt"},
		{"missing", KindReports, "nope.csv"},
		{"directory", KindReports, "."},
		{"unknown kind", "charts", "x.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ds.ResolveFile(ctx, tt.kind, tt.file)
			require.Error(t, err)
			var apiErr *apperrors.APIError
			require.True(t, errors.As(err, &apiErr))
		})
	}
}

func TestHealthService(t *testing.T) {
	svc := NewPipelineService(&mockExecutor{}, spc.DefaultOptions(), nil, nil)

	hs := NewHealthService(svc, "synthetic", []string{"kafka", "webhook"}, nil)
	status := hs.HealthCheck(context.Background())
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "idle", status.Services["pipeline"].Status)
	assert.Equal(t, "no report yet", status.Services["pipeline"].Message)
	assert.Equal(t, "synthetic", status.Services["source"].Message)
	assert.Equal(t, ServiceHealth{Status: "enabled", Message: "kafka, webhook"}, status.Services["alerts"])

	quiet := NewHealthService(nil, "sql", nil, nil).HealthCheck(context.Background())
	assert.Equal(t, "unavailable", quiet.Services["pipeline"].Status)
	assert.Equal(t, "disabled", quiet.Services["alerts"].Status)

	assert.Equal(t, "alive", hs.LivenessCheck(context.Background()).Status)
	assert.NotEmpty(t, hs.Version().Version)
}
