package extract

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spccli/internal/config"
	apierrors "spccli/internal/errors"
)

func TestAPIExtractorURL(t *testing.T) {
	tests := []struct {
		base     string
		endpoint string
		want     string
	}{
		{"https://api.example.org", "events", "https://api.example.org/events"},
		{"https://api.example.org/", "/events", "https://api.example.org/events"},
		{"https://api.example.org/v1//", "//infection-events", "https://api.example.org/v1/infection-events"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			e, err := NewAPIExtractor(config.APIConfig{BaseURL: tt.base, Endpoint: tt.endpoint})
			require.NoError(t, err)
			got, err := e.URL()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAPIExtractorMissingBaseURL(t *testing.T) {
	e, err := NewAPIExtractor(config.APIConfig{Endpoint: "events"})
	require.NoError(t, err)

	res := e.Extract(context.Background())
	assert.True(t, errors.Is(res.Err, ErrNotConfigured))
}

func TestAPIExtractorExtract(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantRows  int
		wantErr   error
		wantType  apierrors.ErrorType
		checkAuth bool
	}{
		{
			name:     "bare list",
			status:   http.StatusOK,
			body:     `[{"EventID": 1, "CollectionDate": "2024-04-01"}, {"EventID": 2, "CollectionDate": "2024-04-02"}]`,
			wantRows: 2,
		},
		{
			name:      "wrapped in data",
			status:    http.StatusOK,
			body:      `{"data": [{"EventID": "A", "collection_date": "2024-04-01"}], "page": 1}`,
			wantRows:  1,
			checkAuth: true,
		},
		{
			name:     "object without data",
			status:   http.StatusOK,
			body:     `{"items": []}`,
			wantErr:  ErrUnsupportedPayload,
			wantType: apierrors.ErrTypeParsing,
		},
		{
			name:     "server error",
			status:   http.StatusInternalServerError,
			body:     `oops`,
			wantType: apierrors.ErrTypeNetwork,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotAuth, gotPath string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotAuth = r.Header.Get("Authorization")
				gotPath = r.URL.Path
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			e, err := NewAPIExtractor(config.APIConfig{
				BaseURL:  srv.URL + "/",
				Endpoint: "/infection-events",
				Token:    "tok",
				RPS:      100,
			})
			require.NoError(t, err)

			res := e.Extract(context.Background())

			assert.Equal(t, "/infection-events", gotPath)
			if tt.checkAuth {
				assert.Equal(t, "Bearer tok", gotAuth)
			}
			if tt.wantType != "" {
				require.Error(t, res.Err)
				assert.Equal(t, tt.wantType, apierrors.TypeOf(res.Err))
				if tt.wantErr != nil {
					assert.True(t, errors.Is(res.Err, tt.wantErr))
				}
				return
			}
			require.NoError(t, res.Err)
			assert.Equal(t, SourceAPI, res.Source)
			assert.Equal(t, tt.wantRows, res.Table.Len())
		})
	}
}

func TestParsePayload(t *testing.T) {
	body := []byte(`[
		{"EventID": 12, "CollectionDate": "2024-04-01", "Flag": true},
		{"EventID": 13, "CollectionDate": null, "Ward": {"code": "W1"}}
	]`)

	table, err := ParsePayload(body)
	require.NoError(t, err)

	assert.Equal(t, []string{"CollectionDate", "EventID", "Flag", "Ward"}, table.Columns)
	assert.Equal(t, []string{"2024-04-01", "12", "true", ""}, table.Rows[0])
	assert.Equal(t, []string{"", "13", "", `{"code":"W1"}`}, table.Rows[1])
}

func TestParsePayloadRejectsScalars(t *testing.T) {
	_, err := ParsePayload([]byte(`[1, 2, 3]`))
	assert.ErrorIs(t, err, ErrUnsupportedPayload)

	_, err = ParsePayload([]byte(`not json`))
	assert.Error(t, err)
}
