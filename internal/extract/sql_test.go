package extract

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"spccli/internal/config"
	apierrors "spccli/internal/errors"
)

type fakeRows struct {
	columns []string
	data    [][]any
	pos     int
	err     error
	closed  bool
}

func (r *fakeRows) Columns() ([]string, error) { return r.columns, nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	for i, v := range r.data[r.pos-1] {
		if err := dest[i].(*sql.NullString).Scan(v); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeRows) Err() error   { return r.err }
func (r *fakeRows) Close() error { r.closed = true; return nil }

type mockQuerier struct {
	mock.Mock
}

func (m *mockQuerier) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	ret := m.Called(ctx, query)
	rows, _ := ret.Get(0).(Rows)
	return rows, ret.Error(1)
}

func configuredSQL() config.SQLConfig {
	return config.SQLConfig{Server: "db", Database: "ipc", User: "spc", Password: "secret"}
}

func TestSQLExtractor(t *testing.T) {
	rows := &fakeRows{
		columns: []string{"EventID", "CollectionDate"},
		data: [][]any{
			{int64(1), "2024-04-01"},
			{int64(2), nil},
		},
	}
	q := &mockQuerier{}
	q.On("QueryContext", mock.Anything, config.DefaultEventsQuery).Return(rows, nil)

	res := NewSQLExtractorWithQuerier(configuredSQL(), q).Extract(context.Background())

	require.NoError(t, res.Err)
	assert.Equal(t, SourceSQL, res.Source)
	assert.Equal(t, []string{"EventID", "CollectionDate"}, res.Table.Columns)
	assert.Equal(t, [][]string{{"1", "2024-04-01"}, {"2", ""}}, res.Table.Rows)
	assert.True(t, rows.closed)
	q.AssertExpectations(t)
}

func TestSQLExtractorNotConfigured(t *testing.T) {
	cfg := configuredSQL()
	cfg.Password = ""
	q := &mockQuerier{}

	res := NewSQLExtractorWithQuerier(cfg, q).Extract(context.Background())

	require.Error(t, res.Err)
	assert.True(t, errors.Is(res.Err, ErrNotConfigured))
	assert.Equal(t, apierrors.ErrTypeConfig, apierrors.TypeOf(res.Err))
	q.AssertNotCalled(t, "QueryContext", mock.Anything, mock.Anything)
}

func TestSQLExtractorQueryFailure(t *testing.T) {
	boom := errors.New("login failed")
	q := &mockQuerier{}
	q.On("QueryContext", mock.Anything, "SELECT 1").Return(nil, boom)

	cfg := configuredSQL()
	cfg.Query = "SELECT 1"
	res := NewSQLExtractorWithQuerier(cfg, q).Extract(context.Background())

	assert.True(t, errors.Is(res.Err, boom))
	assert.Equal(t, apierrors.ErrTypeExtraction, apierrors.TypeOf(res.Err))
}

func TestSQLExtractorRowsError(t *testing.T) {
	rows := &fakeRows{columns: []string{"CollectionDate"}, err: errors.New("connection reset")}
	q := &mockQuerier{}
	q.On("QueryContext", mock.Anything, mock.Anything).Return(rows, nil)

	res := NewSQLExtractorWithQuerier(configuredSQL(), q).Extract(context.Background())

	assert.Error(t, res.Err)
}

func TestBuildDSN(t *testing.T) {
	t.Run("plain host", func(t *testing.T) {
		dsn := BuildDSN(config.SQLConfig{Server: "sql.local:1433", Database: "ipc", User: "spc", Password: "p@ss word"})

		u, err := url.Parse(dsn)
		require.NoError(t, err)
		assert.Equal(t, "sqlserver", u.Scheme)
		assert.Equal(t, "sql.local:1433", u.Host)
		assert.Equal(t, "spc", u.User.Username())
		pw, _ := u.User.Password()
		assert.Equal(t, "p@ss word", pw)
		assert.Equal(t, "ipc", u.Query().Get("database"))
		assert.Equal(t, "true", u.Query().Get("TrustServerCertificate"))
	})

	t.Run("named instance", func(t *testing.T) {
		dsn := BuildDSN(config.SQLConfig{Server: `sqlhost\SQLEXPRESS`, Database: "ipc", User: "u", Password: "p"})

		u, err := url.Parse(dsn)
		require.NoError(t, err)
		assert.Equal(t, "sqlhost", u.Host)
		assert.Equal(t, "/SQLEXPRESS", u.Path)
	})
}
