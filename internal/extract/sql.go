package extract

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/microsoft/go-mssqldb"

	"spccli/internal/config"
	apierrors "spccli/internal/errors"
	"spccli/pkg/contracts/domain"
)

// SourceSQL names the SQL Server extractor.
const SourceSQL = "sql"

// Rows is the subset of *sql.Rows read by the extractor.
type Rows interface {
	Columns() ([]string, error)
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// Querier runs a query and returns its rows.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (Rows, error)
}

type dbQuerier struct {
	db *sql.DB
}

func (q dbQuerier) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SQLExtractor reads events from SQL Server.
type SQLExtractor struct {
	cfg     config.SQLConfig
	querier Querier
	open    func() (*sql.DB, error)
}

// NewSQLExtractor creates an extractor for cfg. An incomplete configuration
// is not an error here; Extract reports it so that a fallback can be used.
func NewSQLExtractor(cfg config.SQLConfig) (*SQLExtractor, error) {
	if cfg.Query == "" {
		cfg.Query = config.DefaultEventsQuery
	}
	e := &SQLExtractor{cfg: cfg}
	e.open = func() (*sql.DB, error) {
		return sql.Open("sqlserver", BuildDSN(cfg))
	}
	return e, nil
}

// NewSQLExtractorWithQuerier creates an extractor that runs its query on q.
func NewSQLExtractorWithQuerier(cfg config.SQLConfig, q Querier) *SQLExtractor {
	if cfg.Query == "" {
		cfg.Query = config.DefaultEventsQuery
	}
	return &SQLExtractor{cfg: cfg, querier: q}
}

// Name implements Extractor
func (e *SQLExtractor) Name() string {
	return SourceSQL
}

// Extract implements Extractor
func (e *SQLExtractor) Extract(ctx context.Context) Result {
	if !e.cfg.Configured() {
		return failed(SourceSQL, apierrors.NewConfigError(
			"SQL configuration is incomplete, provide server, database, user and password",
			ErrNotConfigured))
	}

	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	q := e.querier
	if q == nil {
		db, err := e.open()
		if err != nil {
			return failed(SourceSQL, apierrors.NewExtractionError("failed to open SQL Server connection", err))
		}
		defer db.Close()
		q = dbQuerier{db: db}
	}

	rows, err := q.QueryContext(ctx, e.cfg.Query)
	if err != nil {
		return failed(SourceSQL, apierrors.NewExtractionError("failed to query infection events", err))
	}
	defer rows.Close()

	table, err := readRows(rows)
	if err != nil {
		return failed(SourceSQL, apierrors.NewExtractionError("failed to read infection events", err))
	}
	return Result{Table: table, Source: SourceSQL}
}

func readRows(rows Rows) (domain.RawTable, error) {
	columns, err := rows.Columns()
	if err != nil {
		return domain.RawTable{}, err
	}

	table := domain.RawTable{Columns: columns}
	values := make([]sql.NullString, len(columns))
	dest := make([]any, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return domain.RawTable{}, err
		}
		row := make([]string, len(columns))
		for i, v := range values {
			if v.Valid {
				row[i] = v.String
			}
		}
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return domain.RawTable{}, err
	}
	return table, nil
}

// BuildDSN returns a go-mssqldb URL for cfg. A server of the form
// host\instance selects a named instance.
func BuildDSN(cfg config.SQLConfig) string {
	query := url.Values{}
	query.Set("database", cfg.Database)
	query.Set("TrustServerCertificate", "true")
	if cfg.Timeout > 0 {
		query.Set("dial timeout", fmt.Sprintf("%d", int(cfg.Timeout/time.Second)))
	}

	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     cfg.Server,
		RawQuery: query.Encode(),
	}
	if host, instance, ok := strings.Cut(cfg.Server, `\`); ok {
		u.Host = host
		u.Path = "/" + instance
	}
	return u.String()
}
