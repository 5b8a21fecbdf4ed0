package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	trmsql "github.com/avito-tech/go-transaction-manager/drivers/sql/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2"
	trmcontext "github.com/avito-tech/go-transaction-manager/trm/v2/context"
	trmmanager "github.com/avito-tech/go-transaction-manager/trm/v2/manager"

	"adminhub/internal/domain"
)

var ctxGetter = trmsql.DefaultCtxGetter

// TxManager runs service callbacks in one sql transaction. Repositories pick the
// transaction up from ctx, so the same repo works inside and outside WithinTx.
type TxManager struct {
	tm trm.Manager
}

func NewTxManager(db *sql.DB) domain.UnitOfWork {
	mgr := trmmanager.Must(
		trmsql.NewDefaultFactory(db),
		trmmanager.WithCtxManager(trmcontext.DefaultManager),
	)

	return &TxManager{tm: mgr}
}

func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.tm.Do(ctx, fn)
}

func exec(ctx context.Context, db *sql.DB, query string, args ...any) (sql.Result, error) {
	tr := ctxGetter.DefaultTrOrDB(ctx, db)
	return tr.ExecContext(ctx, query, args...)
}

func queryRow(ctx context.Context, db *sql.DB, query string, args ...any) *sql.Row {
	tr := ctxGetter.DefaultTrOrDB(ctx, db)
	return tr.QueryRowContext(ctx, query, args...)
}

func query(ctx context.Context, db *sql.DB, query string, args ...any) (*sql.Rows, error) {
	tr := ctxGetter.DefaultTrOrDB(ctx, db)
	return tr.QueryContext(ctx, query, args...)
}

func notFound(what string) error {
	return &domain.DomainError{
		Code:       domain.ErrorCodeNotFound,
		Message:    what + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// marshalJSON renders a jsonb argument as text so the driver does not send it as bytea.
func marshalJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal jsonb: %w", err)
	}
	return string(b), nil
}

// jsonObject encodes a map column; nil maps are stored as {}.
func jsonObject(m map[string]any) (string, error) {
	if m == nil {
		return "{}", nil
	}
	return marshalJSON(m)
}

func decodeObject(b []byte) (map[string]any, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decode jsonb: %w", err)
	}
	return m, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
