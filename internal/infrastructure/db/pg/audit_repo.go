package pg

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"adminhub/internal/domain/audit"
)

type AuditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Insert(ctx context.Context, e audit.Entry) error {
	details, err := jsonObject(e.Details)
	if err != nil {
		return err
	}

	_, err = exec(ctx, r.db,
		`INSERT INTO audit_logs
		   (audit_id, actor_id, actor_name, action, resource_type, resource_id, details, ip_address, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, e.ActorID, e.ActorName, string(e.Action), e.ResourceType, e.ResourceID,
		details, nullString(e.IPAddress), e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (r *AuditRepository) List(ctx context.Context, f audit.Filter) ([]audit.Entry, error) {
	var where []string
	var args []any
	add := func(col, v string) {
		if v == "" {
			return
		}
		args = append(args, v)
		where = append(where, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	add("resource_type", f.ResourceType)
	add("resource_id", f.ResourceID)
	add("actor_id", f.ActorID)

	q := `SELECT audit_id, actor_id, actor_name, action, resource_type, resource_id, details, ip_address, created_at
	        FROM audit_logs`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, f.Limit)
	q += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, len(args))

	rows, err := query(ctx, r.db, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []audit.Entry
	for rows.Next() {
		var e audit.Entry
		var action string
		var details []byte
		var ip sql.NullString

		if err := rows.Scan(&e.ID, &e.ActorID, &e.ActorName, &action, &e.ResourceType, &e.ResourceID,
			&details, &ip, &e.CreatedAt); err != nil {
			return nil, err
		}
		if e.Details, err = decodeObject(details); err != nil {
			return nil, err
		}
		e.Action = audit.Action(action)
		e.IPAddress = stringPtr(ip)
		res = append(res, e)
	}
	return res, rows.Err()
}
