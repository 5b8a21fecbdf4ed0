package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"adminhub/internal/domain/notification"
)

type NotificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

const notificationColumns = `notification_id, recipient_type, recipient_id, client_id, type, title, message,
	is_read, priority, action_url, metadata, created_at, read_at`

func scanNotification(row interface{ Scan(...any) error }) (notification.Notification, error) {
	var n notification.Notification
	var recipientType, priority string
	var recipientID, clientID, actionURL sql.NullString
	var metadata []byte
	var readAt sql.NullTime

	if err := row.Scan(
		&n.ID, &recipientType, &recipientID, &clientID, &n.Type, &n.Title, &n.Message,
		&n.IsRead, &priority, &actionURL, &metadata, &n.CreatedAt, &readAt,
	); err != nil {
		return notification.Notification{}, err
	}

	meta, err := decodeObject(metadata)
	if err != nil {
		return notification.Notification{}, err
	}

	n.RecipientType = notification.RecipientType(recipientType)
	n.Priority = notification.Priority(priority)
	n.RecipientID = stringPtr(recipientID)
	n.ClientID = stringPtr(clientID)
	n.ActionURL = stringPtr(actionURL)
	n.Metadata = meta
	n.ReadAt = timePtr(readAt)
	return n, nil
}

func (r *NotificationRepository) Insert(ctx context.Context, n notification.Notification) error {
	metadata, err := jsonObject(n.Metadata)
	if err != nil {
		return err
	}

	_, err = exec(ctx, r.db,
		`INSERT INTO notifications
		   (notification_id, recipient_type, recipient_id, client_id, type, title, message,
		    is_read, priority, action_url, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		n.ID, string(n.RecipientType), nullString(n.RecipientID), nullString(n.ClientID),
		n.Type, n.Title, n.Message, n.IsRead, string(n.Priority), nullString(n.ActionURL),
		metadata, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *NotificationRepository) List(ctx context.Context, f notification.Filter) ([]notification.Notification, error) {
	where, args := notificationWhere(f.RecipientType, f.ClientID)
	if f.UnreadOnly {
		where = append(where, "is_read = FALSE")
	}
	args = append(args, f.Limit)

	rows, err := query(ctx, r.db,
		`SELECT `+notificationColumns+`
		   FROM notifications
		  WHERE `+strings.Join(where, " AND ")+`
		  ORDER BY created_at DESC
		  LIMIT $`+fmt.Sprint(len(args)),
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []notification.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, n)
	}
	return res, rows.Err()
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id string) (notification.Notification, error) {
	n, err := scanNotification(queryRow(ctx, r.db,
		`UPDATE notifications
		    SET is_read = TRUE,
		        read_at = COALESCE(read_at, NOW())
		  WHERE notification_id = $1
		  RETURNING `+notificationColumns,
		id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return notification.Notification{}, notFound("notification")
	}
	return n, err
}

func (r *NotificationRepository) UnreadCount(ctx context.Context, recipient notification.RecipientType, clientID string) (int, error) {
	where, args := notificationWhere(recipient, clientID)
	where = append(where, "is_read = FALSE")

	var n int
	err := queryRow(ctx, r.db,
		`SELECT COUNT(*) FROM notifications WHERE `+strings.Join(where, " AND "),
		args...,
	).Scan(&n)
	return n, err
}

func notificationWhere(recipient notification.RecipientType, clientID string) ([]string, []any) {
	where := []string{"recipient_type = $1"}
	args := []any{string(recipient)}
	if clientID != "" {
		args = append(args, clientID)
		where = append(where, fmt.Sprintf("client_id = $%d", len(args)))
	}
	return where, args
}
