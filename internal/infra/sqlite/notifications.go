package sqlite

import (
	"github.com/momentum-app/momentum/internal/domain"
)

// ─── Notifications ──────────────────────────────────────────────────────────

// InsertNotification stores a notification and returns its id.
func (d *DB) InsertNotification(n domain.Notification) (int64, error) {
	result, err := d.db.Exec(
		`INSERT INTO notifications (type, title, body, task_id, created_at, shown)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		string(n.Type), n.Title, n.Body, n.TaskID, toMillis(n.CreatedAt), n.Shown,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// ListPendingNotifications returns unshown notifications, oldest first.
func (d *DB) ListPendingNotifications(limit int) ([]domain.Notification, error) {
	return d.listNotifications(
		`SELECT id, type, title, body, task_id, created_at, shown
		 FROM notifications WHERE shown = 0 ORDER BY created_at, id LIMIT ?`, limit,
	)
}

// ListNotifications returns the most recent notifications, shown or not.
func (d *DB) ListNotifications(limit int) ([]domain.Notification, error) {
	return d.listNotifications(
		`SELECT id, type, title, body, task_id, created_at, shown
		 FROM notifications ORDER BY created_at DESC, id DESC LIMIT ?`, limit,
	)
}

// PendingNotificationCount returns how many notifications await display.
func (d *DB) PendingNotificationCount() (int, error) {
	var count int
	err := d.db.QueryRow(`SELECT COUNT(*) FROM notifications WHERE shown = 0`).Scan(&count)
	return count, err
}

// MarkNotificationShown marks a notification as shown.
func (d *DB) MarkNotificationShown(id int64) error {
	result, err := d.db.Exec(`UPDATE notifications SET shown = 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

func (d *DB) listNotifications(query string, limit int) ([]domain.Notification, error) {
	rows, err := d.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifs := []domain.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifs = append(notifs, n)
	}
	return notifs, rows.Err()
}

func scanNotification(s scanner) (domain.Notification, error) {
	var n domain.Notification
	var createdAt int64
	if err := s.Scan(&n.ID, &n.Type, &n.Title, &n.Body, &n.TaskID, &createdAt, &n.Shown); err != nil {
		return domain.Notification{}, err
	}
	n.CreatedAt = fromMillis(createdAt)
	return n, nil
}
