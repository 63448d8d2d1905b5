package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/pliu/socialboard/internal/models"
)

const messageSelect = `
	SELECT m.id, m.from_id, m.to_id, f.username AS from_username, t.username AS to_username,
		m.message, m.is_read, m.created_at
	FROM messages m
	LEFT JOIN users f ON f.id = m.from_id
	LEFT JOIN users t ON t.id = m.to_id
`

type messageRow struct {
	ID           string         `db:"id"`
	FromID       string         `db:"from_id"`
	ToID         string         `db:"to_id"`
	FromUsername sql.NullString `db:"from_username"`
	ToUsername   sql.NullString `db:"to_username"`
	Message      string         `db:"message"`
	Read         bool           `db:"is_read"`
	CreatedAt    time.Time      `db:"created_at"`
}

func (r messageRow) toModel() models.Message {
	return models.Message{
		ID:        r.ID,
		FromID:    r.FromID,
		ToID:      r.ToID,
		From:      userRef(r.FromID, r.FromUsername),
		To:        userRef(r.ToID, r.ToUsername),
		Message:   r.Message,
		Read:      r.Read,
		CreatedAt: r.CreatedAt,
	}
}

func (s *SQLStore) CreateMessage(ctx context.Context, msg *models.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	query := s.db.Rebind("INSERT INTO messages (id, from_id, to_id, message, is_read, created_at) VALUES (?, ?, ?, ?, ?, ?)")
	_, err := s.db.ExecContext(ctx, query, msg.ID, msg.FromID, msg.ToID, msg.Message, msg.Read, msg.CreatedAt)
	return errors.Wrap(err, "inserting message failed")
}

func (s *SQLStore) GetMessage(ctx context.Context, id string) (*models.Message, error) {
	var row messageRow
	query := s.db.Rebind(messageSelect + "WHERE m.id = ?")
	if err := s.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, notFound(err, "getting message failed")
	}
	msg := row.toModel()
	return &msg, nil
}

func (s *SQLStore) ListMessages(ctx context.Context, userID string) ([]models.Message, error) {
	var rows []messageRow
	query := s.db.Rebind(messageSelect + "WHERE m.from_id = ? OR m.to_id = ? ORDER BY m.created_at DESC")
	if err := s.db.SelectContext(ctx, &rows, query, userID, userID); err != nil {
		return nil, errors.Wrap(err, "listing messages failed")
	}

	messages := make([]models.Message, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, row.toModel())
	}
	return messages, nil
}

func (s *SQLStore) MarkRead(ctx context.Context, fromID, toID string) (int64, error) {
	query := s.db.Rebind("UPDATE messages SET is_read = ? WHERE from_id = ? AND to_id = ? AND is_read = ?")
	result, err := s.db.ExecContext(ctx, query, true, fromID, toID, false)
	if err != nil {
		return 0, errors.Wrap(err, "marking messages read failed")
	}
	rows, err := result.RowsAffected()
	return rows, errors.Wrap(err, "marking messages read failed")
}
