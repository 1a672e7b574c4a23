package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/voyagent/voyagent/internal/domain"
)

var (
	ErrChatNotFound       = errors.New("chat not found")
	ErrChatOwnedByAnother = errors.New("chat id taken by another user")
)

type ChatRepository interface {
	Save(ctx context.Context, chat *domain.Chat) error
	GetByID(ctx context.Context, id string) (*domain.Chat, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Chat, error)
	Delete(ctx context.Context, id string) error
}

type PGChatRepository struct {
	db *pgxpool.Pool
}

func NewChatRepository(db *pgxpool.Pool) ChatRepository {
	return &PGChatRepository{db: db}
}

// Save replaces the whole persisted message list for the chat id. The
// upsert only updates a row the same user already owns; an id collision with
// another user's chat updates nothing and reports ErrChatOwnedByAnother.
func (r *PGChatRepository) Save(ctx context.Context, chat *domain.Chat) error {
	messages, err := json.Marshal(chat.Messages)
	if err != nil {
		return fmt.Errorf("encode messages: %w", err)
	}

	err = r.db.QueryRow(ctx, `INSERT INTO chats (id, user_id, messages)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET messages = EXCLUDED.messages
		WHERE chats.user_id = EXCLUDED.user_id
		RETURNING created_at`, chat.ID, chat.UserID, messages).
		Scan(&chat.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrChatOwnedByAnother
	}
	return err
}

func (r *PGChatRepository) GetByID(ctx context.Context, id string) (*domain.Chat, error) {
	row := r.db.QueryRow(ctx, `SELECT id, user_id, messages, created_at FROM chats WHERE id=$1`, id)
	return scanChat(row)
}

func (r *PGChatRepository) ListByUser(ctx context.Context, userID string) ([]domain.Chat, error) {
	rows, err := r.db.Query(ctx, `SELECT id, user_id, messages, created_at FROM chats WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	chats := make([]domain.Chat, 0)
	for rows.Next() {
		chat, err := scanChat(rows)
		if err != nil {
			return nil, err
		}
		chats = append(chats, *chat)
	}
	return chats, rows.Err()
}

func (r *PGChatRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM chats WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrChatNotFound
	}
	return nil
}

func scanChat(row pgx.Row) (*domain.Chat, error) {
	var chat domain.Chat
	var messages []byte
	if err := row.Scan(&chat.ID, &chat.UserID, &messages, &chat.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrChatNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(messages, &chat.Messages); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return &chat, nil
}

var _ ChatRepository = (*PGChatRepository)(nil)
