package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klassenhub/klassenhub/internal/app/models"
	"github.com/klassenhub/klassenhub/internal/pkg/apperrors"
)

// ChatRepository handles chat message database operations
type ChatRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewChatRepository creates a new ChatRepository
func NewChatRepository(db *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// InsertMessage stores a chat message and returns the stored row
func (r *ChatRepository) InsertMessage(ctx context.Context, msg *models.ChatMessage) (*models.ChatMessage, error) {
	var examIDArg interface{}
	if msg.ExamID != nil {
		examIDArg = *msg.ExamID
	}

	querySql, args, err := r.sb.Insert("chat_messages").
		Columns("teacher_id", "exam_id", "role", "content", "pending").
		Values(msg.TeacherID, examIDArg, msg.Role, msg.Content, msg.Pending).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert chat message query: %w", err)
	}

	created := *msg
	err = r.db.QueryRow(ctx, querySql, args...).Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error inserting chat message: %w", err)
	}

	return &created, nil
}

// GetMessagesByExam retrieves the chat history of an exam, oldest first
func (r *ChatRepository) GetMessagesByExam(ctx context.Context, teacherID, examID int64) ([]models.ChatMessage, error) {
	querySql, args, err := r.sb.Select("id", "teacher_id", "exam_id", "role", "content", "pending", "created_at").
		From("chat_messages").
		Where(squirrel.Eq{"exam_id": examID, "teacher_id": teacherID}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get chat messages query: %w", err)
	}

	rows, err := r.db.Query(ctx, querySql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat messages: %w", err)
	}
	defer rows.Close()

	messages := []models.ChatMessage{}
	for rows.Next() {
		var m models.ChatMessage
		var examID sql.NullInt64
		if err := rows.Scan(&m.ID, &m.TeacherID, &examID, &m.Role, &m.Content, &m.Pending, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat message row: %w", err)
		}
		if examID.Valid {
			m.ExamID = &examID.Int64
		}
		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chat message rows: %w", err)
	}

	return messages, nil
}

// ResolvePendingMessage fills a pending placeholder with the AI output
func (r *ChatRepository) ResolvePendingMessage(ctx context.Context, teacherID, id int64, content string) (*models.ChatMessage, error) {
	querySql, args, err := r.sb.Update("chat_messages").
		SetMap(map[string]interface{}{
			"content": content,
			"pending": false,
		}).
		Where(squirrel.Eq{"id": id, "teacher_id": teacherID, "pending": true}).
		Suffix("RETURNING id, teacher_id, exam_id, role, content, pending, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build resolve pending message query: %w", err)
	}

	var m models.ChatMessage
	var examID sql.NullInt64
	err = r.db.QueryRow(ctx, querySql, args...).Scan(
		&m.ID, &m.TeacherID, &examID, &m.Role, &m.Content, &m.Pending, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrChatMessageNotFound
		}
		return nil, fmt.Errorf("error resolving pending chat message ID=%d: %w", id, err)
	}
	if examID.Valid {
		m.ExamID = &examID.Int64
	}

	return &m, nil
}

// DeleteMessage removes a chat message. Used to clear the "typing"
// placeholder after a failed webhook call.
func (r *ChatRepository) DeleteMessage(ctx context.Context, teacherID, id int64) error {
	querySql, args, err := r.sb.Delete("chat_messages").
		Where(squirrel.Eq{"id": id, "teacher_id": teacherID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete chat message query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, querySql, args...)
	if err != nil {
		return fmt.Errorf("error deleting chat message ID=%d: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrChatMessageNotFound
	}

	return nil
}
