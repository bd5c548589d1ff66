package repository

import (
	"context"

	"sapp/internal/models"
	"sapp/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MessageRepository defines persistence operations for direct messages.
type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	ListBetween(ctx context.Context, userA, userB uint, limit, offset int) ([]*models.Message, error)
}

type messageRepository struct {
	db      *gorm.DB
	metrics *observability.DatabaseMetrics
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db, metrics: observability.NewDatabaseMetrics()}
}

func (r *messageRepository) Create(ctx context.Context, msg *models.Message) error {
	defer r.metrics.TrackQuery("create", "messages")()
	return conn(ctx, r.db).Omit(clause.Associations).Create(msg).Error
}

// ListBetween returns a page of the messages exchanged by two users. Pages are
// counted back from the latest message; each page is ordered oldest first.
func (r *messageRepository) ListBetween(ctx context.Context, userA, userB uint, limit, offset int) ([]*models.Message, error) {
	defer r.metrics.TrackQuery("list", "messages")()
	var messages []*models.Message
	err := conn(ctx, r.db).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", userA, userB, userB, userA).
		Preload("Sender").
		Order("created_at desc").Order("id desc").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
