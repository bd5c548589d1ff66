package service

import (
	"context"
	"fmt"
	"time"

	"sapp/internal/models"
	"sapp/internal/observability"
	"sapp/internal/repository"
	"sapp/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// MessageService handles direct messages between two users.
type MessageService struct {
	tx          repository.Transactor
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	now         func() time.Time
}

type SendMessageInput struct {
	SenderID   uint
	ReceiverID uint
	Content    string
}

func NewMessageService(tx repository.Transactor, messageRepo repository.MessageRepository, userRepo repository.UserRepository) *MessageService {
	return &MessageService{tx: tx, messageRepo: messageRepo, userRepo: userRepo, now: time.Now}
}

// SendMessage stores a message from the sender to an existing receiver.
func (s *MessageService) SendMessage(ctx context.Context, in SendMessageInput) (msg *models.Message, err error) {
	ctx, finish := observability.StartOperation(ctx, "message.send",
		attribute.Int64("user.id", int64(in.SenderID)),
		attribute.Int64("receiver.id", int64(in.ReceiverID)))
	defer func() { finish(err) }()

	if in.ReceiverID == 0 {
		return nil, models.NewValidationError("Receiver is required")
	}
	if in.ReceiverID == in.SenderID {
		return nil, models.NewValidationError("Cannot send a message to yourself")
	}
	if verr := validation.ValidateContent(in.Content); verr != nil {
		return nil, models.NewValidationError(verr.Error())
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		sender, err := s.userRepo.GetByID(ctx, in.SenderID)
		if err != nil {
			return err
		}
		if _, err := s.userRepo.GetByID(ctx, in.ReceiverID); err != nil {
			return err
		}
		created := &models.Message{
			SenderID:   in.SenderID,
			ReceiverID: in.ReceiverID,
			Content:    in.Content,
			CreatedAt:  s.now(),
		}
		if err := s.messageRepo.Create(ctx, created); err != nil {
			return fmt.Errorf("create message: %w", err)
		}
		created.Sender = *sender
		msg = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// GetConversation returns a page of the messages userID exchanged with otherUserID,
// oldest first within the page.
func (s *MessageService) GetConversation(ctx context.Context, userID, otherUserID uint, limit, offset int) (msgs []*models.Message, err error) {
	ctx, finish := observability.StartOperation(ctx, "message.conversation",
		attribute.Int64("user.id", int64(userID)),
		attribute.Int64("other_user.id", int64(otherUserID)))
	defer func() { finish(err) }()

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.userRepo.GetByID(ctx, otherUserID); err != nil {
			return err
		}
		var err error
		msgs, err = s.messageRepo.ListBetween(ctx, userID, otherUserID, limit, offset)
		return err
	})
	if err != nil {
		return nil, err
	}
	return msgs, nil
}
