package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"sapp/internal/models"
	"sapp/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageService_SendMessage_Validation(t *testing.T) {
	t.Parallel()

	tx := &passthroughTx{}
	svc := NewMessageService(tx, noopMessageRepo(), noopUserRepo())
	ctx := context.Background()

	cases := []struct {
		name string
		in   SendMessageInput
	}{
		{"no receiver", SendMessageInput{SenderID: 1, Content: "hi"}},
		{"to self", SendMessageInput{SenderID: 1, ReceiverID: 1, Content: "hi"}},
		{"blank content", SendMessageInput{SenderID: 1, ReceiverID: 2, Content: "   "}},
		{"content too long", SendMessageInput{SenderID: 1, ReceiverID: 2, Content: strings.Repeat("x", 10001)}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SendMessage(ctx, tc.in)
			assertValidationError(t, err)
		})
	}
	assert.Zero(t, tx.calls)
}

func TestMessageService_SendMessage(t *testing.T) {
	t.Parallel()

	t.Run("missing receiver", func(t *testing.T) {
		users := noopUserRepo()
		users.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
			if id == 9 {
				return nil, models.NewNotFoundError("User", id)
			}
			return &models.User{ID: id, Username: "sender"}, nil
		}
		messages := noopMessageRepo()
		messages.createFn = func(_ context.Context, _ *models.Message) error {
			t.Fatal("message must not be stored")
			return nil
		}
		svc := NewMessageService(&passthroughTx{}, messages, users)
		_, err := svc.SendMessage(context.Background(), SendMessageInput{SenderID: 1, ReceiverID: 9, Content: "hi"})
		assertNotFoundError(t, err)
	})

	t.Run("stores and attaches sender", func(t *testing.T) {
		var stored *models.Message
		messages := noopMessageRepo()
		messages.createFn = func(_ context.Context, m *models.Message) error {
			m.ID = 5
			stored = m
			return nil
		}
		users := noopUserRepo()
		users.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
			name := "bob"
			if id == 1 {
				name = "alice"
			}
			return &models.User{ID: id, Username: name}, nil
		}
		tx := &passthroughTx{}
		svc := NewMessageService(tx, messages, users)
		svc.now = func() time.Time { return fixedNow }

		msg, err := svc.SendMessage(context.Background(), SendMessageInput{SenderID: 1, ReceiverID: 2, Content: "hello"})
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, uint(5), msg.ID)
		assert.Equal(t, fixedNow, msg.CreatedAt)
		assert.Equal(t, "alice", msg.Sender.Username)
		assert.Equal(t, uint(2), stored.ReceiverID)
		assert.Equal(t, 1, tx.calls)
	})

	t.Run("store failure is wrapped", func(t *testing.T) {
		boom := errors.New("disk full")
		messages := noopMessageRepo()
		messages.createFn = func(_ context.Context, _ *models.Message) error { return boom }
		svc := NewMessageService(&passthroughTx{}, messages, noopUserRepo())
		_, err := svc.SendMessage(context.Background(), SendMessageInput{SenderID: 1, ReceiverID: 2, Content: "hello"})
		require.ErrorIs(t, err, boom)
	})
}

func TestMessageService_GetConversation(t *testing.T) {
	t.Parallel()

	t.Run("missing other user", func(t *testing.T) {
		users := noopUserRepo()
		users.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
			return nil, models.NewNotFoundError("User", id)
		}
		svc := NewMessageService(&passthroughTx{}, noopMessageRepo(), users)
		_, err := svc.GetConversation(context.Background(), 1, 404, 20, 0)
		assertNotFoundError(t, err)
	})

	t.Run("passes the pair and page", func(t *testing.T) {
		messages := noopMessageRepo()
		messages.listBetweenFn = func(_ context.Context, a, b uint, limit, offset int) ([]*models.Message, error) {
			assert.Equal(t, uint(1), a)
			assert.Equal(t, uint(2), b)
			assert.Equal(t, 20, limit)
			assert.Equal(t, 40, offset)
			return []*models.Message{{ID: 7}}, nil
		}
		svc := NewMessageService(&passthroughTx{}, messages, noopUserRepo())
		msgs, err := svc.GetConversation(context.Background(), 1, 2, 20, 40)
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Equal(t, uint(7), msgs[0].ID)
	})
}

func TestIntegration_MessageConversation(t *testing.T) {
	s := newSQLiteServices(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, s.db, "alice")
	bob := testutil.CreateUser(t, s.db, "bob")
	carol := testutil.CreateUser(t, s.db, "carol")

	clock := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	s.messages.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	send := func(from, to uint, content string) *models.Message {
		t.Helper()
		msg, err := s.messages.SendMessage(ctx, SendMessageInput{SenderID: from, ReceiverID: to, Content: content})
		require.NoError(t, err)
		return msg
	}
	hi := send(alice.ID, bob.ID, "hi bob")
	reply := send(bob.ID, alice.ID, "hi alice")
	send(carol.ID, alice.ID, "unrelated")

	msgs, err := s.messages.GetConversation(ctx, bob.ID, alice.ID, 20, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, hi.ID, msgs[0].ID)
	assert.Equal(t, reply.ID, msgs[1].ID)
	assert.Equal(t, alice.Username, msgs[0].Sender.Username)

	_, err = s.messages.SendMessage(ctx, SendMessageInput{SenderID: alice.ID, ReceiverID: 999999, Content: "nobody"})
	assertNotFoundError(t, err)
}
