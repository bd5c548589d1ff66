package models

import "time"

// Message is a direct message from one user to another.
type Message struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SenderID   uint      `gorm:"not null;index:idx_messages_pair,priority:1" json:"sender_id"`
	ReceiverID uint      `gorm:"not null;index:idx_messages_pair,priority:2;index" json:"receiver_id"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	Sender     User      `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"-"`
	Receiver   User      `gorm:"foreignKey:ReceiverID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt  time.Time `gorm:"index:idx_messages_pair,priority:3" json:"created_at"`
}

// MessageSummary is the flattened view of a message returned to callers.
type MessageSummary struct {
	ID         uint      `json:"id"`
	SenderID   uint      `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	ReceiverID uint      `json:"receiver_id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

func (m *Message) Summary() MessageSummary {
	return MessageSummary{
		ID:         m.ID,
		SenderID:   m.SenderID,
		SenderName: m.Sender.Username,
		ReceiverID: m.ReceiverID,
		Content:    m.Content,
		CreatedAt:  m.CreatedAt,
	}
}

// SummarizeMessages flattens messages in order.
func SummarizeMessages(messages []*Message) []MessageSummary {
	out := make([]MessageSummary, 0, len(messages))
	for _, m := range messages {
		out = append(out, m.Summary())
	}
	return out
}
