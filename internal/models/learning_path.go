package models

import (
	"time"
)

// LearningPath is a user-curated, ordered list of learning content.
type LearningPath struct {
	ID        uint                  `gorm:"primaryKey" json:"id"`
	Name      string                `gorm:"not null" json:"name"`
	Tag       int                   `json:"tag"`
	UserID    uint                  `gorm:"not null;index" json:"user_id"`
	User      User                  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Contents  []LearningPathContent `gorm:"foreignKey:LearningPathID" json:"-"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// LearningPathContent is one item of a learning path. Ordinal defines the
// presentation order within the path; it is not required to be unique.
type LearningPathContent struct {
	ID                 uint          `gorm:"primaryKey" json:"id"`
	LearningPathID     uint          `gorm:"not null;index" json:"learning_path_id"`
	LearningPath       *LearningPath `gorm:"foreignKey:LearningPathID;constraint:OnDelete:CASCADE" json:"-"`
	ContentTitle       string        `gorm:"not null" json:"content_title"`
	ContentDescription string        `gorm:"type:text" json:"content_description"`
	ContentURL         string        `json:"content_url"`
	Ordinal            int           `gorm:"index" json:"ordinal"`
	IsCompleted        bool          `gorm:"not null;default:false" json:"is_completed"`
	// Date is refreshed whenever IsCompleted changes.
	Date time.Time `json:"date"`
}

// LearningPathSummary is the flattened view of a learning path returned to callers.
type LearningPathSummary struct {
	ID                uint                         `json:"id"`
	Name              string                       `json:"name"`
	Tag               int                          `json:"tag"`
	UserID            uint                         `json:"user_id"`
	UserName          string                       `json:"user_name"`
	TotalContentCount int                          `json:"total_content_count"`
	CompletedCount    int                          `json:"completed_count"`
	Contents          []LearningPathContentSummary `json:"contents"`
}

// LearningPathContentSummary carries the parent path by id only.
type LearningPathContentSummary struct {
	ID                 uint      `json:"id"`
	LearningPathID     uint      `json:"learning_path_id"`
	ContentTitle       string    `json:"content_title"`
	ContentDescription string    `json:"content_description"`
	ContentURL         string    `json:"content_url"`
	Ordinal            int       `json:"ordinal"`
	IsCompleted        bool      `json:"is_completed"`
	Date               time.Time `json:"date"`
}

// Summary flattens the content item.
func (c *LearningPathContent) Summary() LearningPathContentSummary {
	return LearningPathContentSummary{
		ID:                 c.ID,
		LearningPathID:     c.LearningPathID,
		ContentTitle:       c.ContentTitle,
		ContentDescription: c.ContentDescription,
		ContentURL:         c.ContentURL,
		Ordinal:            c.Ordinal,
		IsCompleted:        c.IsCompleted,
		Date:               c.Date,
	}
}
