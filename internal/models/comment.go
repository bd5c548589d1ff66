package models

import (
	"time"
)

// Comment is a comment on a post. Comments with a ParentCommentID are
// replies and belong to the same post as their parent.
type Comment struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Content         string    `gorm:"type:text;not null" json:"content"`
	UserID          uint      `gorm:"not null;index" json:"user_id"`
	PostID          uint      `gorm:"not null;index" json:"post_id"`
	ParentCommentID *uint     `gorm:"index" json:"parent_comment_id,omitempty"`
	User            User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Post            Post      `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	ParentComment   *Comment  `gorm:"foreignKey:ParentCommentID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt       time.Time `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// IsTopLevel reports whether the comment has no parent comment.
func (c *Comment) IsTopLevel() bool {
	return c.ParentCommentID == nil
}

// CommentNode is a comment with its replies embedded, oldest reply first.
type CommentNode struct {
	ID              uint           `json:"id"`
	Content         string         `json:"content"`
	CreatedAt       time.Time      `json:"created_at"`
	UserID          uint           `json:"user_id"`
	UserName        string         `json:"user_name"`
	PostID          uint           `json:"post_id"`
	ParentCommentID *uint          `json:"parent_comment_id,omitempty"`
	Replies         []*CommentNode `json:"replies"`
}

// NewCommentNode flattens a comment into a node with no replies yet.
func NewCommentNode(c *Comment) *CommentNode {
	return &CommentNode{
		ID:              c.ID,
		Content:         c.Content,
		CreatedAt:       c.CreatedAt,
		UserID:          c.UserID,
		UserName:        c.User.Username,
		PostID:          c.PostID,
		ParentCommentID: c.ParentCommentID,
		Replies:         []*CommentNode{},
	}
}

// CommentSummary is the flattened view of a comment returned to callers; the
// author is carried by id and username only.
type CommentSummary struct {
	ID              uint      `json:"id"`
	Content         string    `json:"content"`
	UserID          uint      `json:"user_id"`
	UserName        string    `json:"user_name"`
	PostID          uint      `json:"post_id"`
	ParentCommentID *uint     `json:"parent_comment_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (c *Comment) Summary() CommentSummary {
	return CommentSummary{
		ID:              c.ID,
		Content:         c.Content,
		UserID:          c.UserID,
		UserName:        c.User.Username,
		PostID:          c.PostID,
		ParentCommentID: c.ParentCommentID,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}
