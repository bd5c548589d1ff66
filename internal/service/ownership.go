package service

import "sapp/internal/models"

// ownsComment reports whether userID authored c.
func ownsComment(c *models.Comment, userID uint) bool {
	return c != nil && c.UserID == userID
}

// ownsPath reports whether userID owns p.
func ownsPath(p *models.LearningPath, userID uint) bool {
	return p != nil && p.UserID == userID
}

// ownsContent follows content -> path -> user. path must be the parent resolved for c.
func ownsContent(c *models.LearningPathContent, path *models.LearningPath, userID uint) bool {
	return c != nil && path != nil && c.LearningPathID == path.ID && ownsPath(path, userID)
}

func ownsPost(p *models.Post, userID uint) bool {
	return p != nil && p.UserID == userID
}
