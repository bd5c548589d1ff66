package database

import "sapp/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models, parents first.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.LearningPath{},
		&models.LearningPathContent{},
		&models.Message{},
	}
}
