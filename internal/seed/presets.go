package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"sapp/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// CuratorUsername owns the built-in learning paths.
const CuratorUsername = "sapp_curator"

//go:embed presets.yml
var presetsYAML []byte

// PresetContent is one item of a learning path template.
type PresetContent struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	URL         string `yaml:"url"`
	Ordinal     int    `yaml:"ordinal"`
}

// PresetPath is a learning path template.
type PresetPath struct {
	Name     string          `yaml:"name"`
	Tag      int             `yaml:"tag"`
	Contents []PresetContent `yaml:"contents"`
}

type presetFile struct {
	LearningPaths []PresetPath `yaml:"learning_paths"`
}

// ParsePresets decodes learning path templates from YAML. Names must be unique and
// every path and content item must be titled.
func ParsePresets(data []byte) ([]PresetPath, error) {
	var file presetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode presets: %w", err)
	}

	seen := make(map[string]bool, len(file.LearningPaths))
	for i, p := range file.LearningPaths {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return nil, fmt.Errorf("preset %d: name is required", i)
		}
		if seen[name] {
			return nil, fmt.Errorf("preset %q: duplicate name", name)
		}
		seen[name] = true
		for j, c := range p.Contents {
			if strings.TrimSpace(c.Title) == "" {
				return nil, fmt.Errorf("preset %q content %d: title is required", name, j)
			}
		}
	}
	return file.LearningPaths, nil
}

// DefaultPresets returns the embedded templates.
func DefaultPresets() []PresetPath {
	presets, err := ParsePresets(presetsYAML)
	if err != nil {
		panic(err)
	}
	return presets
}

// Presets installs every embedded template owned by the curator account, skipping
// templates whose name the curator already uses. It returns the number of paths created.
func Presets(ctx context.Context, db *gorm.DB) (int, error) {
	created := 0
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		curator, err := ensureCurator(tx)
		if err != nil {
			return err
		}
		for _, preset := range DefaultPresets() {
			var count int64
			if err := tx.Model(&models.LearningPath{}).
				Where("user_id = ? AND name = ?", curator.ID, preset.Name).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			if _, err := createPathFromPreset(tx, curator.ID, preset); err != nil {
				return err
			}
			created++
		}
		return nil
	})
	return created, err
}

func ensureCurator(tx *gorm.DB) (*models.User, error) {
	var curator models.User
	err := tx.Where("username = ?", CuratorUsername).First(&curator).Error
	if err == nil {
		return &curator, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	curator = models.User{
		Username: CuratorUsername,
		Email:    CuratorUsername + "@sapp.local",
		// Not a valid bcrypt hash, so the account cannot be logged into.
		Password: "!",
		Enabled:  true,
	}
	if err := tx.Create(&curator).Error; err != nil {
		return nil, err
	}
	return &curator, nil
}

func createPathFromPreset(tx *gorm.DB, userID uint, preset PresetPath) (*models.LearningPath, error) {
	path := &models.LearningPath{Name: preset.Name, Tag: preset.Tag, UserID: userID}
	if err := tx.Omit("User", "Contents").Create(path).Error; err != nil {
		return nil, err
	}
	for _, item := range preset.Contents {
		content := &models.LearningPathContent{
			LearningPathID:     path.ID,
			ContentTitle:       item.Title,
			ContentDescription: item.Description,
			ContentURL:         item.URL,
			Ordinal:            item.Ordinal,
			Date:               time.Now(),
		}
		if err := tx.Omit("LearningPath").Create(content).Error; err != nil {
			return nil, err
		}
		path.Contents = append(path.Contents, *content)
	}
	return path, nil
}
