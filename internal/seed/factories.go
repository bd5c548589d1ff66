// Package seed creates demo data and the built-in learning path presets. The helpers
// are intended for development and testing only.
package seed

import (
	"fmt"
	"log/slog"
	"time"

	"sapp/internal/middleware"
	"sapp/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const demoPassword = "password123"

// Factory builds domain entities and persists them to the database.
// In DryRun mode nothing is written and synthetic ids are assigned instead.
type Factory struct {
	db    *gorm.DB
	opts  Options
	faker *gofakeit.Faker
	// synthetic ID counter when running in DryRun mode
	nextID uint
	hash   string
}

// NewFactory creates a Factory bound to db. A zero opts.RandSeed seeds from the clock.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{db: db, opts: opts, faker: gofakeit.New(seed), nextID: 1000}
}

func (f *Factory) assignID() uint {
	f.nextID++
	return f.nextID
}

func (f *Factory) passwordHash() (string, error) {
	if f.opts.SkipBcrypt {
		return demoPassword, nil
	}
	if f.hash == "" {
		h, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
		if err != nil {
			return "", fmt.Errorf("hash demo password: %w", err)
		}
		f.hash = string(h)
	}
	return f.hash, nil
}

// backdate returns a time up to opts.MaxDays in the past.
func (f *Factory) backdate() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	offset := time.Duration(f.faker.Number(0, maxDays*24*60)) * time.Minute
	return time.Now().Add(-offset)
}

// CreateUser constructs and persists a sample user.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hash, err := f.passwordHash()
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username: fmt.Sprintf("%s%d", f.faker.Username(), f.faker.Number(100, 9999)),
		Email:    f.faker.Email(),
		Password: hash,
		Enabled:  true,
	}
	for _, override := range overrides {
		override(user)
	}

	if f.opts.DryRun {
		user.ID = f.assignID()
		middleware.Logger.Debug("[dry-run] create user", slog.String("username", user.Username))
		return user, nil
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs a post for user without persisting it.
func (f *Factory) BuildPost(user *models.User, overrides ...func(*models.Post)) *models.Post {
	post := &models.Post{
		Title:     f.faker.Sentence(5),
		Content:   f.faker.Paragraph(1, 3, 8, "\n"),
		ImageURL:  fmt.Sprintf("https://picsum.photos/seed/%s/800/800", f.faker.UUID()),
		UserID:    user.ID,
		CreatedAt: f.backdate(),
	}
	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePostsBatch persists multiple posts in batches of opts.BatchSize.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	if f.opts.DryRun {
		for _, p := range posts {
			p.ID = f.assignID()
		}
		middleware.Logger.Debug("[dry-run] create posts", slog.Int("count", len(posts)))
		return nil
	}
	batch := f.opts.BatchSize
	if batch <= 0 {
		batch = 100
	}
	return f.db.Omit("User").CreateInBatches(posts, batch).Error
}

// CreateComment persists a comment by user on post, optionally replying to parent.
// Replies are dated after their parent so thread ordering stays realistic.
func (f *Factory) CreateComment(user *models.User, post *models.Post, parent *models.Comment, overrides ...func(*models.Comment)) (*models.Comment, error) {
	after := post.CreatedAt
	comment := &models.Comment{
		Content: f.faker.Sentence(f.faker.Number(4, 16)),
		UserID:  user.ID,
		PostID:  post.ID,
	}
	if parent != nil {
		comment.ParentCommentID = &parent.ID
		after = parent.CreatedAt
	}
	comment.CreatedAt = after.Add(time.Duration(f.faker.Number(1, 600)) * time.Minute)
	for _, override := range overrides {
		override(comment)
	}

	if f.opts.DryRun {
		comment.ID = f.assignID()
		return comment, nil
	}
	if err := f.db.Omit("User", "Post", "ParentComment").Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateLike persists a like from user on post. A user may like a post only once.
func (f *Factory) CreateLike(user *models.User, post *models.Post) error {
	if f.opts.DryRun {
		return nil
	}
	return f.db.Omit("User", "Post").Create(&models.Like{UserID: user.ID, PostID: post.ID}).Error
}

// CreateMessage persists a direct message from sender to receiver.
func (f *Factory) CreateMessage(sender, receiver *models.User) (*models.Message, error) {
	msg := &models.Message{
		SenderID:   sender.ID,
		ReceiverID: receiver.ID,
		Content:    f.faker.Sentence(f.faker.Number(3, 12)),
		CreatedAt:  f.backdate(),
	}
	if f.opts.DryRun {
		msg.ID = f.assignID()
		return msg, nil
	}
	if err := f.db.Omit("Sender", "Receiver").Create(msg).Error; err != nil {
		return nil, err
	}
	return msg, nil
}

// CreateLearningPath persists a path for user from preset and marks the first
// `completed` items as done.
func (f *Factory) CreateLearningPath(user *models.User, preset PresetPath, completed int) (*models.LearningPath, error) {
	if f.opts.DryRun {
		path := &models.LearningPath{ID: f.assignID(), Name: preset.Name, Tag: preset.Tag, UserID: user.ID}
		for range preset.Contents {
			path.Contents = append(path.Contents, models.LearningPathContent{ID: f.assignID(), LearningPathID: path.ID})
		}
		return path, nil
	}

	var path *models.LearningPath
	err := f.db.Transaction(func(tx *gorm.DB) error {
		var err error
		path, err = createPathFromPreset(tx, user.ID, preset)
		if err != nil {
			return err
		}
		for i := range path.Contents {
			if i >= completed {
				break
			}
			c := &path.Contents[i]
			c.IsCompleted = true
			if err := tx.Model(c).Updates(map[string]interface{}{"is_completed": true, "date": time.Now()}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return path, err
}
