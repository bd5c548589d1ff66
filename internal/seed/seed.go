package seed

import (
	"context"
	"fmt"
	"log/slog"

	"sapp/internal/middleware"
	"sapp/internal/models"

	"gorm.io/gorm"
)

// Options configure the seeder.
type Options struct {
	NumUsers        int
	PostsPerUser    int
	CommentsPerPost int
	// MaxReplyDepth bounds how deep generated reply chains go; 0 creates top-level comments only.
	MaxReplyDepth int
	LikesPerPost  int
	// PathsPerUser learning paths are cloned from the presets for every user.
	PathsPerUser int
	// MessagesPerUser direct messages are sent by every user to other random users.
	MessagesPerUser int
	ShouldClean     bool
	DryRun          bool
	SkipBcrypt      bool
	BatchSize       int
	MaxDays         int
	RandSeed        int64
}

// Report counts what a seeding run created.
type Report struct {
	Users         int
	Posts         int
	Comments      int
	Likes         int
	LearningPaths int
	Messages      int
}

// Seeder generates a connected demo data set.
type Seeder struct {
	db      *gorm.DB
	opts    Options
	factory *Factory
	presets []PresetPath
}

func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, opts: opts, factory: NewFactory(db, opts), presets: DefaultPresets()}
}

// Seed populates the database with users, posts, threaded comments, likes and learning paths.
func (s *Seeder) Seed(ctx context.Context) (*Report, error) {
	logger := middleware.Logger
	logger.InfoContext(ctx, "seeding started",
		slog.Int("users", s.opts.NumUsers), slog.Int("posts_per_user", s.opts.PostsPerUser),
		slog.Bool("dry_run", s.opts.DryRun))

	if s.opts.ShouldClean && !s.opts.DryRun {
		if err := clearData(s.db); err != nil {
			return nil, fmt.Errorf("clear existing data: %w", err)
		}
	}

	report := &Report{}
	users := make([]*models.User, 0, s.opts.NumUsers)
	for i := 0; i < s.opts.NumUsers; i++ {
		u, err := s.factory.CreateUser()
		if err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		users = append(users, u)
	}
	report.Users = len(users)

	posts := make([]*models.Post, 0, len(users)*s.opts.PostsPerUser)
	for _, u := range users {
		for i := 0; i < s.opts.PostsPerUser; i++ {
			posts = append(posts, s.factory.BuildPost(u))
		}
	}
	if err := s.factory.CreatePostsBatch(posts); err != nil {
		return nil, fmt.Errorf("create posts: %w", err)
	}
	report.Posts = len(posts)

	if len(users) > 0 {
		for _, p := range posts {
			n, err := s.seedThread(p, users)
			if err != nil {
				return nil, err
			}
			report.Comments += n

			likes, err := s.seedLikes(p, users)
			if err != nil {
				return nil, err
			}
			report.Likes += likes
		}
	}

	for _, u := range users {
		for i := 0; i < s.opts.PathsPerUser && len(s.presets) > 0; i++ {
			preset := s.presets[(int(u.ID)+i)%len(s.presets)]
			completed := s.factory.faker.Number(0, len(preset.Contents))
			if _, err := s.factory.CreateLearningPath(u, preset, completed); err != nil {
				return nil, fmt.Errorf("create learning path for user %d: %w", u.ID, err)
			}
			report.LearningPaths++
		}
	}

	if len(users) > 1 {
		for _, u := range users {
			for i := 0; i < s.opts.MessagesPerUser; i++ {
				to := s.pickUser(users)
				for to.ID == u.ID {
					to = s.pickUser(users)
				}
				if _, err := s.factory.CreateMessage(u, to); err != nil {
					return nil, fmt.Errorf("message from user %d: %w", u.ID, err)
				}
				report.Messages++
			}
		}
	}

	logger.InfoContext(ctx, "seeding completed",
		slog.Int("users", report.Users), slog.Int("posts", report.Posts),
		slog.Int("comments", report.Comments), slog.Int("likes", report.Likes),
		slog.Int("learning_paths", report.LearningPaths), slog.Int("messages", report.Messages))
	return report, nil
}

// seedThread creates CommentsPerPost top-level comments, each with a reply chain of
// random depth up to MaxReplyDepth.
func (s *Seeder) seedThread(post *models.Post, users []*models.User) (int, error) {
	created := 0
	for i := 0; i < s.opts.CommentsPerPost; i++ {
		parent, err := s.factory.CreateComment(s.pickUser(users), post, nil)
		if err != nil {
			return created, fmt.Errorf("create comment on post %d: %w", post.ID, err)
		}
		created++

		depth := s.factory.faker.Number(0, s.opts.MaxReplyDepth)
		for d := 0; d < depth; d++ {
			parent, err = s.factory.CreateComment(s.pickUser(users), post, parent)
			if err != nil {
				return created, fmt.Errorf("create reply on post %d: %w", post.ID, err)
			}
			created++
		}
	}
	return created, nil
}

func (s *Seeder) seedLikes(post *models.Post, users []*models.User) (int, error) {
	n := s.opts.LikesPerPost
	if n > len(users) {
		n = len(users)
	}
	start := s.factory.faker.Number(0, len(users)-1)
	for i := 0; i < n; i++ {
		if err := s.factory.CreateLike(users[(start+i)%len(users)], post); err != nil {
			return i, fmt.Errorf("like post %d: %w", post.ID, err)
		}
	}
	return n, nil
}

func (s *Seeder) pickUser(users []*models.User) *models.User {
	return users[s.factory.faker.Number(0, len(users)-1)]
}

// clearData removes all seeded rows, children first.
func clearData(db *gorm.DB) error {
	if db.Dialector.Name() == "postgres" {
		return db.Exec(`TRUNCATE TABLE messages, learning_path_contents, learning_paths, comments, likes, posts, users RESTART IDENTITY CASCADE`).Error
	}
	for _, table := range []string{"messages", "learning_path_contents", "learning_paths", "comments", "likes", "posts", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}
