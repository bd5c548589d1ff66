// Command seed populates the database with demo data and learning path presets.
package main

import (
	"context"
	"flag"
	"log"

	"sapp/internal/config"
	"sapp/internal/database"
	"sapp/internal/seed"
)

func main() {
	opts := seed.Options{}
	flag.IntVar(&opts.NumUsers, "users", 20, "Number of users to create")
	flag.IntVar(&opts.PostsPerUser, "posts", 5, "Posts per user")
	flag.IntVar(&opts.CommentsPerPost, "comments", 3, "Top-level comments per post")
	flag.IntVar(&opts.MaxReplyDepth, "depth", 3, "Maximum reply chain depth under each comment")
	flag.IntVar(&opts.LikesPerPost, "likes", 5, "Likes per post, capped at the user count")
	flag.IntVar(&opts.PathsPerUser, "paths", 1, "Learning paths cloned from the presets per user")
	flag.IntVar(&opts.MessagesPerUser, "messages", 3, "Direct messages sent by each user")
	flag.IntVar(&opts.BatchSize, "batch", 100, "Insert batch size")
	flag.IntVar(&opts.MaxDays, "days", 90, "Spread creation dates over this many past days")
	flag.Int64Var(&opts.RandSeed, "rand-seed", 0, "Random seed; 0 uses the clock")
	flag.BoolVar(&opts.ShouldClean, "clean", false, "Delete existing data before seeding")
	flag.BoolVar(&opts.DryRun, "dry-run", false, "Generate data without writing it")
	flag.BoolVar(&opts.SkipBcrypt, "skip-bcrypt", false, "Store the demo password unhashed")
	presetsOnly := flag.Bool("presets", false, "Only install the built-in learning path presets")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if !*presetsOnly {
		report, err := seed.NewSeeder(db, opts).Seed(ctx)
		if err != nil {
			log.Fatalf("Seeding failed: %v", err)
		}
		log.Printf("Created %d users, %d posts, %d comments, %d likes, %d learning paths, %d messages",
			report.Users, report.Posts, report.Comments, report.Likes, report.LearningPaths, report.Messages)
		if !opts.DryRun {
			log.Println("All seeded users have the password: password123")
		}
	}

	// Installed after the seeder so -clean cannot wipe them.
	if opts.DryRun {
		return
	}
	created, err := seed.Presets(ctx, db)
	if err != nil {
		log.Fatalf("Preset seeding failed: %v", err)
	}
	log.Printf("Installed %d learning path presets", created)
}
