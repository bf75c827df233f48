// Command main runs the database seeder for Agora.
package main

import (
	"context"
	"flag"
	"log"

	"agora/internal/bootstrap"
	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	discussions := flag.Int("discussions", 5, "Discussions per community")
	comments := flag.Int("comments", 8, "Comments per discussion")
	likes := flag.Int("likes", 30, "Chance (0-100) that a member likes a discussion")
	goals := flag.Int("goals", 2, "Goals per user")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	randSeed := flag.Int64("seed", 0, "Random seed for reproducible content (0 picks one)")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d users, %d discussions/community, %d comments/discussion, clean=%v\n",
		*numUsers, *discussions, *comments, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()
	svc := bootstrap.Services(cfg, db, nil)
	s := seed.NewSeeder(db, svc, *randSeed)

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	owner, err := seed.SystemUser(ctx, svc, repository.NewUserRepository(db), cfg.AdminEmailDomain)
	if err != nil {
		log.Fatalf("System user seeding failed: %v", err)
	}
	if _, err := seed.Communities(ctx, svc, owner.ID); err != nil {
		log.Fatalf("Built-in community seeding failed: %v", err)
	}

	var communityIDs []uint
	if err := db.Model(&models.Community{}).Where("is_private = ?", false).Order("id").Pluck("id", &communityIDs).Error; err != nil {
		log.Fatalf("Failed to list communities: %v", err)
	}

	res, err := s.Run(ctx, communityIDs, seed.Options{
		Users:                   *numUsers,
		DiscussionsPerCommunity: *discussions,
		CommentsPerDiscussion:   *comments,
		LikePercent:             *likes,
		GoalsPerUser:            *goals,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Done: run %s created %d users, %d discussions, %d comments, %d likes, %d goals",
		res.RunID, res.Users, res.Discussions, res.Comments, res.Likes, res.Goals)
	log.Printf("All seeded users have the password: %s", seed.DemoPassword)
}
