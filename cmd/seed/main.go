// Seeds a local database with demo users, posts, tags and follows.
package main

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/d60-Lab/gin-blog/config"
	"github.com/d60-Lab/gin-blog/internal/repository"
	"github.com/d60-Lab/gin-blog/internal/service"
	"github.com/d60-Lab/gin-blog/pkg/database"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func main() {
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))
	ctx := context.Background()

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	tagRepo := repository.NewTagRepository(db)
	followRepo := repository.NewFollowRepository(db)
	fanRepo := repository.NewFanRepository(db)
	accessRepo := repository.NewAccessRequestRepository(db)

	postSvc := service.NewPostService(db, postRepo, tagRepo)
	relSvc := service.NewRelationshipService(followRepo, fanRepo, nil, nil)
	accessSvc := service.NewAccessService(accessRepo, postRepo)

	hash := must(bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost))

	alice := must(userRepo.Create(ctx, "alice", string(hash)))
	bob := must(userRepo.Create(ctx, "bob", string(hash)))
	carol := must(userRepo.Create(ctx, "carol", string(hash)))

	public := must(postSvc.Create(ctx, alice.ID, "Hello, world", "First post.", false, []string{"intro", "go"}))
	private := must(postSvc.Create(ctx, alice.ID, "Drafts and secrets", "Not for everyone.", true, []string{"drafts"}))

	if err := relSvc.Follow(ctx, bob.ID, alice.ID); err != nil {
		panic(err)
	}
	// Fan index is written synchronously here; no replicator in the seeder.
	if err := fanRepo.Create(ctx, alice.ID, bob.ID); err != nil {
		panic(err)
	}
	if err := relSvc.Follow(ctx, carol.ID, alice.ID); err != nil {
		panic(err)
	}
	if err := fanRepo.Create(ctx, alice.ID, carol.ID); err != nil {
		panic(err)
	}

	// Bob asks for the private post; Alice grants it.
	if err := accessSvc.RequestAccess(ctx, bob.ID, alice.ID, private.ID); err != nil {
		panic(err)
	}
	if err := accessSvc.ToggleGrant(ctx, alice.ID, bob.ID, private.ID); err != nil {
		panic(err)
	}

	fmt.Printf("seeded: users=3 posts=2 (public=%s private=%s)\n", public.ID, private.ID)
}
