package seed

import (
	"context"
	"fmt"
	"log"

	"recipehub/internal/models"

	"gorm.io/gorm"
)

// Seeder orchestrates the factory into a populated social graph.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	opts    Options
}

// NewSeeder builds a Seeder with sane defaults for anything left zero.
func NewSeeder(db *gorm.DB, opts Options) (*Seeder, error) {
	if opts.FollowsPerUser <= 0 {
		opts.FollowsPerUser = 5
	}
	if opts.RatingsPerPost <= 0 {
		opts.RatingsPerPost = 4
	}
	f, err := NewFactory(db, opts)
	if err != nil {
		return nil, err
	}
	return &Seeder{db: db, factory: f, opts: opts}, nil
}

// ClearAll removes every seeded row, children first.
func (s *Seeder) ClearAll(ctx context.Context) error {
	log.Println("🗑️  Clearing existing data...")
	for _, m := range []interface{}{
		&models.Rating{},
		&models.Comment{},
		&models.Image{},
		&models.Follow{},
		&models.Post{},
		&models.User{},
	} {
		// Each table gets its own statement.
		tx := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped()
		if err := tx.Delete(m).Error; err != nil {
			return fmt.Errorf("clear %T: %w", m, err)
		}
	}
	return nil
}

// SeedUsers creates n accounts.
func (s *Seeder) SeedUsers(ctx context.Context, n int) ([]*models.User, error) {
	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		u, err := s.factory.CreateUser(ctx)
		if err != nil {
			return users, err
		}
		users = append(users, u)
	}
	return users, nil
}

// SeedFollows gives every user up to FollowsPerUser distinct followees.
func (s *Seeder) SeedFollows(ctx context.Context, users []*models.User) (int, error) {
	created := 0
	if len(users) < 2 {
		return 0, nil
	}
	for _, u := range users {
		want := 1 + s.factory.rnd.Intn(s.opts.FollowsPerUser)
		for _, idx := range s.factory.rnd.Perm(len(users)) {
			if want == 0 {
				break
			}
			target := users[idx]
			if target.ID == u.ID {
				continue
			}
			if err := s.factory.Follow(ctx, u, target); err != nil {
				return created, fmt.Errorf("follow %d -> %d: %w", u.ID, target.ID, err)
			}
			created++
			want--
		}
	}
	return created, nil
}

// SeedPosts spreads n recipes across users.
func (s *Seeder) SeedPosts(ctx context.Context, users []*models.User, n int) ([]*models.Post, error) {
	if len(users) == 0 || n <= 0 {
		return nil, nil
	}
	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		owner := users[s.factory.rnd.Intn(len(users))]
		posts = append(posts, s.factory.BuildPost(owner))
	}
	if err := s.factory.CreatePostsBatch(ctx, posts); err != nil {
		return nil, fmt.Errorf("create posts: %w", err)
	}
	return posts, nil
}

// SeedRatings has up to RatingsPerPost users other than the author rate each post.
func (s *Seeder) SeedRatings(ctx context.Context, users []*models.User, posts []*models.Post) (int, error) {
	rated := 0
	for _, p := range posts {
		want := s.factory.rnd.Intn(s.opts.RatingsPerPost + 1)
		for _, idx := range s.factory.rnd.Perm(len(users)) {
			if want == 0 {
				break
			}
			rater := users[idx]
			if rater.ID == p.UserID {
				continue
			}
			if err := s.factory.Rate(ctx, rater, p); err != nil {
				return rated, err
			}
			rated++
			want--
		}
	}
	return rated, nil
}

// Run seeds users, follows, posts and ratings in that order.
func (s *Seeder) Run(ctx context.Context) error {
	log.Printf("🌱 Seeding %d users and %d posts...", s.opts.NumUsers, s.opts.NumPosts)

	users, err := s.SeedUsers(ctx, s.opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("✓ %d users created", len(users))

	follows, err := s.SeedFollows(ctx, users)
	if err != nil {
		return fmt.Errorf("failed to create follows: %w", err)
	}
	log.Printf("✓ %d follow edges created", follows)

	posts, err := s.SeedPosts(ctx, users, s.opts.NumPosts)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("✓ %d posts created", len(posts))

	ratings, err := s.SeedRatings(ctx, users, posts)
	if err != nil {
		return fmt.Errorf("failed to create ratings: %w", err)
	}
	log.Printf("✓ %d ratings created", ratings)
	return nil
}
