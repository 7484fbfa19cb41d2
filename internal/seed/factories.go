// Package seed provides helpers to create demo data for the recipe database.
// These helpers are intended for development and testing only.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"recipehub/internal/models"
	"recipehub/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password every seeded account logs in with.
const DefaultPassword = "password123"

// Options tunes how much data the seeder produces.
type Options struct {
	NumUsers int
	NumPosts int
	// FollowsPerUser is the upper bound of accounts each seeded user follows.
	FollowsPerUser int
	// RatingsPerPost is the upper bound of raters per post.
	RatingsPerPost int
	// MaxDays spreads created_at over this many days into the past.
	MaxDays int
	// RandSeed makes a run reproducible when non-zero.
	RandSeed int64
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db      *gorm.DB
	opts    Options
	rnd     *rand.Rand
	faker   *gofakeit.Faker
	ratings repository.RatingRepository
	hash    string
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) (*Factory, error) {
	seed := opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	// one hash for every account; bcrypt per user dominates seeding time otherwise
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}
	//nolint:gosec // Weak random number generator is fine for seeding
	rnd := rand.New(rand.NewSource(seed))
	return &Factory{
		db:      db,
		opts:    opts,
		rnd:     rnd,
		faker:   gofakeit.New(seed),
		ratings: repository.NewRatingRepository(db),
		hash:    string(hash),
	}, nil
}

// BuildUser constructs an account without persisting it.
func (f *Factory) BuildUser(overrides ...func(*models.User)) *models.User {
	u := &models.User{
		Username: fmt.Sprintf("%s%d", strings.ToLower(f.faker.FirstName()), f.rnd.Intn(10000)),
		Password: f.hash,
		Bio:      f.faker.Sentence(8),
	}
	for _, o := range overrides {
		o(u)
	}
	return u
}

// CreateUser persists a built user, retrying once on a username collision.
func (f *Factory) CreateUser(ctx context.Context, overrides ...func(*models.User)) (*models.User, error) {
	u := f.BuildUser(overrides...)
	if err := f.db.WithContext(ctx).Create(u).Error; err != nil {
		u.ID = 0
		u.Username = fmt.Sprintf("%s_%s", u.Username, f.faker.LetterN(4))
		if err := f.db.WithContext(ctx).Create(u).Error; err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
	}
	return u, nil
}

// BuildPost constructs a recipe for owner with a random tag set and a
// created_at spread over the configured window.
func (f *Factory) BuildPost(owner *models.User, overrides ...func(*models.Post)) *models.Post {
	dish := f.faker.Dessert()
	if f.rnd.Intn(2) == 0 {
		dish = f.faker.Dinner()
	}

	ingredients := make([]string, 0, 6)
	for i := 0; i < 3+f.rnd.Intn(4); i++ {
		ingredients = append(ingredients, fmt.Sprintf("%d %s", 1+f.rnd.Intn(4), strings.ToLower(f.faker.Vegetable())))
	}

	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.rnd.Intn(maxDays)
	hoursBack := f.rnd.Intn(24)
	minsBack := f.rnd.Intn(60)

	p := &models.Post{
		UserID:      owner.ID,
		Title:       dish,
		Ingredients: strings.Join(ingredients, "\n"),
		Recipe:      f.faker.Paragraph(1, 3, 10, "\n"),
		RecipeTime:  5 * (1 + f.rnd.Intn(24)),
		Tags:        f.randomTags(),
		CreatedAt:   time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour - time.Duration(minsBack)*time.Minute),
	}
	for _, o := range overrides {
		o(p)
	}
	return p
}

// CreatePostsBatch persists multiple posts in a single DB call.
func (f *Factory) CreatePostsBatch(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	return f.db.WithContext(ctx).CreateInBatches(posts, 100).Error
}

// Follow inserts the edge unless it already exists.
func (f *Factory) Follow(ctx context.Context, follower, followed *models.User) error {
	edge := models.Follow{FollowerID: follower.ID, FollowedID: followed.ID}
	return f.db.WithContext(ctx).Where(&edge).FirstOrCreate(&edge).Error
}

// Rate sets every sub-score of rater on post through the rating repository so
// the post aggregates stay in step with the rows.
func (f *Factory) Rate(ctx context.Context, rater *models.User, post *models.Post) error {
	for _, kind := range models.RatingKinds {
		if _, _, err := f.ratings.Upsert(ctx, rater.ID, post.ID, kind, f.randomScore(kind)); err != nil {
			return fmt.Errorf("rate post %d: %w", post.ID, err)
		}
	}
	return nil
}

func (f *Factory) randomTags() models.TagSet {
	vocab := models.KnownTags()
	raw := make([]string, 0, 3)
	for i := 0; i < f.rnd.Intn(4); i++ {
		raw = append(raw, string(vocab[f.rnd.Intn(len(vocab))]))
	}
	tags, _ := models.NewTagSet(raw)
	return tags
}

// randomScore picks a half-step score inside the kind's bounds.
func (f *Factory) randomScore(kind models.RatingKind) float64 {
	lo, hi := kind.Bounds()
	steps := int((hi - lo) * 2)
	return lo + float64(f.rnd.Intn(steps+1))/2
}
