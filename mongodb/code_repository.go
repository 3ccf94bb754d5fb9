package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/baliciaga/passwordless/domain"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// CodeRepositoryMongo implements domain.OneTimeCodeRepository on MongoDB.
// Rows live in the login_codes collection, keyed by email, with a TTL index
// on expires_at for automatic cleanup.
type CodeRepositoryMongo struct {
	collection *mongo.Collection
	now        func() time.Time
}

// NewCodeRepositoryMongo creates the repository and ensures its indexes.
func NewCodeRepositoryMongo(ctx context.Context, db *mongo.Database) (*CodeRepositoryMongo, error) {
	repo := &CodeRepositoryMongo{
		collection: db.Collection(LoginCodesCollection),
		now:        time.Now,
	}

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0), // TTL index
		},
	}
	if _, err := repo.collection.Indexes().CreateMany(ctx, indexModels); err != nil {
		log.Warn().Err(err).Msg("Issue creating indexes for login_codes collection (might already exist)")
	}

	return repo, nil
}

// Save upserts the code under its email key. ReplaceOne with upsert gives
// last-write-wins: a re-issued code supersedes the outstanding one, so at most
// one code per email exists at a time.
func (r *CodeRepositoryMongo) Save(ctx context.Context, code *domain.OneTimeCode) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"email": code.Email}, code, opts)
	if err != nil {
		return fmt.Errorf("failed to store login code: %w", err)
	}
	return nil
}

// Get returns the unexpired code for the email. Mongo's TTL monitor sweeps
// roughly once a minute, so an expired row can still be readable; it is
// treated as absent here rather than trusted.
func (r *CodeRepositoryMongo) Get(ctx context.Context, email string) (*domain.OneTimeCode, error) {
	var code domain.OneTimeCode
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&code)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrCodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read login code: %w", err)
	}
	if code.Expired(r.now()) {
		return nil, domain.ErrCodeNotFound
	}
	return &code, nil
}

// Delete invalidates the code for the email.
func (r *CodeRepositoryMongo) Delete(ctx context.Context, email string) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"email": email}); err != nil {
		return fmt.Errorf("failed to delete login code: %w", err)
	}
	return nil
}

var _ domain.OneTimeCodeRepository = (*CodeRepositoryMongo)(nil)
