package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/filmlab/photofx/internal/core/domain"
)

const collectionUsers = "users"

// UserRepository implements ports.UserRepository using MongoDB.
type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers)}
}

type userDocument struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	GoogleID   string             `bson:"google_id"`
	Email      string             `bson:"email"`
	Name       string             `bson:"name"`
	Tier       string             `bson:"tier"`
	ImageCount int                `bson:"image_count"`
	CreatedAt  time.Time          `bson:"created_at"`
}

func (d *userDocument) toDomain() *domain.User {
	tier := domain.Tier(d.Tier)
	if !tier.Valid() {
		tier = domain.TierFree
	}
	return &domain.User{
		ID:         d.ID.Hex(),
		GoogleID:   d.GoogleID,
		Email:      d.Email,
		Name:       d.Name,
		Tier:       tier,
		ImageCount: d.ImageCount,
		CreatedAt:  d.CreatedAt.UTC(),
	}
}

// Create inserts a new user document with a client-generated id.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tier := user.Tier
	if tier == "" {
		tier = domain.TierFree
	}
	doc := userDocument{
		ID:         primitive.NewObjectID(),
		GoogleID:   user.GoogleID,
		Email:      user.Email,
		Name:       user.Name,
		Tier:       string(tier),
		ImageCount: user.ImageCount,
		CreatedAt:  user.CreatedAt.UTC(),
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) FindByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"google_id": googleID})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc userDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toDomain(), nil
}

// belowTierLimit matches documents whose count is under their own tier's limit.
func belowTierLimit() bson.A {
	return bson.A{
		bson.M{"tier": string(domain.TierPremium), "image_count": bson.M{"$lt": domain.TierLimit(domain.TierPremium)}},
		bson.M{"tier": bson.M{"$ne": string(domain.TierPremium)}, "image_count": bson.M{"$lt": domain.TierLimit(domain.TierFree)}},
	}
}

// IncrementImageCount performs the check and the increment as one
// findAndModify, so concurrent calls can never push the count past the limit.
func (r *UserRepository) IncrementImageCount(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	opCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": oid, "$or": belowTierLimit()}
	update := bson.M{"$inc": bson.M{"image_count": 1}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc userDocument
	err = r.col.FindOneAndUpdate(opCtx, filter, update, opts).Decode(&doc)
	if err == nil {
		return doc.toDomain(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("increment image count: %w", err)
	}

	// Nothing matched: either the user is gone or already at the ceiling.
	if _, findErr := r.FindByID(ctx, id); findErr != nil {
		return nil, findErr
	}
	return nil, domain.ErrQuotaExceeded
}

// UpgradeToPremium switches the tier and resets the counter in one update.
func (r *UserRepository) UpgradeToPremium(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{"tier": string(domain.TierPremium), "image_count": 0}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc userDocument
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("upgrade user: %w", err)
	}
	return doc.toDomain(), nil
}

// EnsureIndexes creates the unique identity indexes on the users collection.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "google_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
