package mongostore

import (
	"context"

	"github.com/isdelr/taskflow-be/internal/models"
	"github.com/isdelr/taskflow-be/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserStore persists users in the users collection.
type UserStore struct {
	coll *mongo.Collection
}

// Create inserts a new user. The password must already be hashed.
func (s *UserStore) Create(ctx context.Context, u models.User) (models.User, error) {
	if u.ID == "" {
		u.ID = newID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = nowUTC()
	}
	if _, err := s.coll.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, store.ErrEmailTaken()
		}
		return models.User{}, err
	}
	return u, nil
}

// FindByID retrieves a single user by ID.
func (s *UserStore) FindByID(ctx context.Context, id string) (models.User, error) {
	return findOne[models.User](ctx, s.coll, bson.M{"_id": id}, store.ErrUserNotFound)
}

// FindByEmail retrieves a single user by email, including the password hash.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return findOne[models.User](ctx, s.coll, bson.M{"email": email}, store.ErrUserNotFound)
}

// Find lists every user.
func (s *UserStore) Find(ctx context.Context) ([]models.User, error) {
	return findAll[models.User](ctx, s.coll, bson.M{}, byCreatedAt)
}

// Update overwrites the mutable fields of u.
func (s *UserStore) Update(ctx context.Context, u models.User) (models.User, error) {
	err := setByID(ctx, s.coll, u.ID, bson.M{
		"name":     u.Name,
		"email":    u.Email,
		"password": u.PasswordHash,
		"avatar":   u.Avatar,
		"role":     u.Role,
	}, store.ErrUserNotFound)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, store.ErrEmailTaken()
		}
		return models.User{}, err
	}
	return s.FindByID(ctx, u.ID)
}

// Delete removes a user.
func (s *UserStore) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, s.coll, id, store.ErrUserNotFound)
}

// AvatarsInUse lists the distinct avatar names referenced by users.
func (s *UserStore) AvatarsInUse(ctx context.Context) ([]string, error) {
	values, err := s.coll.Distinct(ctx, "avatar", bson.M{})
	if err != nil {
		return nil, err
	}
	avatars := make([]string, 0, len(values))
	for _, v := range values {
		if name, ok := v.(string); ok {
			avatars = append(avatars, name)
		}
	}
	return avatars, nil
}
