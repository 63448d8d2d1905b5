package mongostore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pliu/socialboard/internal/models"
	"github.com/pliu/socialboard/internal/store"
)

type userDoc struct {
	ID        string    `bson:"_id"`
	Username  string    `bson:"username"`
	Password  string    `bson:"password"`
	PhotoURL  string    `bson:"photoUrl,omitempty"`
	CreatedAt time.Time `bson:"createdAt"`
}

func (d userDoc) toModel() *models.User {
	return &models.User{
		ID:        d.ID,
		Username:  d.Username,
		Password:  d.Password,
		PhotoURL:  d.PhotoURL,
		CreatedAt: d.CreatedAt,
	}
}

func (s *MongoStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := s.users.InsertOne(ctx, userDoc{
		ID:        user.ID,
		Username:  user.Username,
		Password:  user.Password,
		PhotoURL:  user.PhotoURL,
		CreatedAt: user.CreatedAt,
	})
	if mongo.IsDuplicateKeyError(err) {
		return errors.Wrapf(store.ErrDuplicate, "username %q", user.Username)
	}
	return errors.Wrap(err, "inserting user failed")
}

func (s *MongoStore) findUser(ctx context.Context, filter bson.M, msg string) (*models.User, error) {
	var doc userDoc
	if err := s.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, notFound(err, msg)
	}
	return doc.toModel(), nil
}

func (s *MongoStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"_id": id}, "getting user by id failed")
}

func (s *MongoStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"username": username}, "getting user by username failed")
}

func (s *MongoStore) ListUsersExcept(ctx context.Context, id string) ([]models.User, error) {
	cursor, err := s.users.Find(ctx,
		bson.M{"_id": bson.M{"$ne": id}},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "listing users failed")
	}

	var docs []userDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding users failed")
	}
	users := make([]models.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, *d.toModel())
	}
	return users, nil
}

func (s *MongoStore) UpdateUser(ctx context.Context, user *models.User) error {
	result, err := s.users.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": bson.M{
		"username": user.Username,
		"password": user.Password,
		"photoUrl": user.PhotoURL,
	}})
	if mongo.IsDuplicateKeyError(err) {
		return errors.Wrapf(store.ErrDuplicate, "username %q", user.Username)
	}
	if err != nil {
		return errors.Wrap(err, "updating user failed")
	}
	if result.MatchedCount == 0 {
		return errors.Wrap(store.ErrNotFound, "updating user failed")
	}
	return nil
}

func (s *MongoStore) DeleteUser(ctx context.Context, id string) error {
	if _, err := s.posts.DeleteMany(ctx, bson.M{"owner": id}); err != nil {
		return errors.Wrap(err, "deleting user posts failed")
	}

	filter := bson.M{"$or": bson.A{bson.M{"from": id}, bson.M{"to": id}}}
	if _, err := s.messages.DeleteMany(ctx, filter); err != nil {
		return errors.Wrap(err, "deleting user messages failed")
	}

	result, err := s.users.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "deleting user failed")
	}
	if result.DeletedCount == 0 {
		return errors.Wrap(store.ErrNotFound, "deleting user failed")
	}
	return nil
}
