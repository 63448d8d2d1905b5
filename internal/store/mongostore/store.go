// Package mongostore implements store.Store on MongoDB. Posts keep their comments
// embedded; references to users are resolved at read time.
package mongostore

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/pliu/socialboard/internal/models"
	"github.com/pliu/socialboard/internal/store"
)

const (
	usersCollection     = "users"
	postsCollection     = "posts"
	favoritesCollection = "favorites"
	messagesCollection  = "messages"
)

type MongoStore struct {
	client    *mongo.Client
	db        *mongo.Database
	users     *mongo.Collection
	posts     *mongo.Collection
	favorites *mongo.Collection
	messages  *mongo.Collection
}

var _ store.Store = (*MongoStore)(nil)

func New(ctx context.Context, uri, database string) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "connecting to mongodb failed")
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		client.Disconnect(ctx)
		return nil, errors.Wrap(err, "pinging mongodb failed")
	}

	db := client.Database(database)
	s := &MongoStore{
		client:    client,
		db:        db,
		users:     db.Collection(usersCollection),
		posts:     db.Collection(postsCollection),
		favorites: db.Collection(favoritesCollection),
		messages:  db.Collection(messagesCollection),
	}
	if err := s.createIndexes(connectCtx); err != nil {
		client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) createIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return errors.Wrap(err, "creating users index failed")
	}

	// Favorites are not unique on (user, post).
	if _, err := s.favorites.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user", Value: 1}},
	}); err != nil {
		return errors.Wrap(err, "creating favorites index failed")
	}

	_, err = s.messages.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "from", Value: 1}}},
		{Keys: bson.D{{Key: "to", Value: 1}}},
	})
	return errors.Wrap(err, "creating messages indexes failed")
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Drop removes the whole database. Used by tests.
func (s *MongoStore) Drop(ctx context.Context) error {
	return s.db.Drop(ctx)
}

func notFound(err error, msg string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return errors.Wrap(store.ErrNotFound, msg)
	}
	return errors.Wrap(err, msg)
}

// usernames resolves user ids to usernames in one query. Unknown ids are absent
// from the result.
func (s *MongoStore) usernames(ctx context.Context, ids []string) (map[string]string, error) {
	result := make(map[string]string)
	if len(ids) == 0 {
		return result, nil
	}

	cursor, err := s.users.Find(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"username": 1}))
	if err != nil {
		return nil, errors.Wrap(err, "resolving usernames failed")
	}

	var docs []struct {
		ID       string `bson:"_id"`
		Username string `bson:"username"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding usernames failed")
	}
	for _, d := range docs {
		result[d.ID] = d.Username
	}
	return result, nil
}

func ref(id string, names map[string]string) *models.UserRef {
	name, ok := names[id]
	if !ok {
		return nil
	}
	return &models.UserRef{ID: id, Username: name}
}
