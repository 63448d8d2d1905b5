package mongostore

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/pliu/socialboard/internal/models"
	"github.com/pliu/socialboard/internal/store"
)

type favoriteDoc struct {
	ID   string `bson:"_id"`
	User string `bson:"user"`
	Post string `bson:"post"`
}

func (s *MongoStore) CreateFavorite(ctx context.Context, fav *models.Favorite) error {
	if fav.ID == "" {
		fav.ID = uuid.NewString()
	}
	_, err := s.favorites.InsertOne(ctx, favoriteDoc{ID: fav.ID, User: fav.UserID, Post: fav.PostID})
	return errors.Wrap(err, "inserting favorite failed")
}

func (s *MongoStore) GetFavorite(ctx context.Context, id string) (*models.Favorite, error) {
	var doc favoriteDoc
	if err := s.favorites.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, notFound(err, "getting favorite failed")
	}
	return &models.Favorite{ID: doc.ID, UserID: doc.User, PostID: doc.Post}, nil
}

func (s *MongoStore) FavoriteExists(ctx context.Context, userID, postID string) (bool, error) {
	n, err := s.favorites.CountDocuments(ctx, bson.M{"user": userID, "post": postID})
	if err != nil {
		return false, errors.Wrap(err, "checking favorite failed")
	}
	return n > 0, nil
}

func (s *MongoStore) ListFavorites(ctx context.Context, userID string) ([]models.Favorite, error) {
	cursor, err := s.favorites.Find(ctx, bson.M{"user": userID})
	if err != nil {
		return nil, errors.Wrap(err, "listing favorites failed")
	}
	var docs []favoriteDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding favorites failed")
	}

	postIDs := make([]string, 0, len(docs))
	for _, d := range docs {
		postIDs = append(postIDs, d.Post)
	}
	posts, err := s.postsByID(ctx, postIDs)
	if err != nil {
		return nil, err
	}

	favorites := make([]models.Favorite, 0, len(docs))
	for _, d := range docs {
		fav := models.Favorite{ID: d.ID, UserID: d.User, PostID: d.Post}
		if post, ok := posts[d.Post]; ok {
			fav.Post = post
		}
		favorites = append(favorites, fav)
	}
	return favorites, nil
}

func (s *MongoStore) postsByID(ctx context.Context, ids []string) (map[string]*models.Post, error) {
	result := make(map[string]*models.Post)
	if len(ids) == 0 {
		return result, nil
	}

	cursor, err := s.posts.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, errors.Wrap(err, "loading favorite posts failed")
	}
	var docs []postDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding favorite posts failed")
	}
	posts, err := s.populate(ctx, docs)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		result[posts[i].ID] = &posts[i]
	}
	return result, nil
}

func (s *MongoStore) DeleteFavorite(ctx context.Context, id string) error {
	result, err := s.favorites.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "deleting favorite failed")
	}
	if result.DeletedCount == 0 {
		return errors.Wrap(store.ErrNotFound, "deleting favorite failed")
	}
	return nil
}
