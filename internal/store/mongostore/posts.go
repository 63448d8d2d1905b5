package mongostore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pliu/socialboard/internal/models"
	"github.com/pliu/socialboard/internal/store"
)

type commentDoc struct {
	ID        string    `bson:"_id"`
	User      string    `bson:"user"`
	Comment   string    `bson:"comment"`
	CreatedAt time.Time `bson:"createdAt"`
}

type postDoc struct {
	ID          string       `bson:"_id"`
	Title       string       `bson:"title"`
	Description string       `bson:"description"`
	ImageURL    string       `bson:"imageUrl"`
	Owner       string       `bson:"owner"`
	Comments    []commentDoc `bson:"comments"`
	CreatedAt   time.Time    `bson:"createdAt"`
}

// userIDs collects every user referenced by the posts.
func userIDs(docs []postDoc) []string {
	seen := make(map[string]bool)
	var ids []string
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, d := range docs {
		add(d.Owner)
		for _, c := range d.Comments {
			add(c.User)
		}
	}
	return ids
}

func (d postDoc) toModel(names map[string]string) models.Post {
	post := models.Post{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		ImageURL:    d.ImageURL,
		OwnerID:     d.Owner,
		Owner:       ref(d.Owner, names),
		Comments:    make([]models.Comment, 0, len(d.Comments)),
		CreatedAt:   d.CreatedAt,
	}
	for _, c := range d.Comments {
		post.Comments = append(post.Comments, models.Comment{
			ID:        c.ID,
			UserID:    c.User,
			User:      ref(c.User, names),
			Comment:   c.Comment,
			CreatedAt: c.CreatedAt,
		})
	}
	return post
}

// populate joins owner and comment author usernames into the posts.
func (s *MongoStore) populate(ctx context.Context, docs []postDoc) ([]models.Post, error) {
	names, err := s.usernames(ctx, userIDs(docs))
	if err != nil {
		return nil, err
	}
	posts := make([]models.Post, 0, len(docs))
	for _, d := range docs {
		posts = append(posts, d.toModel(names))
	}
	return posts, nil
}

func (s *MongoStore) CreatePost(ctx context.Context, post *models.Post) error {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}

	_, err := s.posts.InsertOne(ctx, postDoc{
		ID:          post.ID,
		Title:       post.Title,
		Description: post.Description,
		ImageURL:    post.ImageURL,
		Owner:       post.OwnerID,
		Comments:    []commentDoc{},
		CreatedAt:   post.CreatedAt,
	})
	return errors.Wrap(err, "inserting post failed")
}

func (s *MongoStore) GetPost(ctx context.Context, id string) (*models.Post, error) {
	var doc postDoc
	if err := s.posts.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, notFound(err, "getting post failed")
	}
	posts, err := s.populate(ctx, []postDoc{doc})
	if err != nil {
		return nil, err
	}
	return &posts[0], nil
}

func (s *MongoStore) ListPosts(ctx context.Context) ([]models.Post, error) {
	cursor, err := s.posts.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "listing posts failed")
	}
	var docs []postDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding posts failed")
	}
	return s.populate(ctx, docs)
}

func (s *MongoStore) AddComment(ctx context.Context, postID string, comment *models.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}

	result, err := s.posts.UpdateOne(ctx, bson.M{"_id": postID}, bson.M{"$push": bson.M{"comments": commentDoc{
		ID:        comment.ID,
		User:      comment.UserID,
		Comment:   comment.Comment,
		CreatedAt: comment.CreatedAt,
	}}})
	if err != nil {
		return errors.Wrap(err, "adding comment failed")
	}
	if result.MatchedCount == 0 {
		return errors.Wrap(store.ErrNotFound, "adding comment failed")
	}
	return nil
}

func (s *MongoStore) DeletePost(ctx context.Context, id string) error {
	result, err := s.posts.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "deleting post failed")
	}
	if result.DeletedCount == 0 {
		return errors.Wrap(store.ErrNotFound, "deleting post failed")
	}
	return nil
}
