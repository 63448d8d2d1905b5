package mongostore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pliu/socialboard/internal/models"
)

type messageDoc struct {
	ID        string    `bson:"_id"`
	From      string    `bson:"from"`
	To        string    `bson:"to"`
	Message   string    `bson:"message"`
	Read      bool      `bson:"read"`
	CreatedAt time.Time `bson:"createdAt"`
}

func (s *MongoStore) populateMessages(ctx context.Context, docs []messageDoc) ([]models.Message, error) {
	seen := make(map[string]bool)
	var ids []string
	for _, d := range docs {
		for _, id := range []string{d.From, d.To} {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	names, err := s.usernames(ctx, ids)
	if err != nil {
		return nil, err
	}

	messages := make([]models.Message, 0, len(docs))
	for _, d := range docs {
		messages = append(messages, models.Message{
			ID:        d.ID,
			FromID:    d.From,
			ToID:      d.To,
			From:      ref(d.From, names),
			To:        ref(d.To, names),
			Message:   d.Message,
			Read:      d.Read,
			CreatedAt: d.CreatedAt,
		})
	}
	return messages, nil
}

func (s *MongoStore) CreateMessage(ctx context.Context, msg *models.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	_, err := s.messages.InsertOne(ctx, messageDoc{
		ID:        msg.ID,
		From:      msg.FromID,
		To:        msg.ToID,
		Message:   msg.Message,
		Read:      msg.Read,
		CreatedAt: msg.CreatedAt,
	})
	return errors.Wrap(err, "inserting message failed")
}

func (s *MongoStore) GetMessage(ctx context.Context, id string) (*models.Message, error) {
	var doc messageDoc
	if err := s.messages.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, notFound(err, "getting message failed")
	}
	messages, err := s.populateMessages(ctx, []messageDoc{doc})
	if err != nil {
		return nil, err
	}
	return &messages[0], nil
}

func (s *MongoStore) ListMessages(ctx context.Context, userID string) ([]models.Message, error) {
	filter := bson.M{"$or": bson.A{bson.M{"from": userID}, bson.M{"to": userID}}}
	cursor, err := s.messages.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, errors.Wrap(err, "listing messages failed")
	}
	var docs []messageDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding messages failed")
	}
	return s.populateMessages(ctx, docs)
}

func (s *MongoStore) MarkRead(ctx context.Context, fromID, toID string) (int64, error) {
	result, err := s.messages.UpdateMany(ctx,
		bson.M{"from": fromID, "to": toID, "read": false},
		bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return 0, errors.Wrap(err, "marking messages read failed")
	}
	return result.ModifiedCount, nil
}
