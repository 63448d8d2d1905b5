package store

import (
	"context"
	"errors"

	"github.com/pliu/socialboard/internal/models"
)

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate record")
)

type Store interface {
	// User operations
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsersExcept(ctx context.Context, id string) ([]models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	// DeleteUser removes the user's posts, every message the user sent or received,
	// and finally the user record.
	DeleteUser(ctx context.Context, id string) error

	// Post operations
	CreatePost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, id string) (*models.Post, error)
	ListPosts(ctx context.Context) ([]models.Post, error)
	AddComment(ctx context.Context, postID string, comment *models.Comment) error
	DeletePost(ctx context.Context, id string) error

	// Favorite operations
	CreateFavorite(ctx context.Context, fav *models.Favorite) error
	GetFavorite(ctx context.Context, id string) (*models.Favorite, error)
	FavoriteExists(ctx context.Context, userID, postID string) (bool, error)
	ListFavorites(ctx context.Context, userID string) ([]models.Favorite, error)
	DeleteFavorite(ctx context.Context, id string) error

	// Message operations
	CreateMessage(ctx context.Context, msg *models.Message) error
	GetMessage(ctx context.Context, id string) (*models.Message, error)
	ListMessages(ctx context.Context, userID string) ([]models.Message, error)
	MarkRead(ctx context.Context, fromID, toID string) (int64, error)

	Close() error
}
