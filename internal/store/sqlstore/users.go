package sqlstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/pliu/socialboard/internal/models"
	"github.com/pliu/socialboard/internal/store"
)

const userColumns = "id, username, password, photo_url, created_at"

func (s *SQLStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	query := s.db.Rebind("INSERT INTO users (id, username, password, photo_url, created_at) VALUES (?, ?, ?, ?, ?)")
	_, err := s.db.ExecContext(ctx, query, user.ID, user.Username, user.Password, user.PhotoURL, user.CreatedAt)
	if isUniqueViolation(err) {
		return errors.Wrapf(store.ErrDuplicate, "username %q", user.Username)
	}
	return errors.Wrap(err, "inserting user failed")
}

func (s *SQLStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	query := s.db.Rebind("SELECT " + userColumns + " FROM users WHERE id = ?")
	if err := s.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, notFound(err, "getting user by id failed")
	}
	return &user, nil
}

func (s *SQLStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	query := s.db.Rebind("SELECT " + userColumns + " FROM users WHERE username = ?")
	if err := s.db.GetContext(ctx, &user, query, username); err != nil {
		return nil, notFound(err, "getting user by username failed")
	}
	return &user, nil
}

func (s *SQLStore) ListUsersExcept(ctx context.Context, id string) ([]models.User, error) {
	users := []models.User{}
	query := s.db.Rebind("SELECT " + userColumns + " FROM users WHERE id <> ? ORDER BY created_at ASC")
	if err := s.db.SelectContext(ctx, &users, query, id); err != nil {
		return nil, errors.Wrap(err, "listing users failed")
	}
	return users, nil
}

func (s *SQLStore) UpdateUser(ctx context.Context, user *models.User) error {
	query := s.db.Rebind("UPDATE users SET username = ?, password = ?, photo_url = ? WHERE id = ?")
	result, err := s.db.ExecContext(ctx, query, user.Username, user.Password, user.PhotoURL, user.ID)
	if isUniqueViolation(err) {
		return errors.Wrapf(store.ErrDuplicate, "username %q", user.Username)
	}
	if err != nil {
		return errors.Wrap(err, "updating user failed")
	}
	return checkAffected(result, "updating user failed")
}

func (s *SQLStore) DeleteUser(ctx context.Context, id string) error {
	// Comments on the user's posts go with the posts.
	query := s.db.Rebind("DELETE FROM comments WHERE post_id IN (SELECT id FROM posts WHERE owner_id = ?)")
	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		return errors.Wrap(err, "deleting comments of user posts failed")
	}

	query = s.db.Rebind("DELETE FROM posts WHERE owner_id = ?")
	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		return errors.Wrap(err, "deleting user posts failed")
	}

	query = s.db.Rebind("DELETE FROM messages WHERE from_id = ? OR to_id = ?")
	if _, err := s.db.ExecContext(ctx, query, id, id); err != nil {
		return errors.Wrap(err, "deleting user messages failed")
	}

	query = s.db.Rebind("DELETE FROM users WHERE id = ?")
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return errors.Wrap(err, "deleting user failed")
	}
	return checkAffected(result, "deleting user failed")
}
