package sqlstore

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/pliu/socialboard/internal/models"
)

type favoriteRow struct {
	ID                string         `db:"id"`
	UserID            string         `db:"user_id"`
	PostID            string         `db:"post_id"`
	PostTitle         sql.NullString `db:"post_title"`
	PostDescription   sql.NullString `db:"post_description"`
	PostImageURL      sql.NullString `db:"post_image_url"`
	PostOwnerID       sql.NullString `db:"post_owner_id"`
	PostCreatedAt     sql.NullTime   `db:"post_created_at"`
	PostOwnerUsername sql.NullString `db:"post_owner_username"`
}

func (s *SQLStore) CreateFavorite(ctx context.Context, fav *models.Favorite) error {
	if fav.ID == "" {
		fav.ID = uuid.NewString()
	}

	query := s.db.Rebind("INSERT INTO favorites (id, user_id, post_id) VALUES (?, ?, ?)")
	_, err := s.db.ExecContext(ctx, query, fav.ID, fav.UserID, fav.PostID)
	return errors.Wrap(err, "inserting favorite failed")
}

func (s *SQLStore) GetFavorite(ctx context.Context, id string) (*models.Favorite, error) {
	var fav struct {
		ID     string `db:"id"`
		UserID string `db:"user_id"`
		PostID string `db:"post_id"`
	}
	query := s.db.Rebind("SELECT id, user_id, post_id FROM favorites WHERE id = ?")
	if err := s.db.GetContext(ctx, &fav, query, id); err != nil {
		return nil, notFound(err, "getting favorite failed")
	}
	return &models.Favorite{ID: fav.ID, UserID: fav.UserID, PostID: fav.PostID}, nil
}

func (s *SQLStore) FavoriteExists(ctx context.Context, userID, postID string) (bool, error) {
	var exists bool
	query := s.db.Rebind("SELECT EXISTS(SELECT 1 FROM favorites WHERE user_id = ? AND post_id = ?)")
	err := s.db.QueryRowContext(ctx, query, userID, postID).Scan(&exists)
	return exists, errors.Wrap(err, "checking favorite failed")
}

func (s *SQLStore) ListFavorites(ctx context.Context, userID string) ([]models.Favorite, error) {
	query := s.db.Rebind(`
		SELECT f.id, f.user_id, f.post_id,
			p.title AS post_title, p.description AS post_description, p.image_url AS post_image_url,
			p.owner_id AS post_owner_id, p.created_at AS post_created_at, u.username AS post_owner_username
		FROM favorites f
		LEFT JOIN posts p ON p.id = f.post_id
		LEFT JOIN users u ON u.id = p.owner_id
		WHERE f.user_id = ?
	`)
	var rows []favoriteRow
	if err := s.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, errors.Wrap(err, "listing favorites failed")
	}

	favorites := make([]models.Favorite, 0, len(rows))
	var postIDs []string
	for _, row := range rows {
		fav := models.Favorite{ID: row.ID, UserID: row.UserID, PostID: row.PostID}
		// A favorite may outlive its post; the post is then null.
		if row.PostOwnerID.Valid {
			fav.Post = &models.Post{
				ID:          row.PostID,
				Title:       row.PostTitle.String,
				Description: row.PostDescription.String,
				ImageURL:    row.PostImageURL.String,
				OwnerID:     row.PostOwnerID.String,
				Owner:       userRef(row.PostOwnerID.String, row.PostOwnerUsername),
				Comments:    []models.Comment{},
				CreatedAt:   row.PostCreatedAt.Time,
			}
			postIDs = append(postIDs, row.PostID)
		}
		favorites = append(favorites, fav)
	}

	comments, err := s.loadComments(ctx, postIDs)
	if err != nil {
		return nil, err
	}
	for _, fav := range favorites {
		if fav.Post == nil {
			continue
		}
		if c, ok := comments[fav.PostID]; ok {
			fav.Post.Comments = c
		}
	}
	return favorites, nil
}

func (s *SQLStore) DeleteFavorite(ctx context.Context, id string) error {
	query := s.db.Rebind("DELETE FROM favorites WHERE id = ?")
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return errors.Wrap(err, "deleting favorite failed")
	}
	return checkAffected(result, "deleting favorite failed")
}
