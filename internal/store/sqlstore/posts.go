package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/pliu/socialboard/internal/models"
	"github.com/pliu/socialboard/internal/store"
)

const postSelect = `
	SELECT p.id, p.title, p.description, p.image_url, p.owner_id, u.username AS owner_username, p.created_at
	FROM posts p
	LEFT JOIN users u ON u.id = p.owner_id
`

type postRow struct {
	ID            string         `db:"id"`
	Title         string         `db:"title"`
	Description   string         `db:"description"`
	ImageURL      string         `db:"image_url"`
	OwnerID       string         `db:"owner_id"`
	OwnerUsername sql.NullString `db:"owner_username"`
	CreatedAt     time.Time      `db:"created_at"`
}

func (r postRow) toModel() models.Post {
	return models.Post{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		ImageURL:    r.ImageURL,
		OwnerID:     r.OwnerID,
		Owner:       userRef(r.OwnerID, r.OwnerUsername),
		Comments:    []models.Comment{},
		CreatedAt:   r.CreatedAt,
	}
}

type commentRow struct {
	ID        string         `db:"id"`
	PostID    string         `db:"post_id"`
	UserID    string         `db:"user_id"`
	Username  sql.NullString `db:"username"`
	Comment   string         `db:"comment"`
	CreatedAt time.Time      `db:"created_at"`
}

func (s *SQLStore) CreatePost(ctx context.Context, post *models.Post) error {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}

	query := s.db.Rebind("INSERT INTO posts (id, owner_id, title, description, image_url, created_at) VALUES (?, ?, ?, ?, ?, ?)")
	_, err := s.db.ExecContext(ctx, query, post.ID, post.OwnerID, post.Title, post.Description, post.ImageURL, post.CreatedAt)
	return errors.Wrap(err, "inserting post failed")
}

func (s *SQLStore) GetPost(ctx context.Context, id string) (*models.Post, error) {
	var row postRow
	query := s.db.Rebind(postSelect + "WHERE p.id = ?")
	if err := s.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, notFound(err, "getting post failed")
	}

	post := row.toModel()
	comments, err := s.loadComments(ctx, []string{post.ID})
	if err != nil {
		return nil, err
	}
	if c, ok := comments[post.ID]; ok {
		post.Comments = c
	}
	return &post, nil
}

func (s *SQLStore) ListPosts(ctx context.Context) ([]models.Post, error) {
	var rows []postRow
	if err := s.db.SelectContext(ctx, &rows, postSelect+"ORDER BY p.created_at ASC"); err != nil {
		return nil, errors.Wrap(err, "listing posts failed")
	}

	posts := make([]models.Post, 0, len(rows))
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		posts = append(posts, row.toModel())
		ids = append(ids, row.ID)
	}

	comments, err := s.loadComments(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		if c, ok := comments[posts[i].ID]; ok {
			posts[i].Comments = c
		}
	}
	return posts, nil
}

// loadComments returns the comments of the given posts keyed by post id, each list in
// the order the comments were added.
func (s *SQLStore) loadComments(ctx context.Context, postIDs []string) (map[string][]models.Comment, error) {
	result := make(map[string][]models.Comment)
	if len(postIDs) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(`
		SELECT c.id, c.post_id, c.user_id, u.username, c.comment, c.created_at
		FROM comments c
		LEFT JOIN users u ON u.id = c.user_id
		WHERE c.post_id IN (?)
		ORDER BY c.post_id, c.seq ASC, c.created_at ASC, c.id ASC
	`, postIDs)
	if err != nil {
		return nil, errors.Wrap(err, "building comments query failed")
	}

	var rows []commentRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "loading comments failed")
	}

	for _, row := range rows {
		result[row.PostID] = append(result[row.PostID], models.Comment{
			ID:        row.ID,
			UserID:    row.UserID,
			User:      userRef(row.UserID, row.Username),
			Comment:   row.Comment,
			CreatedAt: row.CreatedAt,
		})
	}
	return result, nil
}

func (s *SQLStore) AddComment(ctx context.Context, postID string, comment *models.Comment) error {
	var exists bool
	query := s.db.Rebind("SELECT EXISTS(SELECT 1 FROM posts WHERE id = ?)")
	if err := s.db.QueryRowContext(ctx, query, postID).Scan(&exists); err != nil {
		return errors.Wrap(err, "checking post failed")
	}
	if !exists {
		return errors.Wrap(store.ErrNotFound, "adding comment failed")
	}

	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}

	query = s.db.Rebind(`
		INSERT INTO comments (id, post_id, user_id, comment, seq, created_at)
		VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(seq), -1) + 1 FROM comments WHERE post_id = ?), ?)
	`)
	_, err := s.db.ExecContext(ctx, query, comment.ID, postID, comment.UserID, comment.Comment, postID, comment.CreatedAt)
	return errors.Wrap(err, "inserting comment failed")
}

func (s *SQLStore) DeletePost(ctx context.Context, id string) error {
	query := s.db.Rebind("DELETE FROM comments WHERE post_id = ?")
	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		return errors.Wrap(err, "deleting post comments failed")
	}

	query = s.db.Rebind("DELETE FROM posts WHERE id = ?")
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return errors.Wrap(err, "deleting post failed")
	}
	return checkAffected(result, "deleting post failed")
}
