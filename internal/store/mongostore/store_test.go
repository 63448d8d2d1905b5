package mongostore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/require"

	"github.com/pliu/socialboard/internal/models"
	"github.com/pliu/socialboard/internal/store"
)

// newTestStore connects to MONGO_TEST_URI and returns a store on a throwaway database.
// Start a server with `docker run --rm -p 27017:27017 mongo:7` and set
// MONGO_TEST_URI=mongodb://localhost:27017 to run these tests.
func newTestStore(t *testing.T) (context.Context, *MongoStore) {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set; mongostore tests need a running mongod")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	s, err := New(ctx, uri, "socialboard_test_"+gofakeit.LetterN(8))
	require.NoError(t, err)
	t.Cleanup(func() {
		s.Drop(context.Background())
		s.Close()
	})
	return ctx, s
}

func TestUsers(t *testing.T) {
	ctx, s := newTestStore(t)

	alice := &models.User{Username: "alice", Password: "hash"}
	require.NoError(t, s.CreateUser(ctx, alice))
	require.ErrorIs(t, s.CreateUser(ctx, &models.User{Username: "alice", Password: "x"}), store.ErrDuplicate)

	bob := &models.User{Username: "bob", Password: "hash"}
	require.NoError(t, s.CreateUser(ctx, bob))

	got, err := s.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, alice.ID, got.ID)

	others, err := s.ListUsersExcept(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, others, 1)
	require.Equal(t, "bob", others[0].Username)

	bob.Username = "alice"
	require.ErrorIs(t, s.UpdateUser(ctx, bob), store.ErrDuplicate)

	_, err = s.GetUserByID(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestPostsFavoritesMessages(t *testing.T) {
	ctx, s := newTestStore(t)

	alice := &models.User{Username: "alice", Password: "hash"}
	bob := &models.User{Username: "bob", Password: "hash"}
	require.NoError(t, s.CreateUser(ctx, alice))
	require.NoError(t, s.CreateUser(ctx, bob))

	post := &models.Post{Title: "t", OwnerID: alice.ID}
	require.NoError(t, s.CreatePost(ctx, post))
	require.NoError(t, s.AddComment(ctx, post.ID, &models.Comment{UserID: bob.ID, Comment: "first"}))
	require.NoError(t, s.AddComment(ctx, post.ID, &models.Comment{UserID: alice.ID, Comment: "second"}))

	got, err := s.GetPost(ctx, post.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", got.Owner.Username)
	require.Len(t, got.Comments, 2)
	require.Equal(t, "bob", got.Comments[0].User.Username)
	require.Equal(t, "second", got.Comments[1].Comment)

	fav := &models.Favorite{UserID: bob.ID, PostID: post.ID}
	require.NoError(t, s.CreateFavorite(ctx, fav))
	exists, err := s.FavoriteExists(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	require.True(t, exists)

	favorites, err := s.ListFavorites(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	require.Equal(t, "t", favorites[0].Post.Title)

	msg := &models.Message{FromID: bob.ID, ToID: alice.ID, Message: "hi"}
	require.NoError(t, s.CreateMessage(ctx, msg))
	n, err := s.MarkRead(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	require.NoError(t, s.DeleteUser(ctx, alice.ID))
	_, err = s.GetPost(ctx, post.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.GetMessage(ctx, msg.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}
