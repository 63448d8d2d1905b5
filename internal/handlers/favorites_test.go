package handlers

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestAddFavorite(t *testing.T) {
	s := newTestServer(t)
	user := s.register(newUsername())
	post := s.createPost(user, "fav me")

	rr := s.do("POST", "/api/favorites/add", user.Token, AddFavoriteRequest{})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "Post ID is required", messageOf(t, rr))

	rr = s.do("POST", "/api/favorites/add", user.Token, AddFavoriteRequest{PostID: uuid.NewString()})
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "Post not found", messageOf(t, rr))

	req := AddFavoriteRequest{PostID: post["id"].(string)}
	rr = s.do("POST", "/api/favorites/add", user.Token, req)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = s.do("POST", "/api/favorites/add", user.Token, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "Post is already in favorites", messageOf(t, rr))

	rr = s.do("GET", "/api/favorites", user.Token, nil)
	var favorites []map[string]interface{}
	decode(t, rr, &favorites)
	require.Len(t, favorites, 1)
	require.Equal(t, user.ID, favorites[0]["user"])
	owner := favorites[0]["post"].(map[string]interface{})["owner"].(map[string]interface{})
	require.Equal(t, user.Username, owner["username"])
}

func TestRemoveFavorite(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("alice")
	bob := s.register("bob")
	post := s.createPost(alice, "shared")

	rr := s.do("POST", "/api/favorites/add", alice.Token, AddFavoriteRequest{PostID: post["id"].(string)})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = s.do("GET", "/api/favorites", alice.Token, nil)
	var favorites []map[string]interface{}
	decode(t, rr, &favorites)
	require.Len(t, favorites, 1)
	favID := favorites[0]["id"].(string)

	rr = s.do("DELETE", "/api/favorites/"+favID, bob.Token, nil)
	require.Equal(t, http.StatusForbidden, rr.Code)
	require.Equal(t, "You can only remove your own favorites", messageOf(t, rr))

	rr = s.do("DELETE", "/api/favorites/"+favID, alice.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = s.do("DELETE", "/api/favorites/"+favID, alice.Token, nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "Favorite not found", messageOf(t, rr))
}

func TestFavoriteOfDeletedPost(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("alice")
	bob := s.register("bob")
	post := s.createPost(alice, "gone soon")

	rr := s.do("POST", "/api/favorites/add", bob.Token, AddFavoriteRequest{PostID: post["id"].(string)})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = s.do("DELETE", "/api/posts/"+post["id"].(string), alice.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = s.do("GET", "/api/favorites", bob.Token, nil)
	var favorites []map[string]interface{}
	decode(t, rr, &favorites)
	require.Len(t, favorites, 1)
	require.Nil(t, favorites[0]["post"])
}
