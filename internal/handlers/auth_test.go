package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	s := newTestServer(t)
	username := newUsername()

	user := s.register(username)
	require.NotEmpty(t, user.ID)
	require.Equal(t, username, user.Username)

	rr := s.do("GET", "/api/auth/me", user.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var me map[string]interface{}
	decode(t, rr, &me)
	require.Equal(t, user.ID, me["id"])
	require.Equal(t, username, me["username"])
	require.NotContains(t, me, "password")

	// Test duplicate user
	rr = s.do("POST", "/api/auth/register", "", map[string]string{
		"username": username, "password": "other", "passwordTwo": "other",
	})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "User already exists", messageOf(t, rr))

	rr = s.do("GET", "/api/users", user.Token, nil)
	var others []map[string]interface{}
	decode(t, rr, &others)
	require.Empty(t, others, "duplicate registration must not create a record")
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name    string
		body    map[string]string
		message string
	}{
		{
			name:    "Passwords Differ",
			body:    map[string]string{"username": "bob", "password": "a", "passwordTwo": "b"},
			message: "Passwords do not match",
		},
		{
			name:    "Missing Username",
			body:    map[string]string{"username": " ", "password": "a", "passwordTwo": "a"},
			message: "Username and password are required",
		},
		{
			name:    "Missing Password",
			body:    map[string]string{"username": "bob"},
			message: "Username and password are required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := s.do("POST", "/api/auth/register", "", tt.body)
			require.Equal(t, http.StatusBadRequest, rr.Code)
			require.Equal(t, tt.message, messageOf(t, rr))
		})
	}
}

func TestRegisterMalformedBody(t *testing.T) {
	s := newTestServer(t)

	rr := s.do("POST", "/api/auth/register", "", "not an object")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "Invalid request body", messageOf(t, rr))
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	user := s.register("carol")

	rr := s.do("POST", "/api/auth/login", "", Credentials{Username: "carol", Password: "p"})
	require.Equal(t, http.StatusOK, rr.Code)
	var resp AuthResponse
	decode(t, rr, &resp)
	require.Equal(t, user.ID, resp.User.ID)
	require.NotEmpty(t, resp.Token)

	rr = s.do("GET", "/api/auth/me", resp.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	// Wrong password never yields a token.
	rr = s.do("POST", "/api/auth/login", "", Credentials{Username: "carol", Password: "wrong"})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	var body map[string]interface{}
	decode(t, rr, &body)
	require.Equal(t, "Incorrect password", body["message"])
	require.NotContains(t, body, "token")

	rr = s.do("POST", "/api/auth/login", "", Credentials{Username: "nobody", Password: "p"})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "User not found", messageOf(t, rr))
}

func TestMeAfterAccountDeleted(t *testing.T) {
	s := newTestServer(t)
	user := s.register(newUsername())

	rr := s.do("DELETE", "/api/users", user.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = s.do("GET", "/api/auth/me", user.Token, nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "User not found", messageOf(t, rr))
}

func TestDeletedAccountCannotWrite(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("alice")
	bob := s.register("bob")
	post := s.createPost(bob, "still here")
	postID := post["id"].(string)

	rr := s.do("DELETE", "/api/users", alice.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	// The token still verifies, but the account behind it is gone.
	writes := []struct {
		name   string
		method string
		path   string
		body   interface{}
	}{
		{"Create Post", "POST", "/api/posts", map[string]string{"title": "ghost post"}},
		{"Add Comment", "POST", "/api/posts/" + postID + "/comment", CommentRequest{Comment: "ghost comment"}},
		{"Add Favorite", "POST", "/api/favorites/add", AddFavoriteRequest{PostID: postID}},
		{"Send Message", "POST", "/api/messages/send", SendMessageRequest{To: "bob", Message: "from beyond"}},
	}
	for _, tt := range writes {
		t.Run(tt.name, func(t *testing.T) {
			rr := s.do(tt.method, tt.path, alice.Token, tt.body)
			require.Equal(t, http.StatusNotFound, rr.Code)
			require.Equal(t, "User not found", messageOf(t, rr))
		})
	}

	rr = s.do("GET", "/api/posts", bob.Token, nil)
	var posts []map[string]interface{}
	decode(t, rr, &posts)
	require.Len(t, posts, 1)
	require.Empty(t, posts[0]["comments"])

	rr = s.do("GET", "/api/messages", bob.Token, nil)
	var messages []map[string]interface{}
	decode(t, rr, &messages)
	require.Empty(t, messages)
}
