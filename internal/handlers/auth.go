package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/pliu/socialboard/internal/apierror"
	"github.com/pliu/socialboard/internal/auth"
	"github.com/pliu/socialboard/internal/models"
	"github.com/pliu/socialboard/internal/store"
)

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Credentials
	PasswordTwo string `json:"passwordTwo"`
}

type AuthResponse struct {
	User  models.UserRef `json:"user"`
	Token string         `json:"token"`
}

type AuthHandler struct {
	Store  store.Store
	Tokens *auth.TokenManager
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		apierror.Write(w, err)
		return
	}

	if req.Password != req.PasswordTwo {
		apierror.Write(w, apierror.BadRequest("Passwords do not match"))
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		apierror.Write(w, apierror.BadRequest("Username and password are required"))
		return
	}

	ctx := storeCtx(r)
	_, err := h.Store.GetUserByUsername(ctx, req.Username)
	if err == nil {
		apierror.Write(w, apierror.Conflict("User already exists"))
		return
	}
	if !errors.Is(err, store.ErrNotFound) {
		apierror.Write(w, apierror.Internal(err))
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		apierror.Write(w, apierror.Internal(err))
		return
	}

	user := &models.User{Username: req.Username, Password: hashed}
	if err := h.Store.CreateUser(ctx, user); err != nil {
		// Lost a race with a concurrent registration.
		if errors.Is(err, store.ErrDuplicate) {
			apierror.Write(w, apierror.Conflict("User already exists"))
			return
		}
		apierror.Write(w, apierror.Internal(err))
		return
	}

	h.respondWithToken(w, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds Credentials
	if err := decodeJSON(r, &creds); err != nil {
		apierror.Write(w, err)
		return
	}

	user, err := h.Store.GetUserByUsername(storeCtx(r), creds.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			apierror.Write(w, apierror.BadRequest("User not found"))
			return
		}
		apierror.Write(w, apierror.Internal(err))
		return
	}

	if !auth.CheckPassword(user.Password, creds.Password) {
		apierror.Write(w, apierror.BadRequest("Incorrect password"))
		return
	}

	h.respondWithToken(w, user)
}

// Me returns the caller's own profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(storeCtx(r), h.Store, r)
	if err != nil {
		apierror.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user.Public())
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, user *models.User) {
	token, err := h.Tokens.Issue(user.ID)
	if err != nil {
		apierror.Write(w, apierror.Internal(err))
		return
	}
	writeJSON(w, http.StatusOK, AuthResponse{
		User:  models.UserRef{ID: user.ID, Username: user.Username},
		Token: token,
	})
}
