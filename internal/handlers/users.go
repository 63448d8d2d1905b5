package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/pliu/socialboard/internal/apierror"
	"github.com/pliu/socialboard/internal/auth"
	"github.com/pliu/socialboard/internal/middleware"
	"github.com/pliu/socialboard/internal/models"
	"github.com/pliu/socialboard/internal/store"
	"github.com/pliu/socialboard/internal/ws"
)

// UpdateUserRequest carries a partial profile update. Empty fields are left unchanged.
type UpdateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	PhotoURL string `json:"photoUrl"`
}

type UserHandler struct {
	Store store.Store
	Hub   Broadcaster
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.ListUsersExcept(storeCtx(r), middleware.UserID(r.Context()))
	if err != nil {
		apierror.Write(w, apierror.Internal(err))
		return
	}

	profiles := make([]models.PublicUser, 0, len(users))
	for i := range users {
		profiles = append(profiles, users[i].Public())
	}
	writeJSON(w, http.StatusOK, profiles)
}

func (h *UserHandler) GetByUsername(w http.ResponseWriter, r *http.Request) {
	user, err := h.Store.GetUserByUsername(storeCtx(r), mux.Vars(r)["username"])
	if err != nil {
		apierror.Write(w, lookupError(err, "User not found"))
		return
	}
	writeJSON(w, http.StatusOK, user.Public())
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		apierror.Write(w, err)
		return
	}

	ctx := storeCtx(r)
	user, err := currentUser(ctx, h.Store, r)
	if err != nil {
		apierror.Write(w, err)
		return
	}

	if req.Username != "" {
		user.Username = req.Username
	}
	if req.PhotoURL != "" {
		user.PhotoURL = req.PhotoURL
	}
	if req.Password != "" {
		hashed, err := auth.HashPassword(req.Password)
		if err != nil {
			apierror.Write(w, apierror.Internal(err))
			return
		}
		user.Password = hashed
	}

	if err := h.Store.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			apierror.Write(w, apierror.Conflict("Username already taken"))
			return
		}
		apierror.Write(w, lookupError(err, "User not found"))
		return
	}

	h.Hub.Emit(user.Username, ws.EventUserUpdated, user.Public())
	apierror.WriteMessage(w, http.StatusOK, "User updated successfully")
}

// DeleteSelf removes the caller's posts and messages, then the account itself.
func (h *UserHandler) DeleteSelf(w http.ResponseWriter, r *http.Request) {
	ctx := storeCtx(r)
	user, err := currentUser(ctx, h.Store, r)
	if err != nil {
		apierror.Write(w, err)
		return
	}

	if err := h.Store.DeleteUser(ctx, user.ID); err != nil {
		apierror.Write(w, lookupError(err, "User not found"))
		return
	}
	apierror.WriteMessage(w, http.StatusOK, "Account deleted successfully")
}
