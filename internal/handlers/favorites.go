package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/pliu/socialboard/internal/apierror"
	"github.com/pliu/socialboard/internal/middleware"
	"github.com/pliu/socialboard/internal/models"
	"github.com/pliu/socialboard/internal/store"
)

type AddFavoriteRequest struct {
	PostID string `json:"postId"`
}

type FavoriteHandler struct {
	Store store.Store
}

func (h *FavoriteHandler) List(w http.ResponseWriter, r *http.Request) {
	favorites, err := h.Store.ListFavorites(storeCtx(r), middleware.UserID(r.Context()))
	if err != nil {
		apierror.Write(w, apierror.Internal(err))
		return
	}
	writeJSON(w, http.StatusOK, favorites)
}

// Add favorites a post for the caller. The duplicate check and the insert are
// not atomic; two concurrent adds may both succeed.
func (h *FavoriteHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req AddFavoriteRequest
	if err := decodeJSON(r, &req); err != nil {
		apierror.Write(w, err)
		return
	}
	if req.PostID == "" {
		apierror.Write(w, apierror.BadRequest("Post ID is required"))
		return
	}

	ctx := storeCtx(r)
	user, err := currentUser(ctx, h.Store, r)
	if err != nil {
		apierror.Write(w, err)
		return
	}
	userID := user.ID

	if _, err := h.Store.GetPost(ctx, req.PostID); err != nil {
		apierror.Write(w, lookupError(err, "Post not found"))
		return
	}

	exists, err := h.Store.FavoriteExists(ctx, userID, req.PostID)
	if err != nil {
		apierror.Write(w, apierror.Internal(err))
		return
	}
	if exists {
		apierror.Write(w, apierror.Conflict("Post is already in favorites"))
		return
	}

	if err := h.Store.CreateFavorite(ctx, &models.Favorite{UserID: userID, PostID: req.PostID}); err != nil {
		apierror.Write(w, apierror.Internal(err))
		return
	}
	apierror.WriteMessage(w, http.StatusCreated, "Post added to favorites")
}

func (h *FavoriteHandler) Remove(w http.ResponseWriter, r *http.Request) {
	ctx := storeCtx(r)
	fav, err := h.Store.GetFavorite(ctx, mux.Vars(r)["id"])
	if err != nil {
		apierror.Write(w, lookupError(err, "Favorite not found"))
		return
	}

	if !fav.IsOwnedBy(middleware.UserID(r.Context())) {
		apierror.Write(w, apierror.Forbidden("You can only remove your own favorites"))
		return
	}

	if err := h.Store.DeleteFavorite(ctx, fav.ID); err != nil {
		apierror.Write(w, lookupError(err, "Favorite not found"))
		return
	}
	apierror.WriteMessage(w, http.StatusOK, "Favorite removed successfully")
}
