package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/pliu/socialboard/internal/apierror"
	"github.com/pliu/socialboard/internal/middleware"
	"github.com/pliu/socialboard/internal/models"
	"github.com/pliu/socialboard/internal/store"
)

type CreatePostRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
}

type CommentRequest struct {
	Comment string `json:"comment"`
}

type PostHandler struct {
	Store store.Store
}

func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.Store.ListPosts(storeCtx(r))
	if err != nil {
		apierror.Write(w, apierror.Internal(err))
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	postID := mux.Vars(r)["postId"]
	if _, err := uuid.Parse(postID); err != nil {
		apierror.Write(w, apierror.BadRequest("Invalid post ID"))
		return
	}

	post, err := h.Store.GetPost(storeCtx(r), postID)
	if err != nil {
		apierror.Write(w, lookupError(err, "Post not found"))
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if err := decodeJSON(r, &req); err != nil {
		apierror.Write(w, err)
		return
	}

	ctx := storeCtx(r)
	owner, err := currentUser(ctx, h.Store, r)
	if err != nil {
		apierror.Write(w, err)
		return
	}

	post := &models.Post{
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		OwnerID:     owner.ID,
	}
	if err := h.Store.CreatePost(ctx, post); err != nil {
		apierror.Write(w, apierror.Internal(err))
		return
	}

	created, err := h.Store.GetPost(ctx, post.ID)
	if err != nil {
		apierror.Write(w, apierror.Internal(err))
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *PostHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	var req CommentRequest
	if err := decodeJSON(r, &req); err != nil {
		apierror.Write(w, err)
		return
	}

	ctx := storeCtx(r)
	author, err := currentUser(ctx, h.Store, r)
	if err != nil {
		apierror.Write(w, err)
		return
	}

	postID := mux.Vars(r)["postId"]
	comment := &models.Comment{
		UserID:  author.ID,
		Comment: req.Comment,
	}
	if err := h.Store.AddComment(ctx, postID, comment); err != nil {
		apierror.Write(w, lookupError(err, "Post not found"))
		return
	}

	post, err := h.Store.GetPost(ctx, postID)
	if err != nil {
		apierror.Write(w, lookupError(err, "Post not found"))
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := storeCtx(r)
	post, err := h.Store.GetPost(ctx, mux.Vars(r)["postId"])
	if err != nil {
		apierror.Write(w, lookupError(err, "Post not found"))
		return
	}

	if !post.IsOwnedBy(middleware.UserID(r.Context())) {
		apierror.Write(w, apierror.Forbidden("You are not authorized to delete this post"))
		return
	}

	if err := h.Store.DeletePost(ctx, post.ID); err != nil {
		apierror.Write(w, lookupError(err, "Post not found"))
		return
	}
	apierror.WriteMessage(w, http.StatusOK, "Post deleted successfully")
}
