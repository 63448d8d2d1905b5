package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/pliu/socialboard/internal/apierror"
	"github.com/pliu/socialboard/internal/middleware"
	"github.com/pliu/socialboard/internal/models"
	"github.com/pliu/socialboard/internal/store"
)

// Broadcaster delivers a realtime event to every connection in a room.
type Broadcaster interface {
	Emit(room, event string, payload interface{})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// decodeJSON reads the request body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return apierror.Wrap(err, http.StatusBadRequest, "Invalid request body")
	}
	return nil
}

// storeCtx keeps store calls running after the client goes away.
func storeCtx(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

// currentUser loads the authenticated caller. A token can outlive its account,
// in which case the caller is reported as not found.
func currentUser(ctx context.Context, st store.Store, r *http.Request) (*models.User, error) {
	user, err := st.GetUserByID(ctx, middleware.UserID(r.Context()))
	if err != nil {
		return nil, lookupError(err, "User not found")
	}
	return user, nil
}

// lookupError maps a failed lookup to a 404 with notFoundMsg, or a 500.
func lookupError(err error, notFoundMsg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apierror.NotFound(notFoundMsg)
	}
	return apierror.Internal(err)
}
