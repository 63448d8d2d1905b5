package handlers

import (
	"net/http"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/pliu/socialboard/internal/apierror"
	"github.com/pliu/socialboard/internal/auth"
	"github.com/pliu/socialboard/internal/middleware"
	"github.com/pliu/socialboard/internal/store"
	"github.com/pliu/socialboard/internal/ws"
)

type RouterConfig struct {
	Store          store.Store
	Tokens         *auth.TokenManager
	Hub            *ws.Hub
	AllowedOrigins []string
	// CheckOrigin decides which browser origins may open /ws. Nil allows all.
	CheckOrigin func(origin string) bool
}

// NewRouter mounts every resource under /api and the realtime endpoint at /ws,
// wrapped in CORS, panic recovery and request logging.
func NewRouter(cfg RouterConfig) http.Handler {
	authHandler := &AuthHandler{Store: cfg.Store, Tokens: cfg.Tokens}
	postHandler := &PostHandler{Store: cfg.Store}
	favoriteHandler := &FavoriteHandler{Store: cfg.Store}
	messageHandler := &MessageHandler{Store: cfg.Store, Hub: cfg.Hub}
	userHandler := &UserHandler{Store: cfg.Store, Hub: cfg.Hub}

	authed := middleware.Auth(cfg.Tokens)
	protect := func(h http.HandlerFunc) http.Handler { return authed(h) }

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apierror.WriteMessage(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apierror.WriteMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	api := r.PathPrefix("/api").Subrouter()

	a := api.PathPrefix("/auth").Subrouter()
	a.HandleFunc("/register", authHandler.Register).Methods("POST")
	a.HandleFunc("/login", authHandler.Login).Methods("POST")
	a.Handle("/me", protect(authHandler.Me)).Methods("GET")

	p := api.PathPrefix("/posts").Subrouter()
	p.Use(authed)
	handleRoot(p, postHandler.List, "GET")
	handleRoot(p, postHandler.Create, "POST")
	p.HandleFunc("/{postId}", postHandler.Get).Methods("GET")
	p.HandleFunc("/{postId}", postHandler.Delete).Methods("DELETE")
	p.HandleFunc("/{postId}/comment", postHandler.AddComment).Methods("POST")

	f := api.PathPrefix("/favorites").Subrouter()
	f.Use(authed)
	handleRoot(f, favoriteHandler.List, "GET")
	f.HandleFunc("/add", favoriteHandler.Add).Methods("POST")
	f.HandleFunc("/{id}", favoriteHandler.Remove).Methods("DELETE")

	m := api.PathPrefix("/messages").Subrouter()
	m.Use(authed)
	handleRoot(m, messageHandler.List, "GET")
	m.HandleFunc("/send", messageHandler.Send).Methods("POST")
	m.HandleFunc("/mark-read", messageHandler.MarkRead).Methods("PUT")

	// Profile lookup by username is public, everything else needs a token.
	u := api.PathPrefix("/users").Subrouter()
	u.Handle("", protect(userHandler.List)).Methods("GET")
	u.Handle("/", protect(userHandler.List)).Methods("GET")
	u.Handle("", protect(userHandler.DeleteSelf)).Methods("DELETE")
	u.Handle("/", protect(userHandler.DeleteSelf)).Methods("DELETE")
	u.Handle("/update", protect(userHandler.Update)).Methods("PUT")
	u.HandleFunc("/{username}", userHandler.GetByUsername).Methods("GET")

	upgrader := ws.NewUpgrader(cfg.CheckOrigin)
	r.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWs(cfg.Hub, upgrader, w, r)
	})

	var h http.Handler = r
	h = gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins(cfg.AllowedOrigins),
		gorillahandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorillahandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)(h)
	h = gorillahandlers.RecoveryHandler(gorillahandlers.PrintRecoveryStack(true))(h)
	return middleware.LoggingMiddleware(h)
}

// handleRoot serves a collection route with and without the trailing slash.
func handleRoot(r *mux.Router, h http.HandlerFunc, method string) {
	r.HandleFunc("", h).Methods(method)
	r.HandleFunc("/", h).Methods(method)
}
