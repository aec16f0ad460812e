package watchlist

import "net/http"

// Register mounts the watchlist routes.
func Register(mux *http.ServeMux, svc Service) {
	mux.Handle("GET /users/{id}/watchlist", ListHandler{svc})
	mux.Handle("POST /users/{id}/watchlist", AddHandler{svc})
	mux.Handle("DELETE /users/{id}/watchlist/{symbol}", RemoveHandler{svc})
}
