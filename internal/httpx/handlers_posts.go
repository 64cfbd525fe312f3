package httpx

import (
	"net/http"
	"strings"

	"local.dev/oshi-engine/internal/engine"
)

// GET /posts?author=user|companion ; POST /posts
func HandlePosts(app *AppCtx) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			var f engine.FeedFilter
			switch r.URL.Query().Get("author") {
			case "user":
				f.UserOnly = true
			case "companion":
				f.CompanionOnly = true
			}
			f.CompanionID = r.URL.Query().Get("companionId")
			writeJSON(w, http.StatusOK, app.Engine.Feed(f))

		case http.MethodPost:
			var req struct {
				Content string   `json:"content"`
				Images  []string `json:"images"`
			}
			if !decodeJSON(w, r, &req) {
				return
			}
			p, err := app.Engine.CreateUserPost(r.Context(), req.Content, req.Images)
			writeResult(app, w, http.StatusCreated, p, err)

		default:
			methodNotAllowed(w)
		}
	}
}

// /posts/{id}, /posts/{id}/like
func HandlePostByID(app *AppCtx) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/posts/"), "/")
		if path == "" {
			http.NotFound(w, r)
			return
		}
		parts := strings.Split(path, "/")
		id := parts[0]

		if len(parts) == 1 {
			if r.Method != http.MethodGet {
				methodNotAllowed(w)
				return
			}
			p, ok := app.Engine.Post(id)
			if !ok {
				writeError(app, w, engine.ErrPostNotFound)
				return
			}
			writeJSON(w, http.StatusOK, p)
			return
		}

		switch parts[1] {
		case "like":
			if r.Method != http.MethodPost {
				methodNotAllowed(w)
				return
			}
			p, err := app.Engine.ToggleUserReactionOnCompanionPost(r.Context(), id)
			writeResult(app, w, http.StatusOK, p, err)
		default:
			http.NotFound(w, r)
		}
	}
}
