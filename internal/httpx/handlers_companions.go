package httpx

import (
	"net/http"
	"strings"

	"local.dev/oshi-engine/internal/engine"
	"local.dev/oshi-engine/internal/models"
)

// GET /companions ; POST /companions
func HandleCompanions(app *AppCtx) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, app.Engine.Companions())

		case http.MethodPost:
			var spec models.CompanionSpec
			if !decodeJSON(w, r, &spec) {
				return
			}
			c, err := app.Engine.AddCompanion(r.Context(), spec)
			writeResult(app, w, http.StatusCreated, c, err)

		default:
			methodNotAllowed(w)
		}
	}
}

// /companions/{id}, /companions/{id}/posts, /companions/{id}/avatar
func HandleCompanionByID(app *AppCtx) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/companions/"), "/")
		if path == "" {
			http.NotFound(w, r)
			return
		}
		parts := strings.Split(path, "/")
		id := parts[0]

		if len(parts) == 1 {
			switch r.Method {
			case http.MethodGet:
				c, ok := app.Engine.Companion(id)
				if !ok {
					writeError(app, w, engine.ErrCompanionNotFound)
					return
				}
				writeJSON(w, http.StatusOK, c)

			case http.MethodPatch:
				var req struct {
					Name string `json:"name"`
				}
				if !decodeJSON(w, r, &req) {
					return
				}
				c, err := app.Engine.RenameCompanion(r.Context(), id, req.Name)
				writeResult(app, w, http.StatusOK, c, err)

			case http.MethodDelete:
				err := app.Engine.RemoveCompanion(r.Context(), id)
				writeResult(app, w, http.StatusOK, map[string]bool{"ok": true}, err)

			default:
				methodNotAllowed(w)
			}
			return
		}

		switch parts[1] {
		case "posts":
			switch r.Method {
			case http.MethodGet:
				if _, ok := app.Engine.Companion(id); !ok {
					writeError(app, w, engine.ErrCompanionNotFound)
					return
				}
				writeJSON(w, http.StatusOK, app.Engine.Feed(engine.FeedFilter{CompanionID: id}))
			case http.MethodPost:
				p, err := app.Engine.CreateCompanionPost(r.Context(), id)
				writeResult(app, w, http.StatusCreated, p, err)
			default:
				methodNotAllowed(w)
			}

		case "avatar":
			if r.Method != http.MethodPost {
				methodNotAllowed(w)
				return
			}
			data, ok := readImage(w, r)
			if !ok {
				return
			}
			c, err := app.Engine.SetAvatar(r.Context(), id, data)
			writeResult(app, w, http.StatusOK, c, err)

		default:
			http.NotFound(w, r)
		}
	}
}
