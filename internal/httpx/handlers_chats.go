package httpx

import (
	"net/http"
	"strings"

	"local.dev/oshi-engine/internal/engine"
)

// GET /chats
func HandleChats(app *AppCtx) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		writeJSON(w, http.StatusOK, app.Engine.ChatRooms())
	}
}

// GET /chats/{id} ; POST /chats/{id}/messages ; POST /chats/{id}/read
func HandleChatByID(app *AppCtx) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/chats/"), "/")
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
			room, ok := app.Engine.ChatRoom(id)
			if !ok {
				writeError(app, w, engine.ErrCompanionNotFound)
				return
			}
			writeJSON(w, http.StatusOK, room)
			return
		}

		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		switch parts[1] {
		case "messages":
			// viewing: the client has this room open, so the reply
			// arrives read and without a notification.
			var req struct {
				Content string `json:"content"`
				Viewing bool   `json:"viewing"`
			}
			if !decodeJSON(w, r, &req) {
				return
			}
			m, err := app.Engine.SendMessage(r.Context(), id, req.Content, req.Viewing)
			writeResult(app, w, http.StatusCreated, m, err)

		case "read":
			err := app.Engine.MarkChatRead(r.Context(), id)
			writeResult(app, w, http.StatusOK, map[string]bool{"ok": true}, err)

		default:
			http.NotFound(w, r)
		}
	}
}
