package httpx

import (
	"net/http"
	"strings"

	"local.dev/oshi-engine/internal/models"
	"local.dev/oshi-engine/internal/notify"
)

type groupView struct {
	models.GroupedNotification
	ID      string `json:"id"`
	Message string `json:"message"`
	Read    bool   `json:"read"`
}

// GET /notifications?type=&grouped=1 ; DELETE /notifications
func HandleNotifications(app *AppCtx) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			typ := models.NotificationType(r.URL.Query().Get("type"))
			if r.URL.Query().Get("grouped") == "" {
				writeJSON(w, http.StatusOK, app.Engine.Notifications(typ))
				return
			}
			groups := app.Engine.GroupedNotifications(typ)
			out := make([]groupView, 0, len(groups))
			for _, g := range groups {
				out = append(out, groupView{
					GroupedNotification: g,
					ID:                  g.ID(),
					Message:             notify.Message(g),
					Read:                g.IsRead(),
				})
			}
			writeJSON(w, http.StatusOK, out)

		case http.MethodDelete:
			app.Engine.ClearNotifications()
			writeJSON(w, http.StatusOK, map[string]bool{"ok": true})

		default:
			methodNotAllowed(w)
		}
	}
}

// GET /notifications/unread ; POST /notifications/read ; DELETE /notifications/{id}
func HandleNotificationByID(app *AppCtx) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/notifications/"), "/")
		switch {
		case id == "unread" && r.Method == http.MethodGet:
			writeJSON(w, http.StatusOK, map[string]int{"unread": app.Engine.UnreadNotifications()})

		case id == "read" && r.Method == http.MethodPost:
			// Empty ids marks everything read.
			var req struct {
				IDs []string `json:"ids"`
			}
			if !decodeJSON(w, r, &req) {
				return
			}
			var n int
			if len(req.IDs) == 0 {
				n = app.Engine.MarkAllNotificationsRead()
			} else {
				n = app.Engine.MarkNotificationsRead(req.IDs...)
			}
			writeJSON(w, http.StatusOK, map[string]int{"marked": n})

		case id != "" && !strings.Contains(id, "/") && r.Method == http.MethodDelete:
			if err := app.Engine.DeleteNotification(id); err != nil {
				writeError(app, w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]bool{"ok": true})

		case id == "":
			http.NotFound(w, r)

		default:
			methodNotAllowed(w)
		}
	}
}
