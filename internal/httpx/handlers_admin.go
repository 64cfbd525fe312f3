package httpx

import (
	"net/http"
	"strings"

	"local.dev/oshi-engine/internal/engine"
)

// POST /admin/reload replaces in-memory state with what the store holds.
func HandleAdminReload(app *AppCtx) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		if err := app.Engine.Load(r.Context()); err != nil {
			writeError(app, w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

// POST /admin/ticks/{kind} runs one tick now.
func HandleAdminTick(app *AppCtx) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		kind := engine.TickKind(strings.Trim(strings.TrimPrefix(r.URL.Path, "/admin/ticks/"), "/"))
		if err := app.Engine.OnTick(r.Context(), kind); err != nil {
			writeError(app, w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"ran": string(kind)})
	}
}
