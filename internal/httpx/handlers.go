package httpx

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Routes registers every endpoint on a new mux. Everything except health,
// metrics and static uploads requires auth.
func Routes(app *AppCtx) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())
	if app.Paths.UploadsDir != "" {
		mux.Handle("/uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(app.Paths.UploadsDir))))
	}

	mux.HandleFunc("/upload", WithAuth(app, HandleUpload(app)))

	mux.HandleFunc("/companions", WithAuth(app, HandleCompanions(app)))
	mux.HandleFunc("/companions/", WithAuth(app, HandleCompanionByID(app)))

	mux.HandleFunc("/posts", WithAuth(app, HandlePosts(app)))
	mux.HandleFunc("/posts/", WithAuth(app, HandlePostByID(app)))

	mux.HandleFunc("/chats", WithAuth(app, HandleChats(app)))
	mux.HandleFunc("/chats/", WithAuth(app, HandleChatByID(app)))

	mux.HandleFunc("/notifications", WithAuth(app, HandleNotifications(app)))
	mux.HandleFunc("/notifications/", WithAuth(app, HandleNotificationByID(app)))

	mux.HandleFunc("/admin/ticks/", WithAuth(app, HandleAdminTick(app)))
	mux.HandleFunc("/admin/reload", WithAuth(app, HandleAdminReload(app)))

	return mux
}

// Handler wraps Routes with CORS and request logging.
func Handler(app *AppCtx) http.Handler {
	return CORS(WithLogging(app.logger(), Routes(app)))
}

func methodNotAllowed(w http.ResponseWriter) {
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
}
