package httpx

import (
	"io"
	"net/http"

	"local.dev/oshi-engine/internal/blob"
)

// maxUploadBody leaves room for multipart headers around a full-size image.
const maxUploadBody = blob.MaxImageBytes + 1<<20

// readImage pulls the "file" part of a multipart upload.
func readImage(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := r.ParseMultipartForm(maxUploadBody); err != nil {
		http.Error(w, "parse form: "+err.Error(), http.StatusBadRequest)
		return nil, false
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "form file: "+err.Error(), http.StatusBadRequest)
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "read file: "+err.Error(), http.StatusBadRequest)
		return nil, false
	}
	return data, true
}

// POST /upload (multipart "file"); returns {"url": ...} for use in a post.
func HandleUpload(app *AppCtx) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		data, ok := readImage(w, r)
		if !ok {
			return
		}
		url, err := app.Engine.UploadPostImage(r.Context(), data)
		if err != nil {
			writeError(app, w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"url": url})
	}
}
