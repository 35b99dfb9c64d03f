package handlers

import (
	"encoding/json"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

const maxCallbackBody = 64 << 10

// callbackField reads a single string field from a JSON or form body.
func callbackField(w http.ResponseWriter, r *http.Request, name string) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCallbackBody)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return "", err
		}
		if s, ok := body[name].(string); ok {
			return strings.TrimSpace(s), nil
		}
		return "", nil
	}
	if err := r.ParseForm(); err != nil {
		return "", err
	}
	return strings.TrimSpace(r.PostForm.Get(name)), nil
}

func (a *App) callbackID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		a.error(w, http.StatusBadRequest, "Request ID is required", map[string]any{"RequestIdMissing": true})
		return "", false
	}
	return id, true
}

// MarkProcessing is called by the processor when work starts.
func (a *App) MarkProcessing(w http.ResponseWriter, r *http.Request) {
	id, ok := a.callbackID(w, r)
	if !ok {
		return
	}
	if _, err := a.Requests.MarkAsProcessing(r.Context(), id); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Request marked as processing",
	})
}

func (a *App) MarkComplete(w http.ResponseWriter, r *http.Request) {
	id, ok := a.callbackID(w, r)
	if !ok {
		return
	}
	outputPath, err := callbackField(w, r, "outputPath")
	if err != nil {
		a.error(w, http.StatusBadRequest, "Invalid request body", map[string]any{"InvalidBody": true})
		return
	}
	if outputPath == "" {
		a.error(w, http.StatusBadRequest, "Output path is required", map[string]any{"OutputPathMissing": true})
		return
	}
	if _, err := a.Requests.MarkAsCompleted(r.Context(), id, outputPath); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"success":    true,
		"message":    "Request marked as completed",
		"outputPath": outputPath,
	})
}

func (a *App) MarkFailed(w http.ResponseWriter, r *http.Request) {
	id, ok := a.callbackID(w, r)
	if !ok {
		return
	}
	message, err := callbackField(w, r, "error")
	if err != nil {
		a.error(w, http.StatusBadRequest, "Invalid request body", map[string]any{"InvalidBody": true})
		return
	}
	if message == "" {
		a.error(w, http.StatusBadRequest, "Error message is required", map[string]any{"ErrorMessageMissing": true})
		return
	}
	if _, err := a.Requests.MarkAsFailed(r.Context(), id, message); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Request marked as failed",
		"error":   message,
	})
}
