package handlers

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sobhihamadi/paint-by-number-microservice/internal/domain"
	"github.com/sobhihamadi/paint-by-number-microservice/internal/middleware"
	"github.com/sobhihamadi/paint-by-number-microservice/internal/service"
)

const defaultMaxUploadBytes = 10 << 20

var allowedImageTypes = regexp.MustCompile(`jpeg|jpg|png|gif|bmp`)

type requestView struct {
	ID               string     `json:"id"`
	OriginalFilename string     `json:"originalFilename"`
	ColorCount       string     `json:"colorCount"`
	Difficulty       string     `json:"difficulty"`
	Status           string     `json:"status"`
	ClientSessionID  string     `json:"clientSessionId,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	OutputPath       *string    `json:"outputPath"`
	ErrorMessage     *string    `json:"errorMessage"`
	CompletedAt      *time.Time `json:"completedAt"`
}

func newRequestView(req *domain.GenerationRequest, withSession bool) requestView {
	v := requestView{
		ID:               req.ID,
		OriginalFilename: req.OriginalFilename,
		ColorCount:       req.ColorCount.String(),
		Difficulty:       string(req.Difficulty),
		Status:           string(req.Status),
		CreatedAt:        req.CreatedAt,
		OutputPath:       req.OutputPath,
		ErrorMessage:     req.ErrorMessage,
		CompletedAt:      req.CompletedAt,
	}
	if withSession {
		v.ClientSessionID = req.ClientSessionID
	}
	return v
}

func newRequestViews(items []domain.GenerationRequest, withSession bool) []requestView {
	out := make([]requestView, 0, len(items))
	for i := range items {
		out = append(out, newRequestView(&items[i], withSession))
	}
	return out
}

// CreateRequest accepts a multipart upload and registers a generation
// request for the caller's session.
func (a *App) CreateRequest(w http.ResponseWriter, r *http.Request) {
	limit := a.MaxUploadBytes
	if limit <= 0 {
		limit = defaultMaxUploadBytes
	}
	// The form fields ride along with the file, so allow a little slack.
	r.Body = http.MaxBytesReader(w, r.Body, limit+1<<20)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.fileTooLarge(w, limit)
			return
		}
		if !errors.Is(err, http.ErrNotMultipart) {
			a.error(w, http.StatusBadRequest, "Invalid multipart form", map[string]any{"InvalidForm": true})
			return
		}
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		a.error(w, http.StatusBadRequest, "Image file is required", map[string]any{"FileMissing": true})
		return
	}
	defer file.Close()

	if header.Size > limit {
		a.fileTooLarge(w, limit)
		return
	}
	ext := filepath.Ext(header.Filename)
	contentType := header.Header.Get("Content-Type")
	if !isAllowedImage(ext, contentType) {
		a.error(w, http.StatusBadRequest, "Only image files are allowed (jpeg, jpg, png, gif, bmp)", map[string]any{"InvalidFileType": true})
		return
	}

	colorRaw := strings.TrimSpace(r.FormValue("colorCount"))
	difficultyRaw := strings.TrimSpace(r.FormValue("difficulty"))
	if colorRaw == "" || difficultyRaw == "" {
		a.error(w, http.StatusBadRequest, "colorCount and difficulty are required", map[string]any{
			"ColorCountMissing": colorRaw == "",
			"DifficultyMissing": difficultyRaw == "",
		})
		return
	}

	sessionID := middleware.SessionFromContext(r.Context())
	if sessionID == "" {
		sessionID = middleware.SessionID(r)
	}
	if sessionID == "" {
		a.error(w, http.StatusBadRequest, "Client session ID is required", map[string]any{"SessionIdMissing": true})
		return
	}

	colors, err := domain.ParseColorCount(colorRaw)
	if err != nil {
		a.error(w, http.StatusBadRequest, fmt.Sprintf("Invalid color count: %s. Must be 16, 32, or 50", colorRaw), map[string]any{"InvalidColorCount": true})
		return
	}
	difficulty, err := domain.ParseDifficulty(difficultyRaw)
	if err != nil {
		a.error(w, http.StatusBadRequest, fmt.Sprintf("Invalid difficulty: %s. Must be easy, medium, or hard", difficultyRaw), map[string]any{"InvalidDifficulty": true})
		return
	}

	location, err := a.Uploads.Save(r.Context(), uuid.NewString()+ext, file, header.Size, contentType)
	if err != nil {
		a.logFailure(r, err)
		a.error(w, http.StatusInternalServerError, "Failed to store uploaded file", nil)
		return
	}

	req, err := a.Requests.CreateRequest(r.Context(), service.CreateInput{
		Filename:   header.Filename,
		ImagePath:  location,
		ColorCount: colors,
		Difficulty: difficulty,
		SessionID:  sessionID,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, map[string]any{
		"id":        req.ID,
		"status":    req.Status,
		"createdAt": req.CreatedAt,
	})
}

func (a *App) fileTooLarge(w http.ResponseWriter, limit int64) {
	a.error(w, http.StatusBadRequest, fmt.Sprintf("File size exceeds %dMB limit", limit>>20), map[string]any{"FileTooLarge": true})
}

// isAllowedImage requires both the extension and the declared MIME type to
// name an accepted image format.
func isAllowedImage(ext, contentType string) bool {
	if ext == "" || !allowedImageTypes.MatchString(strings.ToLower(ext)) {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return false
	}
	return allowedImageTypes.MatchString(mediaType)
}

func (a *App) GetRequest(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		a.error(w, http.StatusBadRequest, "Request ID is required", map[string]any{"RequestIdMissing": true})
		return
	}
	req, err := a.Requests.GetRequestByID(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, newRequestView(req, false))
}

// ListRequests returns every request, newest first. ?status= narrows the
// listing to one lifecycle state.
func (a *App) ListRequests(w http.ResponseWriter, r *http.Request) {
	var (
		items []domain.GenerationRequest
		err   error
	)
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, perr := domain.ParseStatus(raw)
		if perr != nil {
			a.error(w, http.StatusBadRequest, fmt.Sprintf("Invalid status: %s", raw), map[string]any{"InvalidStatus": true})
			return
		}
		items, err = a.Requests.GetRequestsByStatus(r.Context(), status)
	} else {
		items, err = a.Requests.GetAllRequests(r.Context())
	}
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, newRequestViews(items, true))
}

func (a *App) RequestsBySession(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(chi.URLParam(r, "sessionId"))
	if sessionID == "" {
		a.error(w, http.StatusBadRequest, "Session ID is required", map[string]any{"SessionIdMissing": true})
		return
	}
	items, err := a.Requests.GetRequestsBySession(r.Context(), sessionID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, newRequestViews(items, false))
}

func (a *App) RemainingCredits(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(chi.URLParam(r, "sessionId"))
	if sessionID == "" {
		a.error(w, http.StatusBadRequest, "Session ID is required", map[string]any{"SessionIdMissing": true})
		return
	}
	remaining, err := a.Requests.GetRemainingCredits(r.Context(), sessionID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"sessionId":        sessionID,
		"remainingCredits": remaining,
		"totalCredits":     a.Requests.CreditLimit(),
	})
}
