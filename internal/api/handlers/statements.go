package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Project-SpendWise/SpendWise-API/internal/api/middleware"
	"github.com/Project-SpendWise/SpendWise-API/internal/domain"
	"github.com/Project-SpendWise/SpendWise-API/internal/filestore"
	"github.com/Project-SpendWise/SpendWise-API/internal/store"
)

// StatementsHandler serves statement profile listing and raw file upload.
// Uploaded statements are stored as-is; nothing here parses them.
type StatementsHandler struct {
	profiles store.ProfileStore
	files    filestore.Store
	log      zerolog.Logger
}

// NewStatementsHandler creates a new statements handler. A nil files store
// disables upload and download but keeps listing working.
func NewStatementsHandler(profiles store.ProfileStore, files filestore.Store, log zerolog.Logger) *StatementsHandler {
	return &StatementsHandler{profiles: profiles, files: files, log: log}
}

// List handles GET /api/statements
func (h *StatementsHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	profiles, err := h.profiles.ListProfiles(r.Context(), owner)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list statements")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list statements")
		return
	}
	if profiles == nil {
		profiles = []domain.Profile{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"statements": profiles,
		"count":      len(profiles),
	})
}

// Upload handles POST /api/statements/upload. The request body is the raw
// statement file; metadata travels in query parameters (filename, name,
// periodStart, periodEnd).
func (h *StatementsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	if h.files == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Statement uploads are not configured")
		return
	}

	q := r.URL.Query()
	filename := filepath.Base(q.Get("filename"))
	if filename == "" || filename == "." || filename == "/" {
		filename = "statement.pdf"
	}
	name := q.Get("name")
	if name == "" {
		name = filename
	}
	periodStart, err := parseDate(q.Get("periodStart"))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid periodStart format")
		return
	}
	periodEnd, err := parseDate(q.Get("periodEnd"))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid periodEnd format")
		return
	}
	if periodStart != nil && periodEnd != nil && periodStart.After(*periodEnd) {
		middleware.WriteError(w, http.StatusBadRequest, "periodStart must not be after periodEnd")
		return
	}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/pdf"
	}

	ctx := r.Context()
	profileID := uuid.New().String()
	objectName := fmt.Sprintf("statements/%s/%s/%s-%s", owner, time.Now().UTC().Format("2006/01/02"), profileID, filename)

	uri, err := h.files.Upload(ctx, objectName, contentType, r.Body)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to upload statement file")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to upload file")
		return
	}

	profile := &domain.Profile{
		ID:          profileID,
		OwnerID:     owner,
		Name:        name,
		FileName:    filename,
		StorageURI:  uri,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		UploadedAt:  time.Now().UTC(),
	}
	if err := h.profiles.InsertProfile(ctx, profile); err != nil {
		h.log.Error().Err(err).Msg("Failed to insert statement profile")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to save statement metadata")
		return
	}

	h.log.Info().
		Str("statement_id", profileID).
		Str("storage_uri", uri).
		Msg("Statement uploaded")

	middleware.WriteJSON(w, http.StatusOK, profile)
}

// Download handles GET /api/statements/{id}/file and streams back the
// original uploaded file.
func (h *StatementsHandler) Download(w http.ResponseWriter, r *http.Request, statementID string) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	if h.files == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Statement downloads are not configured")
		return
	}

	profile, err := h.profiles.FindProfile(r.Context(), statementID, owner)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Statement not found")
			return
		}
		h.log.Error().Err(err).Msg("Failed to find statement")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to find statement")
		return
	}

	data, err := h.files.Fetch(r.Context(), profile.StorageURI)
	if err != nil {
		h.log.Error().Err(err).Str("statement_id", statementID).Msg("Failed to fetch statement file")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to fetch statement file")
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", profile.FileName))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
