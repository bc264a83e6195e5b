package server

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/dashpilot/s3-universal-backend/internal/auth"
	"github.com/dashpilot/s3-universal-backend/internal/models"
	"github.com/dashpilot/s3-universal-backend/internal/storage"
)

// HandleSave persists the request's JSON document and/or image under the
// authenticated user's key prefix. The JSON path runs the
// backup-then-overwrite sequence; the image is a plain put.
func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	username, ok := auth.Identify(r, h.Codec)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "authentication required"})
		return
	}

	var req models.SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body"})
		return
	}
	if len(req.Data) == 0 && req.Image == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "nothing to save: provide data or image"})
		return
	}
	if h.Store == nil || h.Backups == nil {
		slog.Error("save attempted but storage is not configured")
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "storage not configured"})
		return
	}

	// Validate the image artifact fully before any storage write so a bad
	// request cannot leave a half-applied save behind.
	var (
		imageBody []byte
		imageKey  string
		imageName string
		imageCT   string
	)
	if req.Image != "" {
		body, tag, err := parseImageDataURL(req.Image)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
			return
		}
		imageName = storage.SanitizeFilename(req.Filename)
		if imageName == "" {
			if h.Cfg.RequireFilename {
				writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "filename required"})
				return
			}
			imageName = storage.GenerateFilename(tag)
		}
		if ext := path.Ext(imageName); ext != "" {
			imageCT = storage.InferContentType(ext)
		} else {
			imageCT = storage.InferContentType(tag)
		}
		imageBody = body
		imageKey = storage.ImageKey(username, imageName)
	}

	results := models.SaveResults{}

	if len(req.Data) > 0 {
		res, err := h.Backups.SaveJSON(r.Context(), username, req.Data)
		if err != nil {
			slog.Error("json save failed", "username", username, "error", err)
			h.Metrics.saves.WithLabelValues("error").Inc()
			writeJSON(w, http.StatusInternalServerError, models.SaveResponse{
				Message: fmt.Sprintf("failed to save data: %v", err),
				Results: results,
			})
			return
		}
		if res.BackedUp {
			h.Metrics.backupsMade.Inc()
		}
		h.Metrics.backupsPruned.Add(float64(res.Pruned))
		results.JSON = &models.JSONResult{
			Key:      res.Key,
			BackedUp: res.BackedUp,
			Pruned:   res.Pruned,
		}
	}

	if imageKey != "" {
		if err := h.Store.Put(r.Context(), imageKey, imageBody, imageCT); err != nil {
			slog.Error("image save failed", "username", username, "key", imageKey, "error", err)
			results.Image = &models.ImageResult{Key: imageKey, Filename: imageName, ContentType: imageCT, Error: err.Error()}
			h.Metrics.saves.WithLabelValues("error").Inc()
			writeJSON(w, http.StatusInternalServerError, models.SaveResponse{
				Message: fmt.Sprintf("failed to save image: %v", err),
				Results: results,
			})
			return
		}
		results.Image = &models.ImageResult{
			Key:         imageKey,
			Filename:    imageName,
			ContentType: imageCT,
		}
		if h.Cfg.LiveURL != "" {
			results.Image.URL = h.Cfg.LiveURL + "/" + imageKey
		}
	}

	slog.Info("saved", "username", username,
		"json", results.JSON != nil, "image", results.Image != nil)
	h.Metrics.saves.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, models.SaveResponse{
		Success: true,
		Message: "saved",
		Results: results,
	})
}

// parseImageDataURL splits a data:image/<type>;base64,<payload> URL into the
// decoded payload and its type tag.
func parseImageDataURL(s string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(s, "data:image/")
	if !ok {
		return nil, "", fmt.Errorf("image must be a data:image/... URL")
	}
	tag, encoded, ok := strings.Cut(rest, ";base64,")
	if !ok {
		return nil, "", fmt.Errorf("image data URL must be base64 encoded")
	}
	body, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", fmt.Errorf("invalid base64 image payload: %w", err)
	}
	return body, tag, nil
}
