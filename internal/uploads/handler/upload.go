// Package handler relays file uploads to the hosted storage API.
// Creators push proof screenshots and profile photos through here; the
// service never stores file bytes itself.
package handler

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"

	"locomotion/pkg/client"
	"locomotion/pkg/config"
	apperrors "locomotion/pkg/errors"
	httputil "locomotion/pkg/http"
	"locomotion/pkg/logger"
	"locomotion/pkg/middleware"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
)

const uploadFieldName = "file"

// UploadRoute is referenced by the request size middleware wiring so
// the upload cap follows MaxUploadSize instead of the JSON body limit.
const UploadRoute = "/api/v1/uploads"

type UploadHandler struct {
	storage *client.HttpClient
	cfg     *config.Config
	log     *logger.Logger
}

func NewUploadHandler(storage *client.HttpClient, cfg *config.Config, log *logger.Logger) *UploadHandler {
	return &UploadHandler{
		storage: storage,
		cfg:     cfg,
		log:     log,
	}
}

// UploadedFile is the slice of the storage API response we hand back to
// clients.
type UploadedFile struct {
	ID               string `json:"id"`
	URL              string `json:"url"`
	OriginalFilename string `json:"original_filename"`
	ContentType      string `json:"content_type"`
	SizeBytes        int64  `json:"size_bytes"`
}

func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	file, header, err := r.FormFile(uploadFieldName)
	if err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("Multipart field 'file' is required")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Upload", "operation", "WriteError", "error", writeErr)
		}
		return
	}
	defer file.Close()

	if header.Size > h.cfg.MaxUploadSize {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("File exceeds the maximum upload size")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Upload", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	body, contentType, err := h.rebuildForm(file, header)
	if err != nil {
		h.log.Error("failed to rebuild multipart form", "filename", header.Filename, "error", err)
		if writeErr := httputil.WriteError(w, apperrors.Internal("Failed to process upload", err)); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Upload", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	resp, err := h.storage.POSTStream(r.Context(), "/files", contentType, body, map[string]string{
		"Authorization":    "Bearer " + h.cfg.StorageToken,
		"X-Idempotency-Id": uuid.NewString(),
	})
	if err != nil {
		h.log.Error("storage relay failed", "filename", header.Filename, "error", err)
		if writeErr := httputil.WriteError(w, apperrors.Unavailable("file storage")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Upload", "operation", "WriteError", "error", writeErr)
		}
		return
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		h.log.Error("storage rejected upload", "status", resp.StatusCode, "filename", header.Filename)
		if writeErr := httputil.WriteError(w, apperrors.Unavailable("file storage")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Upload", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	var uploaded UploadedFile
	if err := resp.DecodeJSON(&uploaded); err != nil {
		h.log.Error("failed to decode storage response", "error", err)
		if writeErr := httputil.WriteError(w, apperrors.Internal("Invalid storage response", err)); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Upload", "operation", "WriteError", "error", writeErr)
		}
		return
	}
	if uploaded.OriginalFilename == "" {
		uploaded.OriginalFilename = header.Filename
	}
	if uploaded.SizeBytes == 0 {
		uploaded.SizeBytes = header.Size
	}

	if err := httputil.WriteCreated(w, uploaded); err != nil {
		h.log.Error("failed to write created response", "handler", "Upload", "operation", "WriteCreated", "error", err)
	}
}

// rebuildForm re-encodes the incoming file as a fresh multipart body for
// the storage API. Buffering is bounded by MaxUploadSize, enforced above
// and by the request size middleware.
func (h *UploadHandler) rebuildForm(file multipart.File, header *multipart.FileHeader) (io.Reader, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile(uploadFieldName, header.Filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}

	return &buf, writer.FormDataContentType(), nil
}

func (h *UploadHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST(UploadRoute, middleware.Authenticate([]byte(h.cfg.JWTSecret), h.Upload))
}
