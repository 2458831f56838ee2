package http

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	apierrors "esgpulse/internal/errors"
	"esgpulse/internal/services"
)

// ProcessHandler accepts document uploads and returns the processed output.
type ProcessHandler struct {
	service        *services.ProcessService
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewProcessHandler creates a new process handler.
func NewProcessHandler(service *services.ProcessService, maxUploadBytes int64, logger *slog.Logger) *ProcessHandler {
	return &ProcessHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With(slog.String("handler", "process")),
	}
}

// Process handles POST /api/process: a multipart upload with the document in
// the "file" field. On success the processed document JSON is returned; on
// analysis failure the error document is returned with status 500. There is
// no partial success shape. Unsupported extensions are rejected with 415
// rather than silently skipped, since an HTTP caller expects an answer.
func (h *ProcessHandler) Process(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.InvalidRequestWithError(err)))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		render.Render(w, r, apierrors.NewErrorResponse(
			apierrors.ErrValidation("file", "multipart field \"file\" is required")))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.InvalidRequestWithError(err)))
		return
	}

	h.logger.InfoContext(ctx, "processing upload",
		slog.String("file", header.Filename),
		slog.Int("size_bytes", len(content)))

	doc, err := h.service.ProcessDocument(ctx, header.Filename, content)
	if err != nil {
		if h.service.IsSkip(err) {
			render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrUnsupportedFile))
			return
		}
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, h.service.ErrorDocument(err, header.Filename))
		return
	}

	render.JSON(w, r, doc)
}
