package handler

import (
	"mime/multipart"
	"net/http"

	"leadcall_backend/internal/imports/service"
	"leadcall_backend/internal/imports/transport"
	"leadcall_backend/platform/httpkit"
	"leadcall_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgMissingFile      = "file is required"
	msgInvalidJobID     = "invalid job ID"

	maxMultipartMemory = 32 << 20
	fileField          = "file"
)

// Handler handles HTTP requests for lead imports.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new imports handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes mounts the import routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Import)
	rg.POST("/preview", h.Preview)
	rg.POST("/jobs", h.SubmitJob)
	rg.GET("/jobs/:id", h.GetJob)
}

// Import reconciles a batch of rows sent as JSON.
// POST /api/import
func (h *Handler) Import(c *gin.Context) {
	var req transport.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.ImportRows(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Preview parses an uploaded spreadsheet without importing it.
// POST /api/import/preview
func (h *Handler) Preview(c *gin.Context) {
	fh, ok := formFile(c)
	if !ok {
		return
	}

	file, err := fh.Open()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	defer func() { _ = file.Close() }()

	result, err := h.svc.Preview(c.Request.Context(), toUpload(fh, file))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// SubmitJob archives an uploaded spreadsheet and queues it for import.
// POST /api/import/jobs
func (h *Handler) SubmitJob(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	fh, ok := formFile(c)
	if !ok {
		return
	}

	var req transport.JobRequest
	if err := c.ShouldBind(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Messages(err))
		return
	}

	file, err := fh.Open()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	defer func() { _ = file.Close() }()

	result, err := h.svc.SubmitJob(c.Request.Context(), toUpload(fh, file), req, identity.Username())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusAccepted, result)
}

// GetJob returns the state of a queued file import.
// GET /api/import/jobs/:id
func (h *Handler) GetJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidJobID, nil)
		return
	}

	result, err := h.svc.GetJob(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// formFile reads the single "file" part of a multipart request.
func formFile(c *gin.Context) (*multipart.FileHeader, bool) {
	if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return nil, false
	}
	files := c.Request.MultipartForm.File[fileField]
	if len(files) == 0 {
		httpkit.Error(c, http.StatusBadRequest, msgMissingFile, nil)
		return nil, false
	}
	return files[0], true
}

func toUpload(fh *multipart.FileHeader, file multipart.File) service.Upload {
	return service.Upload{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Reader:      file,
	}
}
