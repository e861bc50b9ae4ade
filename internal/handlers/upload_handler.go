package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "kharcha/internal/errors"
	"kharcha/internal/files"
	"kharcha/internal/services"
)

// UploadHandler handles standalone file uploads and retrieval.
type UploadHandler struct {
	fileStore    *files.Store
	auditService services.AuditServicer
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(fileStore *files.Store, auditService services.AuditServicer) *UploadHandler {
	return &UploadHandler{fileStore: fileStore, auditService: auditService}
}

// Upload stores a single file and returns its generated name and URL
// @Summary     Upload a file
// @Description Store one file and get back its generated name and public URL
// @Tags        uploads
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
// @Param       file formData file true "File to upload"
// @Success     201 {object} files.StoredFile "Stored file"
// @Failure     400 {object} ErrorResponse "Missing file, oversized file, or disallowed type"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /uploads [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "file part is required"))
		return
	}

	stored, err := h.fileStore.Save(fh)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPLOAD_FILE", "upload", 0, c.ClientIP(),
		map[string]interface{}{"file_name": stored.FileName})

	c.JSON(http.StatusCreated, gin.H{
		"fileName": stored.FileName,
		"fileUrl":  stored.FileURL,
	})
}

// Serve streams a stored file back to an authenticated client
// @Summary     Download a file
// @Description Retrieve a previously uploaded file by its stored name
// @Tags        uploads
// @Produce     octet-stream
// @Security    BearerAuth
// @Param       filename path string true "Stored file name"
// @Success     200 {file} binary "File content"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "File not found"
// @Router      /uploads/{filename} [get]
func (h *UploadHandler) Serve(c *gin.Context) {
	if _, err := getUserID(c); err != nil {
		respondWithError(c, err)
		return
	}

	path, err := h.fileStore.Path(c.Param("filename"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.File(path)
}
