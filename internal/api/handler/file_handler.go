package handler

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/scribehub/writing-marketplace/internal/core/domain"
	"github.com/scribehub/writing-marketplace/internal/core/ports"
)

const maxUploadSize = 32 << 20

// FileHandler handles attachment upload and download. Bytes land on local
// disk under uploadDir; metadata goes through the file service, which owns
// the access rules.
type FileHandler struct {
	service   ports.FileService
	uploadDir string
}

func NewFileHandler(service ports.FileService, uploadDir string) *FileHandler {
	return &FileHandler{service: service, uploadDir: uploadDir}
}

// Upload handles POST /v1/assignments/:id/files (multipart field "file").
//
// @Summary      Upload an attachment to an assignment
// @Tags         files
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string  true  "Assignment ID"
// @Param        file  formData  file    true  "File to upload"
// @Success      201   {object}  domain.File
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /v1/assignments/{id}/files [post]
func (h *FileHandler) Upload(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing file field")
	}
	if fh.Size > maxUploadSize {
		return echo.NewHTTPError(http.StatusBadRequest, "file too large")
	}

	src, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable file")
	}
	defer src.Close()

	// Stored under a generated name; the original name only lives in metadata.
	stored := primitive.NewObjectID().Hex() + filepath.Ext(fh.Filename)
	path := filepath.Join(h.uploadDir, stored)

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return err
	}
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	defer dst.Close()

	size, err := io.Copy(dst, src)
	if err != nil {
		os.Remove(path)
		return err
	}

	file, err := h.service.Record(c.Request().Context(), &domain.File{
		AssignmentID: c.Param("id"),
		UploaderID:   user.ID,
		Name:         filepath.Base(fh.Filename),
		Path:         path,
		Size:         size,
		ContentType:  fh.Header.Get("Content-Type"),
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		os.Remove(path)
		return err
	}

	return c.JSON(http.StatusCreated, file)
}

// List handles GET /v1/assignments/:id/files.
//
// @Summary      List an assignment's attachments
// @Tags         files
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string  true  "Assignment ID"
// @Success      200  {array}  domain.File
// @Failure      403  {object}  map[string]string
// @Router       /v1/assignments/{id}/files [get]
func (h *FileHandler) List(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	files, err := h.service.ListByAssignment(c.Request().Context(), c.Param("id"), user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, files)
}

// Download handles GET /v1/files/:id.
//
// @Summary      Download an attachment
// @Tags         files
// @Produce      octet-stream
// @Security     BearerAuth
// @Param        id  path  string  true  "File ID"
// @Success      200
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/files/{id} [get]
func (h *FileHandler) Download(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	file, err := h.service.Get(c.Request().Context(), c.Param("id"), user)
	if err != nil {
		return err
	}
	return c.Attachment(file.Path, file.Name)
}
