package controllers

import (
	"alertrelay/models"
	"alertrelay/services"
	"alertrelay/storage"
	"alertrelay/utils"
	"errors"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const maxSnippetSize = 64 << 20

type SnippetController struct {
	blobs        storage.BlobStore
	queryService *services.QueryService
}

func NewSnippetController(blobs storage.BlobStore, queryService *services.QueryService) *SnippetController {
	return &SnippetController{
		blobs:        blobs,
		queryService: queryService,
	}
}

// GetSnippet streams a stored media snippet
func (sc *SnippetController) GetSnippet(c *gin.Context) {
	rc, info, err := sc.blobs.Open(c.Request.Context(), c.Param("filename"))
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) || errors.Is(err, storage.ErrInvalidBlobRef) {
			utils.NotFoundResponse(c, "Snippet")
			return
		}
		logrus.Errorf("Open snippet failed: %v", err)
		utils.ServiceErrorResponse(c, utils.NewStorageError("open", err))
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, info.Size, contentTypeFor(info.Ref), rc, nil)
}

// UploadSnippet stores a multipart "file" and returns its reference
func (sc *SnippetController) UploadSnippet(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSnippetSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, "Multipart field \"file\" is required")
		return
	}

	name, err := storage.CleanRef(fileHeader.Filename)
	if err != nil {
		name = utils.GenerateUUID() + strings.ToLower(filepath.Ext(fileHeader.Filename))
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.BadRequestResponse(c, "Unreadable upload")
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = contentTypeFor(name)
	}

	ref, err := sc.blobs.Put(c.Request.Context(), name, file, fileHeader.Size, contentType)
	if err != nil {
		logrus.Errorf("Store snippet failed: %v", err)
		utils.ServiceErrorResponse(c, utils.NewStorageError("put", err))
		return
	}
	sc.queryService.InvalidateSnippets()

	logrus.WithFields(logrus.Fields{"ref": ref, "size": fileHeader.Size}).Info("Snippet uploaded")
	c.JSON(http.StatusOK, models.UploadSnippetResponse{Success: true, SnippetRef: ref})
}

func contentTypeFor(name string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
