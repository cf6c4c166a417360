package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// maxUploadSize bounds uploaded cover images to 5MB.
const maxUploadSize = 5 * 1024 * 1024

// allowedExtensions lists the accepted image file extensions.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// ImageHandler stores uploaded cover images under the upload directory.
type ImageHandler struct {
	uploadDir string
}

// NewImageHandler constructs an ImageHandler.
func NewImageHandler(uploadDir string) *ImageHandler {
	return &ImageHandler{uploadDir: uploadDir}
}

// Upload validates size and extension, writes the file under a random
// unique name, and returns its relative URL. Validation failures happen
// before anything touches the filesystem.
func (h *ImageHandler) Upload(c *gin.Context) {
	file, errFile := c.FormFile("arquivo")
	if errFile != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Nenhum arquivo enviado"})
		return
	}
	if file.Size == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Nenhum arquivo enviado"})
		return
	}
	if file.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Arquivo muito grande. Tamanho máximo: 5MB"})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Tipo de arquivo não permitido. Use: jpg, jpeg, png, gif ou webp"})
		return
	}

	fileName := uuid.NewString() + ext
	if errSave := c.SaveUploadedFile(file, filepath.Join(h.uploadDir, fileName)); errSave != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erro ao salvar arquivo"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Upload realizado com sucesso",
		"url":      "/uploads/" + fileName,
		"fileName": fileName,
	})
}
