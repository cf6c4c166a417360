package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	dbutil "github.com/topconlabs/topcon-blog/internal/db"
	"github.com/topconlabs/topcon-blog/internal/models"
	"gorm.io/gorm"
)

// Combined not-found message for update/delete: a non-owner learns nothing
// about whether the post exists.
const (
	msgPostNotFound     = "Postagem não encontrada"
	msgPostNotEditable  = "Postagem não encontrada ou você não tem permissão para editá-la"
	msgPostNotDeletable = "Postagem não encontrada ou você não tem permissão para excluí-la"
)

// PostHandler manages blog post endpoints.
type PostHandler struct {
	db *gorm.DB
}

// NewPostHandler constructs a PostHandler.
func NewPostHandler(db *gorm.DB) *PostHandler {
	return &PostHandler{db: db}
}

// postResponse is the API shape of a post with its author resolved.
type postResponse struct {
	ID              uint64     `json:"id"`
	Titulo          string     `json:"titulo"`
	Conteudo        string     `json:"conteudo"`
	ImagemCapaUrl   string     `json:"imagemCapaUrl"`
	AutorID         uint64     `json:"autorId"`
	AutorNome       string     `json:"autorNome"`
	DataCriacao     time.Time  `json:"dataCriacao"`
	DataAtualizacao *time.Time `json:"dataAtualizacao"`
}

func toPostResponse(post *models.Postagem) postResponse {
	out := postResponse{
		ID:              post.ID,
		Titulo:          post.Titulo,
		Conteudo:        post.Conteudo,
		ImagemCapaUrl:   post.ImagemCapaUrl,
		AutorID:         post.AutorID,
		DataCriacao:     post.DataCriacao,
		DataAtualizacao: post.DataAtualizacao,
	}
	if post.Autor != nil {
		out.AutorNome = post.Autor.Nome
	}
	return out
}

// List returns a page of posts, newest first, with optional free-text
// search and author filter. The total reflects the filtered set.
func (h *PostHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(strings.TrimSpace(c.DefaultQuery("page", "1")))
	if page < 1 {
		page = 1
	}
	size, _ := strconv.Atoi(strings.TrimSpace(c.DefaultQuery("size", "10")))
	if size < 1 {
		size = 10
	}

	q := h.db.WithContext(c.Request.Context()).Model(&models.Postagem{})
	if term := strings.TrimSpace(c.Query("term")); term != "" {
		pattern := dbutil.NormalizeLikePattern(h.db, "%"+term+"%")
		q = q.Where(
			dbutil.CaseInsensitiveLikeExpr(h.db, "titulo")+" OR "+dbutil.CaseInsensitiveLikeExpr(h.db, "conteudo"),
			pattern,
			pattern,
		)
	}
	if authorQ := strings.TrimSpace(c.Query("authorId")); authorQ != "" {
		authorID, errParse := strconv.ParseUint(authorQ, 10, 64)
		if errParse != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Parâmetro authorId inválido"})
			return
		}
		q = q.Where("autor_id = ?", authorID)
	}

	// Count and page share the filter set; separate sessions keep the
	// chained conditions from being applied twice.
	var total int64
	if errCount := q.Session(&gorm.Session{}).Count(&total).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erro ao listar postagens"})
		return
	}

	var rows []models.Postagem
	if errFind := q.Session(&gorm.Session{}).Preload("Autor").
		Order("data_criacao DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erro ao listar postagens"})
		return
	}

	items := make([]postResponse, 0, len(rows))
	for i := range rows {
		items = append(items, toPostResponse(&rows[i]))
	}

	totalPages := int((total + int64(size) - 1) / int64(size))
	c.JSON(http.StatusOK, gin.H{
		"items":      items,
		"total":      total,
		"page":       page,
		"pageSize":   size,
		"totalPages": totalPages,
	})
}

// Get returns a post by ID with its author resolved.
func (h *PostHandler) Get(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": msgPostNotFound})
		return
	}

	var post models.Postagem
	if errFind := h.db.WithContext(c.Request.Context()).Preload("Autor").First(&post, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": msgPostNotFound})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erro ao consultar postagem"})
		return
	}
	c.JSON(http.StatusOK, toPostResponse(&post))
}

// createPostRequest defines the request body for post creation.
type createPostRequest struct {
	Titulo        string `json:"titulo" binding:"required"`
	Conteudo      string `json:"conteudo" binding:"required"`
	ImagemCapaUrl string `json:"imagemCapaUrl"`
}

// Create persists a new post authored by the caller.
func (h *PostHandler) Create(c *gin.Context) {
	var body createPostRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Dados inválidos"})
		return
	}

	post := models.Postagem{
		Titulo:        body.Titulo,
		Conteudo:      body.Conteudo,
		ImagemCapaUrl: body.ImagemCapaUrl,
		AutorID:       getUserID(c),
		DataCriacao:   time.Now().UTC(),
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&post).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erro ao criar postagem"})
		return
	}

	var created models.Postagem
	if errFind := h.db.WithContext(c.Request.Context()).Preload("Autor").First(&created, post.ID).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erro ao criar postagem"})
		return
	}
	c.JSON(http.StatusCreated, toPostResponse(&created))
}

// updatePostRequest defines the request body for post updates. Pointer
// fields distinguish "absent" from "set"; an explicit empty string clears
// the cover image.
type updatePostRequest struct {
	Titulo        *string `json:"titulo"`
	Conteudo      *string `json:"conteudo"`
	ImagemCapaUrl *string `json:"imagemCapaUrl"`
}

// Update applies non-blank field updates to a post owned by the caller.
// Missing post and non-owner both produce the same not-found response.
func (h *PostHandler) Update(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": msgPostNotEditable})
		return
	}
	var body updatePostRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Dados inválidos"})
		return
	}

	var post models.Postagem
	if errFind := h.db.WithContext(c.Request.Context()).First(&post, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": msgPostNotEditable})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erro ao atualizar postagem"})
		return
	}
	if post.AutorID != getUserID(c) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": msgPostNotEditable})
		return
	}

	now := time.Now().UTC()
	updates := map[string]any{"data_atualizacao": now}
	if body.Titulo != nil && strings.TrimSpace(*body.Titulo) != "" {
		updates["titulo"] = *body.Titulo
	}
	if body.Conteudo != nil && strings.TrimSpace(*body.Conteudo) != "" {
		updates["conteudo"] = *body.Conteudo
	}
	if body.ImagemCapaUrl != nil {
		updates["imagem_capa_url"] = *body.ImagemCapaUrl
	}

	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&models.Postagem{}).
		Where("id = ?", id).Updates(updates).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erro ao atualizar postagem"})
		return
	}

	var updated models.Postagem
	if errFind := h.db.WithContext(c.Request.Context()).Preload("Autor").First(&updated, id).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erro ao atualizar postagem"})
		return
	}
	c.JSON(http.StatusOK, toPostResponse(&updated))
}

// Delete removes a post owned by the caller. Missing post and non-owner
// both produce the same not-found response.
func (h *PostHandler) Delete(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": msgPostNotDeletable})
		return
	}

	var post models.Postagem
	if errFind := h.db.WithContext(c.Request.Context()).First(&post, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": msgPostNotDeletable})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erro ao excluir postagem"})
		return
	}
	if post.AutorID != getUserID(c) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": msgPostNotDeletable})
		return
	}

	if errDelete := h.db.WithContext(c.Request.Context()).Delete(&models.Postagem{}, id).Error; errDelete != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erro ao excluir postagem"})
		return
	}
	c.Status(http.StatusNoContent)
}
