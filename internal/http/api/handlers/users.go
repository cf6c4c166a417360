package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/topconlabs/topcon-blog/internal/auth"
	"github.com/topconlabs/topcon-blog/internal/models"
	"github.com/topconlabs/topcon-blog/internal/security"
	"gorm.io/gorm"
)

const msgUserNotFound = "Usuário não encontrado"

// UserHandler manages user account endpoints. All routes are admin-only.
type UserHandler struct {
	db *gorm.DB
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

// List returns all users with their groups resolved.
func (h *UserHandler) List(c *gin.Context) {
	var rows []models.User
	if errFind := h.db.WithContext(c.Request.Context()).Preload("Grupo").
		Order("data_criacao ASC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erro ao listar usuários"})
		return
	}

	out := make([]*auth.UserProfile, 0, len(rows))
	for i := range rows {
		out = append(out, auth.ProfileFor(&rows[i]))
	}
	c.JSON(http.StatusOK, out)
}

// Get returns a user by ID.
func (h *UserHandler) Get(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": msgUserNotFound})
		return
	}

	var user models.User
	if errFind := h.db.WithContext(c.Request.Context()).Preload("Grupo").First(&user, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": msgUserNotFound})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erro ao consultar usuário"})
		return
	}
	c.JSON(http.StatusOK, auth.ProfileFor(&user))
}

// createUserRequest defines the request body for admin user creation.
type createUserRequest struct {
	Nome    string `json:"nome" binding:"required"`
	Email   string `json:"email" binding:"required"`
	Senha   string `json:"senha" binding:"required"`
	GrupoID uint64 `json:"grupoId" binding:"required"`
}

// Create adds a user account with an explicit group.
func (h *UserHandler) Create(c *gin.Context) {
	var body createUserRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Dados inválidos"})
		return
	}

	var exists int64
	if errCount := h.db.WithContext(c.Request.Context()).Model(&models.User{}).
		Where("email = ?", body.Email).Count(&exists).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erro ao criar usuário"})
		return
	}
	if exists > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": auth.MsgEmailTaken})
		return
	}

	hash, errHash := security.HashPassword(body.Senha)
	if errHash != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erro ao criar usuário"})
		return
	}

	user := models.User{
		Nome:        strings.TrimSpace(body.Nome),
		Email:       body.Email,
		Senha:       hash,
		GrupoID:     body.GrupoID,
		Ativo:       true,
		DataCriacao: time.Now().UTC(),
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&user).Error; errCreate != nil {
		if errors.Is(errCreate, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": auth.MsgEmailTaken})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erro ao criar usuário"})
		return
	}

	var created models.User
	if errFind := h.db.WithContext(c.Request.Context()).Preload("Grupo").First(&created, user.ID).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erro ao criar usuário"})
		return
	}
	c.JSON(http.StatusCreated, auth.ProfileFor(&created))
}

// updateUserRequest defines the request body for admin user updates.
type updateUserRequest struct {
	Nome    *string `json:"nome"`
	Email   *string `json:"email"`
	Senha   *string `json:"senha"`
	GrupoID *uint64 `json:"grupoId"`
	Ativo   *bool   `json:"ativo"`
}

// Update applies non-blank field updates to a user account.
func (h *UserHandler) Update(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": msgUserNotFound})
		return
	}
	var body updateUserRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Dados inválidos"})
		return
	}

	updates := map[string]any{}
	if body.Nome != nil && strings.TrimSpace(*body.Nome) != "" {
		updates["nome"] = strings.TrimSpace(*body.Nome)
	}
	if body.Email != nil && strings.TrimSpace(*body.Email) != "" {
		updates["email"] = *body.Email
	}
	if body.Senha != nil && strings.TrimSpace(*body.Senha) != "" {
		hash, errHash := security.HashPassword(*body.Senha)
		if errHash != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erro ao atualizar usuário"})
			return
		}
		updates["senha"] = hash
	}
	if body.GrupoID != nil {
		updates["grupo_id"] = *body.GrupoID
	}
	if body.Ativo != nil {
		updates["ativo"] = *body.Ativo
	}

	if len(updates) > 0 {
		res := h.db.WithContext(c.Request.Context()).Model(&models.User{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": auth.MsgEmailTaken})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erro ao atualizar usuário"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": msgUserNotFound})
			return
		}
	}

	var updated models.User
	if errFind := h.db.WithContext(c.Request.Context()).Preload("Grupo").First(&updated, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": msgUserNotFound})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erro ao atualizar usuário"})
		return
	}
	c.JSON(http.StatusOK, auth.ProfileFor(&updated))
}

// Delete removes a user account and its posts.
func (h *UserHandler) Delete(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": msgUserNotFound})
		return
	}

	ctx := c.Request.Context()

	var user models.User
	if errFind := h.db.WithContext(ctx).First(&user, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": msgUserNotFound})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erro ao excluir usuário"})
		return
	}

	errTx := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errDelPosts := tx.Where("autor_id = ?", id).Delete(&models.Postagem{}).Error; errDelPosts != nil {
			return errDelPosts
		}
		return tx.Delete(&models.User{}, id).Error
	})
	if errTx != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erro ao excluir usuário"})
		return
	}
	c.Status(http.StatusNoContent)
}

// groupResponse is the API shape of a role group.
type groupResponse struct {
	ID        uint64 `json:"id"`
	Nome      string `json:"nome"`
	Descricao string `json:"descricao"`
}

// Groups returns the fixed set of role groups.
func (h *UserHandler) Groups(c *gin.Context) {
	var rows []models.Grupo
	if errFind := h.db.WithContext(c.Request.Context()).Order("id ASC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erro ao listar grupos"})
		return
	}

	out := make([]groupResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, groupResponse{ID: row.ID, Nome: row.Nome, Descricao: row.Descricao})
	}
	c.JSON(http.StatusOK, out)
}
