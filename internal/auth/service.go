package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/topconlabs/topcon-blog/internal/config"
	"github.com/topconlabs/topcon-blog/internal/models"
	"github.com/topconlabs/topcon-blog/internal/security"
	internalsettings "github.com/topconlabs/topcon-blog/internal/settings"
	"gorm.io/gorm"
)

// User-facing auth messages. Login failures share one generic message so the
// response does not reveal whether the email or the password was wrong.
const (
	MsgInvalidCredentials = "Email ou senha inválidos"
	MsgUserDisabled       = "Usuário desativado"
	MsgEmailTaken         = "Este email já está cadastrado"
	MsgMissingGroup       = "Erro interno: grupo padrão não encontrado"
	MsgLoginOK            = "Login realizado com sucesso"
	MsgRegisterOK         = "Usuário registrado com sucesso"
)

// UserProfile is the user payload returned with auth responses.
type UserProfile struct {
	ID          uint64    `json:"id"`
	Nome        string    `json:"nome"`
	Email       string    `json:"email"`
	GrupoID     uint64    `json:"grupoId"`
	GrupoNome   string    `json:"grupoNome"`
	DataCriacao time.Time `json:"dataCriacao"`
	Ativo       bool      `json:"ativo"`
}

// Result is the structured outcome of a login or registration attempt.
type Result struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Token   string       `json:"token,omitempty"`
	User    *UserProfile `json:"user,omitempty"`
}

// Service orchestrates login and registration against the user store and
// the token signer.
type Service struct {
	db  *gorm.DB
	jwt config.JWTConfig
}

// NewService constructs an auth Service.
func NewService(db *gorm.DB, jwt config.JWTConfig) *Service {
	return &Service{db: db, jwt: jwt}
}

// Login checks credentials and the active flag and issues a token.
// All expected failures come back as a Result, not an error.
func (s *Service) Login(ctx context.Context, email, senha string) (Result, error) {
	var user models.User
	errFind := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return Result{Success: false, Message: MsgInvalidCredentials}, nil
		}
		return Result{}, fmt.Errorf("auth: query user: %w", errFind)
	}

	if !security.CheckPassword(senha, user.Senha) {
		return Result{Success: false, Message: MsgInvalidCredentials}, nil
	}
	if !user.Ativo {
		return Result{Success: false, Message: MsgUserDisabled}, nil
	}

	return s.issueFor(ctx, user.ID, MsgLoginOK)
}

// Register creates an account in the default group and issues a token.
// A missing default group is a deployment defect and is returned as a
// failed Result with an internal-error message.
func (s *Service) Register(ctx context.Context, nome, email, senha string) (Result, error) {
	var count int64
	if errCount := s.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", email).Count(&count).Error; errCount != nil {
		return Result{}, fmt.Errorf("auth: check email: %w", errCount)
	}
	if count > 0 {
		return Result{Success: false, Message: MsgEmailTaken}, nil
	}

	var grupo models.Grupo
	errGroup := s.db.WithContext(ctx).Where("nome = ?", internalsettings.GroupUser).First(&grupo).Error
	if errGroup != nil {
		if errors.Is(errGroup, gorm.ErrRecordNotFound) {
			return Result{Success: false, Message: MsgMissingGroup}, nil
		}
		return Result{}, fmt.Errorf("auth: query default group: %w", errGroup)
	}

	hash, errHash := security.HashPassword(senha)
	if errHash != nil {
		return Result{}, fmt.Errorf("auth: hash password: %w", errHash)
	}

	user := models.User{
		Nome:        strings.TrimSpace(nome),
		Email:       email,
		Senha:       hash,
		GrupoID:     grupo.ID,
		Ativo:       true,
		DataCriacao: time.Now().UTC(),
	}
	if errCreate := s.db.WithContext(ctx).Create(&user).Error; errCreate != nil {
		// The unique index is the authoritative guard; a concurrent
		// registration can pass the pre-check and still lose here.
		if errors.Is(errCreate, gorm.ErrDuplicatedKey) {
			return Result{Success: false, Message: MsgEmailTaken}, nil
		}
		return Result{}, fmt.Errorf("auth: create user: %w", errCreate)
	}

	return s.issueFor(ctx, user.ID, MsgRegisterOK)
}

// ValidateToken reports whether a token passes full validation, swallowing
// the failure detail.
func (s *Service) ValidateToken(token string) bool {
	_, err := security.ParseUserToken(s.jwt, token)
	return err == nil
}

// issueFor reloads the user with its group resolved and signs a token.
func (s *Service) issueFor(ctx context.Context, userID uint64, message string) (Result, error) {
	var user models.User
	if errFind := s.db.WithContext(ctx).Preload("Grupo").First(&user, userID).Error; errFind != nil {
		return Result{}, fmt.Errorf("auth: reload user: %w", errFind)
	}

	role := internalsettings.GroupUser
	if user.Grupo != nil && user.Grupo.Nome != "" {
		role = user.Grupo.Nome
	}

	token, errIssue := security.IssueUserToken(s.jwt, user.ID, user.Email, user.Nome, role)
	if errIssue != nil {
		return Result{}, fmt.Errorf("auth: issue token: %w", errIssue)
	}

	return Result{
		Success: true,
		Message: message,
		Token:   token,
		User:    ProfileFor(&user),
	}, nil
}

// ProfileFor maps a user row (with group preloaded) to its API profile.
func ProfileFor(user *models.User) *UserProfile {
	profile := &UserProfile{
		ID:          user.ID,
		Nome:        user.Nome,
		Email:       user.Email,
		GrupoID:     user.GrupoID,
		DataCriacao: user.DataCriacao,
		Ativo:       user.Ativo,
	}
	if user.Grupo != nil {
		profile.GrupoNome = user.Grupo.Nome
	}
	return profile
}
