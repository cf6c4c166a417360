package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/topconlabs/topcon-blog/internal/config"
	"github.com/topconlabs/topcon-blog/internal/db"
	"github.com/topconlabs/topcon-blog/internal/http/api"
	"github.com/topconlabs/topcon-blog/internal/models"
	"github.com/topconlabs/topcon-blog/internal/security"
	internalsettings "github.com/topconlabs/topcon-blog/internal/settings"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Migrate opens the database and runs migrations.
func Migrate(ctx context.Context, cfg config.AppConfig) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	return db.Migrate(conn)
}

// RunServer boots the blog API server with database-backed components.
func RunServer(ctx context.Context, cfg config.AppConfig, port int) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}

	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}

	jwtCfg, _ := config.LoadJWTConfig(configPath)
	if jwtCfg.Secret == "" {
		// Tokens signed with an ephemeral secret die with the process.
		secret, errSecret := security.GenerateRandomString(32)
		if errSecret != nil {
			return fmt.Errorf("generate jwt secret: %w", errSecret)
		}
		jwtCfg.Secret = secret
		log.Warn("jwt secret not configured, using an ephemeral secret; tokens will not survive restarts")
	}

	uploadDir := config.LoadUploadDir(configPath)
	if errMkdir := os.MkdirAll(uploadDir, 0755); errMkdir != nil {
		return fmt.Errorf("create upload dir: %w", errMkdir)
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(api.CORSMiddleware())
	api.RegisterRoutes(engine, conn, jwtCfg, uploadDir)

	addr := fmt.Sprintf(":%d", port)
	srv := &http.Server{
		Addr:    addr,
		Handler: engine,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if errShutdown := srv.Shutdown(shutdownCtx); errShutdown != nil {
			log.Errorf("server shutdown error: %v", errShutdown)
		}
	}()

	log.Infof("starting blog api on %s (uploads=%s)", addr, uploadDir)
	if errListen := srv.ListenAndServe(); errListen != nil && !errors.Is(errListen, http.ErrServerClosed) {
		return errListen
	}
	return nil
}

// EnsureAdminUser creates an active admin account when the email is not
// taken yet. Used to bootstrap the first administrator.
func EnsureAdminUser(conn *gorm.DB, nome, email, senha string) error {
	if conn == nil {
		return fmt.Errorf("ensure admin: nil connection")
	}

	var count int64
	if errCount := conn.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; errCount != nil {
		return fmt.Errorf("ensure admin: check email: %w", errCount)
	}
	if count > 0 {
		return nil
	}

	var grupo models.Grupo
	if errFind := conn.Where("nome = ?", internalsettings.GroupAdmin).First(&grupo).Error; errFind != nil {
		return fmt.Errorf("ensure admin: admin group missing: %w", errFind)
	}

	hash, errHash := security.HashPassword(senha)
	if errHash != nil {
		return fmt.Errorf("ensure admin: hash password: %w", errHash)
	}

	admin := models.User{
		Nome:        nome,
		Email:       email,
		Senha:       hash,
		GrupoID:     grupo.ID,
		Ativo:       true,
		DataCriacao: time.Now().UTC(),
	}
	if errCreate := conn.Create(&admin).Error; errCreate != nil {
		return fmt.Errorf("ensure admin: create user: %w", errCreate)
	}
	return nil
}
