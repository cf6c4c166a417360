package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/topconlabs/topcon-blog/internal/auth"
	"github.com/topconlabs/topcon-blog/internal/config"
	"github.com/topconlabs/topcon-blog/internal/http/api/handlers"
	"github.com/topconlabs/topcon-blog/internal/models"
	"github.com/topconlabs/topcon-blog/internal/security"
	internalsettings "github.com/topconlabs/topcon-blog/internal/settings"
	"gorm.io/gorm"
)

// RegisterRoutes registers all API routes, middleware, and handlers.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, jwtCfg config.JWTConfig, uploadDir string) {
	if r == nil || db == nil {
		return
	}

	healthHandler := handlers.NewHealthHandler(db)
	r.GET("/healthz", healthHandler.Healthz)

	settingHandler := handlers.NewSettingHandler(db)
	r.GET("/config/site", settingHandler.Site)

	authService := auth.NewService(db, jwtCfg)
	authHandler := handlers.NewAuthHandler(authService)
	authGroup := r.Group("/auth")
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/logout", AuthRequired(db, jwtCfg), authHandler.Logout)

	postHandler := handlers.NewPostHandler(db)
	posts := r.Group("/posts")
	posts.GET("", postHandler.List)
	posts.GET("/:id", postHandler.Get)
	posts.POST("", AuthRequired(db, jwtCfg), postHandler.Create)
	posts.PUT("/:id", AuthRequired(db, jwtCfg), postHandler.Update)
	posts.DELETE("/:id", AuthRequired(db, jwtCfg), postHandler.Delete)

	userHandler := handlers.NewUserHandler(db)
	users := r.Group("/users")
	users.Use(AuthRequired(db, jwtCfg))
	users.Use(AdminRequired())
	users.GET("", userHandler.List)
	users.GET("/groups", userHandler.Groups)
	users.GET("/:id", userHandler.Get)
	users.POST("", userHandler.Create)
	users.PUT("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete)

	imageHandler := handlers.NewImageHandler(uploadDir)
	images := r.Group("/images")
	images.Use(AuthRequired(db, jwtCfg))
	images.POST("/upload", imageHandler.Upload)

	if uploadDir != "" {
		r.Static("/uploads", uploadDir)
	}
}

// AuthRequired validates bearer tokens and loads the caller into the
// request context. The failure reason is never surfaced to the client.
func AuthRequired(db *gorm.DB, jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Não autorizado"})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Não autorizado"})
			return
		}
		token = strings.TrimSpace(token)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Não autorizado"})
			return
		}

		claims, errJWT := security.ParseUserToken(jwtCfg, token)
		if errJWT != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Não autorizado"})
			return
		}

		var user models.User
		if errFind := db.WithContext(c.Request.Context()).First(&user, claims.UserID()).Error; errFind != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Não autorizado"})
			return
		}
		if !user.Ativo {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": auth.MsgUserDisabled})
			return
		}

		c.Set(handlers.CtxUserID, user.ID)
		c.Set(handlers.CtxUserRole, claims.Role)
		c.Next()
	}
}

// AdminRequired rejects callers whose role claim is not admin.
// Runs after AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get(handlers.CtxUserRole)
		if role != internalsettings.GroupAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "Acesso negado"})
			return
		}
		c.Next()
	}
}

// CORSMiddleware enables permissive CORS for the SPA client.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
