package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/topconlabs/topcon-blog/internal/models"
	internalsettings "github.com/topconlabs/topcon-blog/internal/settings"
	"gorm.io/gorm"
)

// SettingHandler exposes public site configuration.
type SettingHandler struct {
	db *gorm.DB
}

// NewSettingHandler constructs a SettingHandler.
func NewSettingHandler(db *gorm.DB) *SettingHandler {
	return &SettingHandler{db: db}
}

// Site returns the configured site name for the SPA shell.
func (h *SettingHandler) Site(c *gin.Context) {
	siteName := internalsettings.DefaultSiteName

	var setting models.Setting
	errFind := h.db.WithContext(c.Request.Context()).
		Where("key = ?", internalsettings.SiteNameKey).First(&setting).Error
	if errFind == nil {
		var value string
		if errUnmarshal := json.Unmarshal(setting.Value, &value); errUnmarshal == nil && value != "" {
			siteName = value
		}
	}

	c.JSON(http.StatusOK, gin.H{"siteName": siteName})
}
