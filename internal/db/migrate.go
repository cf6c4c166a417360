package db

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/topconlabs/topcon-blog/internal/models"
	internalsettings "github.com/topconlabs/topcon-blog/internal/settings"
	"gorm.io/gorm"
)

// Migrate applies the schema and seeds the fixed role groups.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}

	if errAutoMigrate := conn.AutoMigrate(
		&models.Grupo{},
		&models.User{},
		&models.Postagem{},
		&models.Setting{},
	); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}

	if errSeed := ensureDefaultGroups(conn); errSeed != nil {
		return errSeed
	}
	if errSeed := ensureSiteNameSetting(conn); errSeed != nil {
		return errSeed
	}
	return nil
}

// ensureDefaultGroups seeds the admin and usuario groups when missing.
// Registration fails closed without the usuario group, so this runs on
// every startup and is idempotent.
func ensureDefaultGroups(conn *gorm.DB) error {
	seeds := []models.Grupo{
		{Nome: internalsettings.GroupAdmin, Descricao: "Administradores do sistema"},
		{Nome: internalsettings.GroupUser, Descricao: "Usuários padrão do sistema"},
	}
	for _, seed := range seeds {
		var existing models.Grupo
		errFind := conn.Where("nome = ?", seed.Nome).First(&existing).Error
		if errFind == nil {
			continue
		}
		if !errors.Is(errFind, gorm.ErrRecordNotFound) {
			return fmt.Errorf("db: query group %q: %w", seed.Nome, errFind)
		}
		if errCreate := conn.Create(&seed).Error; errCreate != nil {
			return fmt.Errorf("db: seed group %q: %w", seed.Nome, errCreate)
		}
	}
	return nil
}

// ensureSiteNameSetting seeds the SITE_NAME setting when missing.
func ensureSiteNameSetting(conn *gorm.DB) error {
	var existing models.Setting
	errFind := conn.Where("key = ?", internalsettings.SiteNameKey).First(&existing).Error
	if errFind == nil {
		return nil
	}
	if !errors.Is(errFind, gorm.ErrRecordNotFound) {
		return fmt.Errorf("db: query SITE_NAME setting: %w", errFind)
	}

	payload, errMarshal := json.Marshal(internalsettings.DefaultSiteName)
	if errMarshal != nil {
		return fmt.Errorf("db: marshal SITE_NAME setting: %w", errMarshal)
	}
	setting := models.Setting{
		Key:       internalsettings.SiteNameKey,
		Value:     payload,
		UpdatedAt: time.Now().UTC(),
	}
	if errCreate := conn.Create(&setting).Error; errCreate != nil {
		return fmt.Errorf("db: create SITE_NAME setting: %w", errCreate)
	}
	return nil
}
