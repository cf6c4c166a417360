package app

import (
	"github.com/topconlabs/topcon-blog/internal/config"
	"github.com/topconlabs/topcon-blog/internal/db"
)

// BootstrapAdmin opens the database, migrates, and ensures the admin
// account exists. Used by the create-admin command.
func BootstrapAdmin(cfg config.AppConfig, nome, email, senha string) error {
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
	return EnsureAdminUser(conn, nome, email, senha)
}
