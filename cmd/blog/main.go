package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/topconlabs/topcon-blog/internal/app"
	"github.com/topconlabs/topcon-blog/internal/config"

	log "github.com/sirupsen/logrus"
)

// main runs the CLI entrypoint and exits on unrecoverable command errors.
func main() {
	if errRun := run(context.Background(), os.Args[1:]); errRun != nil {
		log.WithError(errRun).Error("command failed")
		os.Exit(1)
	}
}

// run parses flags, loads config, and starts the server or a subcommand.
func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("blog", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "config file path (or env CONFIG_PATH)")
	port := fs.Int("port", 8080, "server port")
	migrateOnly := fs.Bool("migrate", false, "run database migrations and exit")
	adminNome := fs.String("admin-name", "", "bootstrap admin display name (with -admin-email and -admin-password)")
	adminEmail := fs.String("admin-email", "", "bootstrap admin email")
	adminSenha := fs.String("admin-password", "", "bootstrap admin password")
	if errParse := fs.Parse(args); errParse != nil {
		return errParse
	}

	if errValidate := validatePort(*port); errValidate != nil {
		return errValidate
	}

	appCfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}
	if strings.TrimSpace(*cfgPath) != "" {
		appCfg.ConfigPath = config.ResolveConfigPath(*cfgPath)
	}

	if *migrateOnly {
		return app.Migrate(ctx, appCfg)
	}

	if strings.TrimSpace(*adminEmail) != "" || strings.TrimSpace(*adminSenha) != "" {
		if strings.TrimSpace(*adminEmail) == "" || strings.TrimSpace(*adminSenha) == "" {
			return fmt.Errorf("both -admin-email and -admin-password are required")
		}
		nome := strings.TrimSpace(*adminNome)
		if nome == "" {
			nome = "Administrador"
		}
		if errAdmin := app.BootstrapAdmin(appCfg, nome, *adminEmail, *adminSenha); errAdmin != nil {
			return errAdmin
		}
		log.Infof("admin account ensured for %s", *adminEmail)
	}

	return app.RunServer(ctx, appCfg, *port)
}

func validatePort(port int) error {
	if port <= 0 || port > 65535 {
		return fmt.Errorf("invalid port: %d", port)
	}
	return nil
}
