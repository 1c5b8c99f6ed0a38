package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/yigit/applicant-wizard/internal/app/migrations"
	"github.com/yigit/applicant-wizard/internal/bootstrap"
	"github.com/yigit/applicant-wizard/internal/db"
	"github.com/yigit/applicant-wizard/internal/pkg/logger"
	"github.com/yigit/applicant-wizard/internal/server"
)

// @title Applicant Wizard API
// @version 1.0
// @description Multi-step applicant profile wizard with listing and detail views
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Wizard session token returned by POST /wizard/sessions

func main() {
	app := &cli.App{
		Name:  "wizard-api",
		Usage: "applicant profile wizard service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "configs/config.yaml",
				Usage:   "path to the YAML configuration file",
				EnvVars: []string{"CONFIG_PATH"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API",
				Action: serve,
			},
			{
				Name:  "migrate",
				Usage: "apply session store migrations and exit",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "dir",
						Usage: "read migrations from this directory instead of the embedded set",
					},
				},
				Action: migrate,
			},
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error().Err(err).Msg("Application failed")
		os.Exit(1)
	}
}

func serve(c *cli.Context) error {
	srv, err := server.NewServer(c.Context, c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	// Run blocks until a shutdown signal arrives
	if err := srv.Run(); err != nil {
		return err
	}
	logger.Info().Msg("Application finished gracefully.")
	return nil
}

func migrate(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(c.String("config"))
	if err != nil {
		return err
	}

	database, err := db.NewPostgresDB(ctx, cfg, lgr)
	if err != nil {
		return err
	}
	defer database.Close()

	if dir := c.String("dir"); dir != "" {
		return migrations.NewMigrator(database.Pool, lgr).MigrateFromDirectory(ctx, dir)
	}
	return bootstrap.RunMigrations(ctx, database.Pool, lgr)
}
