package main

import (
	"database/sql"
	"fmt"
	"time"

	"expense_tracker/internal/config"
	"expense_tracker/internal/logger"
	"expense_tracker/internal/repository"
	"expense_tracker/internal/repository/db"
	"expense_tracker/internal/service"

	"github.com/spf13/cobra"
)

// app holds what every subcommand needs after config is loaded.
type app struct {
	configFile string
	cfg        *config.Config
	log        *logger.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "expense-tracker",
		Short:         "Personal expense tracker",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "path to config file (default configs/config.yml)")

	root.AddCommand(
		newServeCmd(a),
		newMigrateCmd(a),
		newAddUserCmd(a),
		newPasswdCmd(a),
		newNormalizeCmd(a),
	)
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return fmt.Errorf("error reading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = log
	return nil
}

// openDB initializes the SQLite database, applying pending migrations.
func (a *app) openDB() (*sql.DB, error) {
	conn, err := db.InitDB(a.cfg.DB.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to init sqlite: %w", err)
	}
	return conn, nil
}

// services builds the service layer over conn.
func (a *app) services(conn *sql.DB) (*service.Service, *time.Location, error) {
	loc, err := a.cfg.Location()
	if err != nil {
		return nil, nil, err
	}
	svc := service.NewService(repository.NewRepository(conn), service.Options{
		SigningKey:   a.cfg.Auth.SigningKey,
		TokenTTL:     a.cfg.Auth.TokenTTL,
		Location:     loc,
		CurrencyCode: a.cfg.App.CurrencyCode,
	})
	return svc, loc, nil
}

func (a *app) closeDB(conn *sql.DB) {
	if err := conn.Close(); err != nil {
		a.log.Errorw("failed to close sqlite", "err", err)
	}
}
