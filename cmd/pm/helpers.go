package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zulandar/processmap/internal/config"
	"github.com/zulandar/processmap/internal/db"
	"github.com/zulandar/processmap/internal/models"
	"github.com/zulandar/processmap/internal/process"
	"gorm.io/gorm"
)

const defaultConfigPath = "processmap.yaml"

func connectFromConfig(configPath string) (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return nil, nil, err
	}

	return cfg, gormDB, nil
}

// actorFor resolves the user a CLI write is attributed to. An empty email
// falls back to the first configured admin.
func actorFor(ctx context.Context, gormDB *gorm.DB, cfg *config.Config, email string) (process.Actor, error) {
	if email == "" {
		email = cfg.FirstAdmin()
	}
	if email == "" {
		return process.Actor{}, fmt.Errorf("no --as user given and no ADMIN in config")
	}
	var user models.User
	err := gormDB.WithContext(ctx).Where("email = ?", strings.ToLower(email)).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return process.Actor{}, fmt.Errorf("user %q not found, run 'pm db init' or 'pm user add'", email)
	}
	if err != nil {
		return process.Actor{}, fmt.Errorf("look up user %q: %w", email, err)
	}
	return process.Actor{UserID: user.ID, Role: user.Role}, nil
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
