package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/m3rciful/applybot/core/bootstrap"
	"github.com/m3rciful/applybot/core/cmd"
	coreconfig "github.com/m3rciful/applybot/core/config"
	"github.com/m3rciful/applybot/internal/store"
	"github.com/m3rciful/applybot/internal/tgbot"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("env file: %v", err)
	}

	err := cmd.Run(cmd.Options{
		ConfigEnvVar: "APPLYBOT_CONFIG",
		Bootstrap:    bootstrapApp,
	})
	if err != nil {
		log.Fatal(err)
	}
}

func bootstrapApp(ctx context.Context, cfg *coreconfig.Config) (cmd.TelegramApp, error) {
	res, err := bootstrap.Run(ctx, bootstrap.Options[store.Store]{
		Config: cfg,
		OpenStorage: func(context.Context, *coreconfig.Config) (store.Store, error) {
			return store.NewMemory(), nil
		},
	})
	if err != nil {
		return nil, err
	}
	return tgbot.New(cfg, res.Storage)
}
