// Comando migrate aplica o revierte las migraciones embebidas.
//
//	go run ./cmd/migrate up
//	go run ./cmd/migrate down
package main

import (
	"os"

	"github.com/jhoicas/pos-inventario-api/internal/infrastructure/postgres"
	"github.com/jhoicas/pos-inventario-api/pkg/config"
	"github.com/jhoicas/pos-inventario-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	direction := "up"
	if len(os.Args) > 1 {
		direction = os.Args[1]
	}

	m, err := postgres.NewMigrator(cfg.DB.ConnectionString(), log.Component("migrate"))
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar migrador")
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn().Err(err).Msg("cerrar migrador")
		}
	}()

	switch direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	default:
		log.Fatal().Str("direction", direction).Msg("uso: migrate [up|down]")
	}
	if err != nil {
		log.Error().Err(err).Str("direction", direction).Msg("migración fallida")
		os.Exit(1)
	}
}
