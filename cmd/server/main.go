package main

import (
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/hikari-signage/hikari/internal/broadcast"
	"github.com/hikari-signage/hikari/internal/config"
	"github.com/hikari-signage/hikari/internal/db"
	"github.com/hikari-signage/hikari/internal/engine"
	"github.com/hikari-signage/hikari/internal/metrics"
	redisclient "github.com/hikari-signage/hikari/internal/redis"
	"github.com/hikari-signage/hikari/internal/transport/mqttbridge"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// initialize PostgreSQL
	if err := db.Init(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("db init failed")
	}

	// run pending migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("db migrate failed")
	}

	if cfg.RedisAddress != "" {
		redisclient.InitRedis(cfg.RedisAddress, cfg.RedisUsername, cfg.RedisPassword)
	}

	m := metrics.New()
	store := db.NewStore()
	channel := broadcast.NewChannel(m)

	// catch-up runs in the background; the tick starts immediately
	eng := engine.New(store, channel, cfg.CatchWindow, m)
	if err := eng.Start(cfg.TickSpec); err != nil {
		log.Fatal().Err(err).Msg("schedule engine failed to start")
	}
	defer eng.Stop()

	if cfg.MQTTBrokerURL != "" {
		bridge, err := mqttbridge.Start(cfg.MQTTBrokerURL, channel)
		if err != nil {
			log.Fatal().Err(err).Msg("MQTT bridge failed to start")
		}
		defer bridge.Close()
	}

	r := gin.Default()
	RegisterRoutes(r, cfg, store, channel, m)

	log.Info().Str("address", cfg.ServerAddress).Msg("listening")
	if err := r.Run(cfg.ServerAddress); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
