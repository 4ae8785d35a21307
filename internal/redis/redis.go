package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var Rdb *redis.Client

func InitRedis(redisAddress string, redisUsername string, redisPassword string) {
	Rdb = redis.NewClient(&redis.Options{
		Addr:     redisAddress,
		Username: redisUsername,
		Password: redisPassword,
		DB:       0,
	})
}

// MarkDisplaySeen refreshes the display's presence key. The key expires on its
// own, so a display that stops sending keep-alives drops off the presence set
// without any cleanup pass.
func MarkDisplaySeen(ctx context.Context, code string, ttl time.Duration) {
	if Rdb == nil {
		return
	}
	if err := Rdb.Set(ctx, "presence:"+code, time.Now().Unix(), ttl).Err(); err != nil {
		log.Error().Err(err).Str("display", code).Msg("failed to refresh presence key")
	}
}

// SetPairingCode stores a short-lived pairing code for the device.
func SetPairingCode(ctx context.Context, code, deviceID string, ttl time.Duration) error {
	if Rdb == nil {
		return errors.New("redis is not configured")
	}
	return Rdb.Set(ctx, "pairing:"+code, deviceID, ttl).Err()
}
