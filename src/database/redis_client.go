package database

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// InitRedis returns nil when uri is empty or the server does not answer.
// Callers treat a nil client as development mode.
func InitRedis(uri string) *redis.Client {
	if uri == "" {
		log.Println("⚠️ REDIS_URI not set. Redis features are disabled.")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     uri, // เช่น localhost:6379
		Password: "",
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Println("⚠️ Failed to connect Redis:", err)
		_ = client.Close()
		return nil
	}

	log.Println("✅ Redis connected successfully")
	return client
}
