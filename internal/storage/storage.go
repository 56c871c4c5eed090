package storage

import (
	"log"

	"github.com/augustos0204/room-stream-api/internal/config"
)

// New selects the repository backend from configuration: REDIS_URL set means
// the shared redis backend, otherwise in-process volatile storage.
func New(cfg *config.Config) RoomRepository {
	if cfg.RedisURL != "" {
		repo, err := NewRedisRepository(cfg.RedisURL)
		if err != nil {
			log.Fatalf("storage: invalid REDIS_URL: %v", err)
		}
		log.Println("storage: using redis backend")
		return repo
	}
	log.Println("storage: using in-memory backend (REDIS_URL not configured)")
	return NewMemoryRepository()
}
