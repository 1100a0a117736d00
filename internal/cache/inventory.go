package cache

import (
	"context"
	"fmt"
	"time"

	"driverquote/internal/middleware"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const ContactKeyPrefix = "contact:%d"

const ContactTTL = 10 * time.Minute

// GenerationTTL bounds how long an invalidation token is kept. It only has to
// outlive one lookup-fetch-fill round trip.
const GenerationTTL = time.Hour

func ContactKey(id uint) string {
	return fmt.Sprintf(ContactKeyPrefix, id)
}

// GenerationKey holds the invalidation token of key.
func GenerationKey(key string) string {
	return key + ":gen"
}

// Invalidate drops key and rotates its generation so in-flight fills of key
// are discarded.
func Invalidate(ctx context.Context, key string) {
	if client == nil {
		return
	}
	_, err := client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, GenerationKey(key), uuid.NewString(), GenerationTTL)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		middleware.Logger.WarnContext(ctx, "cache invalidation failed", "key", key, "error", err)
	}
}

func InvalidateContact(ctx context.Context, id uint) {
	Invalidate(ctx, ContactKey(id))
}
