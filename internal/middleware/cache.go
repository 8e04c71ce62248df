package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	responseMetaKey = "response_meta"
	cacheHitKey     = "cache_hit"
)

// WithResponseMeta initialises response metadata storage and records processing time.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Set(responseMetaKey, map[string]interface{}{})
		c.Next()
		meta := ensureMeta(c)
		if _, exists := meta["processing_time_ms"]; !exists {
			meta["processing_time_ms"] = time.Since(start).Milliseconds()
		}
	}
}

// SetCacheHit records whether the response was served from cache.
func SetCacheHit(c *gin.Context, hit bool) {
	SetMeta(c, cacheHitKey, hit)
}

// SetMeta stores one metadata entry for the envelope.
func SetMeta(c *gin.Context, key string, value interface{}) {
	ensureMeta(c)[key] = value
}

// ExtractMeta returns the metadata map stored on the context.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	if meta, exists := c.Get(responseMetaKey); exists {
		if typed, ok := meta.(map[string]interface{}); ok {
			return typed
		}
	}
	return nil
}

func ensureMeta(c *gin.Context) map[string]interface{} {
	if meta := ExtractMeta(c); meta != nil {
		return meta
	}
	newMeta := make(map[string]interface{})
	if c != nil {
		c.Set(responseMetaKey, newMeta)
	}
	return newMeta
}
