package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/studio-pms-api/pkg/middleware/requestid"
)

// MetaKey names an entry in the response envelope's meta object.
type MetaKey string

const (
	MetaCacheHit       MetaKey = "cache_hit"
	MetaProcessingTime MetaKey = "processing_time_ms"
	MetaRequestID      MetaKey = "request_id"
)

const (
	responseMetaKey = "response_meta"
	requestStartKey = "response_meta_start"
)

// ResponseMeta collects envelope metadata for the current request.
type ResponseMeta map[MetaKey]interface{}

// Export converts the metadata to the envelope's JSON shape.
func (m ResponseMeta) Export() map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}

// WithResponseMeta stamps the request start and seeds metadata with the
// request id assigned upstream.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(requestStartKey, time.Now())
		meta := ResponseMeta{}
		if id := requestid.Value(c); id != "" {
			meta[MetaRequestID] = id
		}
		c.Set(responseMetaKey, meta)
		c.Next()
	}
}

// SetMeta records one metadata entry for the current response.
func SetMeta(c *gin.Context, key MetaKey, value interface{}) {
	ensureMeta(c)[key] = value
}

// SetCacheHit records whether a view was served from cache.
func SetCacheHit(c *gin.Context, hit bool) {
	SetMeta(c, MetaCacheHit, hit)
}

// ViewMeta marks the cache outcome of a derived view and returns the
// envelope meta with the elapsed time so far.
func ViewMeta(c *gin.Context, cacheHit bool) map[string]interface{} {
	SetCacheHit(c, cacheHit)
	meta := ensureMeta(c)
	if raw, ok := c.Get(requestStartKey); ok {
		if start, ok := raw.(time.Time); ok {
			meta[MetaProcessingTime] = time.Since(start).Milliseconds()
		}
	}
	return meta.Export()
}

// ExtractMeta returns the metadata stored on the context, or nil.
func ExtractMeta(c *gin.Context) ResponseMeta {
	if c == nil {
		return nil
	}
	if raw, exists := c.Get(responseMetaKey); exists {
		if meta, ok := raw.(ResponseMeta); ok {
			return meta
		}
	}
	return nil
}

func ensureMeta(c *gin.Context) ResponseMeta {
	if meta := ExtractMeta(c); meta != nil {
		return meta
	}
	meta := ResponseMeta{}
	if c != nil {
		c.Set(responseMetaKey, meta)
	}
	return meta
}
