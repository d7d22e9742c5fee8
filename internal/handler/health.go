package handler

import (
	"context"
	"net/http"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"stallsync/internal/infra"
	"stallsync/internal/model"
)

// Health returns a JSON health check response.
// Checks Firestore and Redis connectivity and reports the Google breaker
// state; an open breaker is informational, not a reason to fail the check.
func Health(fs *firestore.Client, rdb *redis.Client, googleCB *infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		fsStatus := "connected"
		iter := fs.Collection(model.ColSites).Limit(1).Documents(ctx)
		if _, err := iter.GetAll(); err != nil {
			fsStatus = "error"
		}
		iter.Stop()

		redisStatus := "connected"
		if rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		}

		status := http.StatusOK
		if fsStatus != "connected" || redisStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":             status == http.StatusOK,
			"firestore":      fsStatus,
			"redis":          redisStatus,
			"google_breaker": googleCB.State().String(),
		})
	}
}
