package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health reports liveness of the API and its backing stores. A degraded
// postgres or redis turns the endpoint 503 so the balancer drains the
// instance; the payload never exposes connection details.
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		estado := http.StatusOK

		postgres := "ok"
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			postgres = "down"
			estado = http.StatusServiceUnavailable
		}

		cache := "ok"
		if err := rdb.Ping(ctx).Err(); err != nil {
			cache = "down"
			estado = http.StatusServiceUnavailable
		}

		c.JSON(estado, gin.H{
			"servicio": "sucursalpos",
			"postgres": postgres,
			"redis":    cache,
		})
	}
}
