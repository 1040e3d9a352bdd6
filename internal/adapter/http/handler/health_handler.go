package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"ledger-api/internal/core/ports"

	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 2 * time.Second

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// HealthCheck handles GET /health. All checkers are pinged concurrently,
// each bounded by healthCheckTimeout; one failure degrades the whole report.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()

		var (
			mu         sync.Mutex
			wg         sync.WaitGroup
			deps       = make(map[string]dependencyStatus, len(checkers))
			allHealthy = true
		)
		for _, checker := range checkers {
			wg.Add(1)
			go func(checker ports.HealthChecker) {
				defer wg.Done()
				err := checker.Ping(ctx)

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					deps[checker.Name()] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
					allHealthy = false
					return
				}
				deps[checker.Name()] = dependencyStatus{Status: "healthy"}
			}(checker)
		}
		wg.Wait()

		status := "healthy"
		httpCode := http.StatusOK
		if !allHealthy {
			status = "degraded"
			httpCode = http.StatusServiceUnavailable
		}

		c.JSON(httpCode, gin.H{
			"status":       status,
			"dependencies": deps,
		})
	}
}
