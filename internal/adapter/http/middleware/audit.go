package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"ledger-api/internal/core/domain"
	"ledger-api/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type auditRoute struct {
	method string
	route  string
}

type auditTarget struct {
	action       domain.AuditAction
	resourceType string
	param        string // route parameter naming the resource, if any
}

var auditedRoutes = map[auditRoute]auditTarget{
	{http.MethodPost, "/api/v1/auth/register"}:           {domain.AuditActionRegister, "user", ""},
	{http.MethodPost, "/api/v1/auth/login"}:              {domain.AuditActionLogin, "session", ""},
	{http.MethodPost, "/api/v1/transfers"}:               {domain.AuditActionTransfer, "transaction", ""},
	{http.MethodPost, "/api/v1/accounts"}:                {domain.AuditActionCreateAccount, "account", ""},
	{http.MethodDelete, "/api/v1/accounts/:id"}:          {domain.AuditActionDeleteAccount, "account", "id"},
	{http.MethodDelete, "/api/v1/admin/users/:username"}: {domain.AuditActionDeleteUser, "user", "username"},
}

// AuditLog creates an audit middleware that records successful write operations.
// Handlers may name the affected resource with c.Set(CtxResourceID, ...).
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}

		target, ok := auditedRoutes[auditRoute{c.Request.Method, c.FullPath()}]
		if !ok {
			return
		}

		resourceID := c.GetString(CtxResourceID)
		if resourceID == "" && target.param != "" {
			resourceID = c.Param(target.param)
		}

		var actorID *string
		if actor := ActorFrom(c); actor != nil {
			id := actor.ID
			actorID = &id
		}

		details, _ := json.Marshal(map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"request_id": c.GetString(CtxRequestID),
		})

		auditSvc.Log(c.Request.Context(), &domain.AuditLog{
			ID:           uuid.New(),
			ActorID:      actorID,
			Action:       target.action,
			ResourceType: target.resourceType,
			ResourceID:   resourceID,
			IPAddress:    c.ClientIP(),
			Details:      string(details),
			CreatedAt:    time.Now().UTC(),
		})
	}
}
