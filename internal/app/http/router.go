package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"adminhub/internal/app/http/handler"
	"adminhub/internal/app/http/middleware"
)

// NewRouter wires the admin API. gatherer backs /metrics; nil serves the
// default registry.
func NewRouter(h *handler.Handler, gatherer prometheus.Gatherer, log *zap.Logger) *gin.Engine {
	r := gin.New()

	r.Use(
		middleware.ZapLogger(log),
		middleware.ZapRecovery(log),
		middleware.Actor(),
	)

	var metrics http.Handler = promhttp.Handler()
	if gatherer != nil {
		metrics = promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
	}

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(metrics))

	r.POST("/leads", h.LeadCreate)
	r.POST("/leads/:id/convert", h.LeadConvert)

	r.POST("/contracts", h.ContractCreate)
	r.POST("/contracts/:id/send", h.ContractSend)
	r.POST("/contracts/:id/sign", h.ContractSign)

	r.GET("/notifications", h.NotificationList)
	r.GET("/notifications/unread-count", h.NotificationUnreadCount)
	r.POST("/notifications/:id/read", h.NotificationRead)

	r.GET("/audit-logs", h.AuditList)

	r.GET("/webhooks", h.WebhookList)
	r.POST("/webhooks", h.WebhookCreate)
	r.DELETE("/webhooks/:id", h.WebhookDelete)
	r.GET("/webhooks/:id/deliveries", h.WebhookDeliveries)

	return r
}
