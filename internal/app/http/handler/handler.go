package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"adminhub/internal/domain/audit"
	"adminhub/internal/domain/contract"
	"adminhub/internal/domain/lead"
	"adminhub/internal/domain/notification"
	"adminhub/internal/domain/webhook"
)

type Handler struct {
	LeadSvc         lead.Service
	ContractSvc     contract.Service
	NotificationSvc notification.Service
	AuditSvc        audit.Service
	WebhookSvc      webhook.Service
	Log             *zap.Logger
}

func New(
	leadSvc lead.Service,
	contractSvc contract.Service,
	notificationSvc notification.Service,
	auditSvc audit.Service,
	webhookSvc webhook.Service,
	log *zap.Logger,
) *Handler {
	return &Handler{
		LeadSvc:         leadSvc,
		ContractSvc:     contractSvc,
		NotificationSvc: notificationSvc,
		AuditSvc:        auditSvc,
		WebhookSvc:      webhookSvc,
		Log:             log,
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
