package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"adminhub/internal/app/dto"
	"adminhub/internal/domain/audit"
	"adminhub/internal/domain/notification"
)

func notificationDTO(n notification.Notification) dto.Notification {
	return dto.Notification{
		ID:            n.ID,
		RecipientType: string(n.RecipientType),
		RecipientID:   n.RecipientID,
		ClientID:      n.ClientID,
		Type:          n.Type,
		Title:         n.Title,
		Message:       n.Message,
		IsRead:        n.IsRead,
		Priority:      string(n.Priority),
		ActionURL:     n.ActionURL,
		Metadata:      n.Metadata,
		CreatedAt:     n.CreatedAt,
		ReadAt:        n.ReadAt,
	}
}

func (h *Handler) NotificationList(c *gin.Context) {
	limit, ok := h.queryInt(c, "limit")
	if !ok {
		return
	}
	unread, err := strconv.ParseBool(c.DefaultQuery("unread", "false"))
	if err != nil {
		h.badRequest(c, "unread must be a boolean")
		return
	}

	items, err := h.NotificationSvc.List(c.Request.Context(), notification.Filter{
		RecipientType: notification.RecipientType(c.DefaultQuery("recipient", "admin")),
		ClientID:      c.Query("client_id"),
		UnreadOnly:    unread,
		Limit:         limit,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]dto.Notification, 0, len(items))
	for _, n := range items {
		resp = append(resp, notificationDTO(n))
	}
	c.JSON(http.StatusOK, gin.H{"notifications": resp})
}

func (h *Handler) NotificationRead(c *gin.Context) {
	n, err := h.NotificationSvc.MarkRead(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notification": notificationDTO(n)})
}

func (h *Handler) NotificationUnreadCount(c *gin.Context) {
	count, err := h.NotificationSvc.UnreadCount(
		c.Request.Context(),
		notification.RecipientType(c.DefaultQuery("recipient", "admin")),
		c.Query("client_id"),
	)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": count})
}

func (h *Handler) AuditList(c *gin.Context) {
	limit, ok := h.queryInt(c, "limit")
	if !ok {
		return
	}

	entries, err := h.AuditSvc.List(c.Request.Context(), audit.Filter{
		ResourceType: c.Query("resource_type"),
		ResourceID:   c.Query("resource_id"),
		ActorID:      c.Query("actor_id"),
		Limit:        limit,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]dto.AuditEntry, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, dto.AuditEntry{
			ID:           e.ID,
			ActorID:      e.ActorID,
			ActorName:    e.ActorName,
			Action:       string(e.Action),
			ResourceType: e.ResourceType,
			ResourceID:   e.ResourceID,
			Details:      e.Details,
			IPAddress:    e.IPAddress,
			CreatedAt:    e.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"audit_logs": resp})
}
