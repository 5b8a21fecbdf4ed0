package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"adminhub/internal/app/dto"
	"adminhub/internal/domain/webhook"
)

func endpointDTO(e webhook.Endpoint) dto.WebhookEndpoint {
	types := make([]string, 0, len(e.EventTypes))
	for _, t := range e.EventTypes {
		types = append(types, t.String())
	}
	return dto.WebhookEndpoint{
		ID:          e.ID,
		URL:         e.URL,
		EventTypes:  types,
		Description: e.Description,
		Active:      e.Active,
		CreatedAt:   e.CreatedAt,
	}
}

func (h *Handler) WebhookList(c *gin.Context) {
	eps, err := h.WebhookSvc.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]dto.WebhookEndpoint, 0, len(eps))
	for _, e := range eps {
		resp = append(resp, endpointDTO(e))
	}
	c.JSON(http.StatusOK, gin.H{"webhooks": resp})
}

func (h *Handler) WebhookCreate(c *gin.Context) {
	var body struct {
		URL         string   `json:"url"`
		Secret      string   `json:"secret"`
		EventTypes  []string `json:"event_types"`
		Description string   `json:"description"`
	}

	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, "invalid JSON")
		return
	}

	ep, err := h.WebhookSvc.Create(c.Request.Context(), webhook.CreateInput{
		URL:         body.URL,
		Secret:      body.Secret,
		EventTypes:  body.EventTypes,
		Description: body.Description,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := endpointDTO(ep)
	resp.Secret = ep.Secret
	c.JSON(http.StatusCreated, gin.H{"webhook": resp})
}

func (h *Handler) WebhookDelete(c *gin.Context) {
	if err := h.WebhookSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) WebhookDeliveries(c *gin.Context) {
	limit, ok := h.queryInt(c, "limit")
	if !ok {
		return
	}

	items, err := h.WebhookSvc.Deliveries(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]dto.WebhookDelivery, 0, len(items))
	for _, d := range items {
		resp = append(resp, dto.WebhookDelivery{
			ID:         d.ID,
			EventType:  d.EventType.String(),
			EntityID:   d.EntityID,
			StatusCode: d.StatusCode,
			Attempts:   d.Attempts,
			Error:      d.Error,
			DurationMS: d.DurationMS,
			Succeeded:  d.Succeeded(),
			CreatedAt:  d.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"deliveries": resp})
}
