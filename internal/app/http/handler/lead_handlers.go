package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"adminhub/internal/app/dto"
	"adminhub/internal/domain/contract"
	"adminhub/internal/domain/lead"
)

func leadDTO(l lead.Lead) dto.Lead {
	return dto.Lead{
		LeadID:      l.ID,
		Name:        l.Name,
		Email:       l.Email,
		Company:     l.Company,
		Source:      l.Source,
		Status:      string(l.Status),
		ClientID:    l.ClientID,
		CreatedAt:   l.CreatedAt,
		ConvertedAt: l.ConvertedAt,
	}
}

func contractDTO(k contract.Contract) dto.Contract {
	return dto.Contract{
		ContractID:  k.ID,
		ClientID:    k.ClientID,
		Title:       k.Title,
		AmountCents: k.AmountCents,
		Status:      string(k.Status),
		CreatedAt:   k.CreatedAt,
		SentAt:      k.SentAt,
		SignedAt:    k.SignedAt,
	}
}

func (h *Handler) LeadCreate(c *gin.Context) {
	var body struct {
		LeadID  string `json:"lead_id"`
		Name    string `json:"name"`
		Email   string `json:"email"`
		Company string `json:"company"`
		Source  string `json:"source"`
	}

	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, "invalid JSON")
		return
	}

	l, err := h.LeadSvc.Create(c.Request.Context(), lead.Lead{
		ID:      body.LeadID,
		Name:    body.Name,
		Email:   body.Email,
		Company: body.Company,
		Source:  body.Source,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"lead": leadDTO(l)})
}

func (h *Handler) LeadConvert(c *gin.Context) {
	var body struct {
		ClientID string `json:"client_id"`
	}
	// The body is optional: without client_id a new client id is allocated.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			h.badRequest(c, "invalid JSON")
			return
		}
	}

	l, err := h.LeadSvc.Convert(c.Request.Context(), c.Param("id"), body.ClientID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"lead": leadDTO(l)})
}

func (h *Handler) ContractCreate(c *gin.Context) {
	var body struct {
		ContractID  string `json:"contract_id"`
		ClientID    string `json:"client_id"`
		Title       string `json:"title"`
		AmountCents int64  `json:"amount_cents"`
	}

	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, "invalid JSON")
		return
	}

	k, err := h.ContractSvc.Create(c.Request.Context(), contract.Contract{
		ID:          body.ContractID,
		ClientID:    body.ClientID,
		Title:       body.Title,
		AmountCents: body.AmountCents,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"contract": contractDTO(k)})
}

func (h *Handler) ContractSend(c *gin.Context) {
	k, err := h.ContractSvc.Send(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contract": contractDTO(k)})
}

func (h *Handler) ContractSign(c *gin.Context) {
	k, err := h.ContractSvc.Sign(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contract": contractDTO(k)})
}
