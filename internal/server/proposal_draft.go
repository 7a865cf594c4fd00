package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	proposaldomain "github.com/smallbiznis/dealdesk/internal/proposal/domain"
)

type selectCustomerRequest struct {
	LeadID string `json:"lead_id"`
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
}

type editTaxRateRequest struct {
	Rate *decimal.Decimal `json:"rate"`
}

// draftID reads the draft id and tags the request log with it.
func draftID(c *gin.Context) string {
	id := strings.TrimSpace(c.Param("id"))
	c.Set("draft_id", id)
	return id
}

func (s *Server) StartProposalDraft(c *gin.Context) {
	resp, err := s.draftSvc.StartDraft(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.Set("draft_id", resp.ID)

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) EditProposal(c *gin.Context) {
	resp, err := s.draftSvc.EditProposal(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.Set("draft_id", resp.ID)

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) GetProposalDraft(c *gin.Context) {
	resp, err := s.draftSvc.GetDraft(c.Request.Context(), draftID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DiscardProposalDraft(c *gin.Context) {
	if err := s.draftSvc.DiscardDraft(c.Request.Context(), draftID(c)); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) SelectProposalDraftCustomer(c *gin.Context) {
	var req selectCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.draftSvc.SelectCustomer(c.Request.Context(), draftID(c), req.LeadID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) AddProposalDraftItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.draftSvc.AddItem(c.Request.Context(), draftID(c), req.ProductID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RemoveProposalDraftItem(c *gin.Context) {
	resp, err := s.draftSvc.RemoveItem(c.Request.Context(), draftID(c), strings.TrimSpace(c.Param("item_id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ToggleProposalDraftTax(c *gin.Context) {
	resp, err := s.draftSvc.ToggleTax(c.Request.Context(), draftID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) EditProposalDraftTaxRate(c *gin.Context) {
	var req editTaxRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.Rate == nil {
		AbortWithError(c, newValidationError("rate", "required", "rate is required"))
		return
	}

	resp, err := s.draftSvc.EditTaxRate(c.Request.Context(), draftID(c), *req.Rate)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateProposalDraftDetails(c *gin.Context) {
	var req proposaldomain.UpdateDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.draftSvc.UpdateDetails(c.Request.Context(), draftID(c), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SaveProposalDraft(c *gin.Context) {
	resp, err := s.draftSvc.SaveDraft(c.Request.Context(), draftID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
