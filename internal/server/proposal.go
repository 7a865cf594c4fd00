package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	proposaldomain "github.com/smallbiznis/dealdesk/internal/proposal/domain"
)

type updateProposalStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) ListProposals(c *gin.Context) {
	var query struct {
		Status    string `form:"status"`
		LeadID    string `form:"lead_id"`
		PageToken string `form:"page_token"`
		PageSize  string `form:"page_size"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	pageSize, err := parsePageSize(query.PageSize)
	if err != nil {
		AbortWithError(c, newValidationError("page_size", "invalid_page_size", "invalid page size"))
		return
	}

	resp, err := s.proposalSvc.List(c.Request.Context(), proposaldomain.ListRequest{
		Status:    query.Status,
		LeadID:    query.LeadID,
		PageToken: strings.TrimSpace(query.PageToken),
		PageSize:  pageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Proposals, "page_info": resp.PageInfo})
}

func (s *Server) GetProposalByID(c *gin.Context) {
	resp, err := s.proposalSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateProposalStatus(c *gin.Context) {
	var req updateProposalStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.proposalSvc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SendProposal(c *gin.Context) {
	resp, err := s.proposalSvc.Send(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DownloadProposalPDF(c *gin.Context) {
	rendered, err := s.proposalSvc.RenderPDF(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, rendered.FileName))
	c.Data(http.StatusOK, "application/pdf", rendered.Content)
}

func isProposalValidationError(err error) bool {
	switch {
	case errors.Is(err, proposaldomain.ErrInvalidOrganization),
		errors.Is(err, proposaldomain.ErrInvalidID),
		errors.Is(err, proposaldomain.ErrInvalidName),
		errors.Is(err, proposaldomain.ErrInvalidStatus),
		errors.Is(err, proposaldomain.ErrMissingCustomer),
		errors.Is(err, proposaldomain.ErrProductRequired),
		errors.Is(err, proposaldomain.ErrProductInactive),
		errors.Is(err, proposaldomain.ErrInvalidUnitPrice),
		errors.Is(err, proposaldomain.ErrInvalidQuantity),
		errors.Is(err, proposaldomain.ErrInvalidValidUntil),
		errors.Is(err, proposaldomain.ErrInvalidTaxRate):
		return true
	default:
		return false
	}
}
