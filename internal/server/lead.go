package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	leaddomain "github.com/smallbiznis/dealdesk/internal/lead/domain"
)

type createLeadRequest struct {
	Name     string         `json:"name"`
	Company  string         `json:"company"`
	Email    string         `json:"email"`
	Country  string         `json:"country"`
	Currency string         `json:"currency"`
	TaxID    *string        `json:"tax_id"`
	Metadata map[string]any `json:"metadata"`
}

func (s *Server) CreateLead(c *gin.Context) {
	var req createLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.leadSvc.Create(c.Request.Context(), leaddomain.CreateLeadRequest{
		Name:     req.Name,
		Company:  req.Company,
		Email:    req.Email,
		Country:  req.Country,
		Currency: req.Currency,
		TaxID:    req.TaxID,
		Metadata: req.Metadata,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListLeads(c *gin.Context) {
	var query struct {
		Name      string `form:"name"`
		Country   string `form:"country"`
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

	resp, err := s.leadSvc.List(c.Request.Context(), leaddomain.ListLeadRequest{
		Name:      strings.TrimSpace(query.Name),
		Country:   strings.TrimSpace(query.Country),
		PageToken: strings.TrimSpace(query.PageToken),
		PageSize:  pageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Leads, "page_info": resp.PageInfo})
}

func (s *Server) GetLeadByID(c *gin.Context) {
	resp, err := s.leadSvc.GetByID(c.Request.Context(), leaddomain.GetLeadRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isLeadValidationError(err error) bool {
	switch {
	case errors.Is(err, leaddomain.ErrInvalidOrganization),
		errors.Is(err, leaddomain.ErrInvalidName),
		errors.Is(err, leaddomain.ErrInvalidEmail),
		errors.Is(err, leaddomain.ErrInvalidCurrency),
		errors.Is(err, leaddomain.ErrInvalidID):
		return true
	default:
		return false
	}
}
