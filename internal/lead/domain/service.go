package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/dealdesk/pkg/db/pagination"
)

type ListLeadRequest struct {
	PageToken string
	PageSize  int32
	Name      string
	Country   string
}

type ListLeadFilter struct {
	Name    string
	Country string
}

type ListLeadResponse struct {
	pagination.PageInfo
	Leads []Lead `json:"leads"`
}

type CreateLeadRequest struct {
	Name     string         `json:"name"`
	Company  string         `json:"company"`
	Email    string         `json:"email"`
	Country  string         `json:"country"`
	Currency string         `json:"currency"`
	TaxID    *string        `json:"tax_id"`
	Metadata map[string]any `json:"metadata"`
}

type GetLeadRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateLeadRequest) (Lead, error)
	List(context.Context, ListLeadRequest) (ListLeadResponse, error)
	GetByID(context.Context, GetLeadRequest) (Lead, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidEmail        = errors.New("invalid_email")
	ErrInvalidCurrency     = errors.New("invalid_currency")
	ErrInvalidID           = errors.New("invalid_id")
	ErrNotFound            = errors.New("not_found")
)
