package domain

import (
	"errors"

	taxdomain "github.com/smallbiznis/dealdesk/internal/tax/domain"
)

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidName         = errors.New("invalid_name")
	ErrNotFound            = errors.New("not_found")
	ErrInvalidStatus       = errors.New("invalid_status")

	ErrMissingCustomer   = errors.New("missing_customer")
	ErrSaveFailed        = errors.New("save_failed")
	ErrSaveInProgress    = errors.New("save_in_progress")
	ErrProductRequired   = errors.New("product_required")
	ErrProductInactive   = errors.New("product_inactive")
	ErrInvalidUnitPrice  = errors.New("invalid_unit_price")
	ErrInvalidQuantity   = errors.New("invalid_quantity")
	ErrDraftNotFound     = errors.New("draft_not_found")
	ErrInvalidValidUntil = errors.New("invalid_valid_until")

	ErrInvalidTaxRate = taxdomain.ErrInvalidTaxRate
)
