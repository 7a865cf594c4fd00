package domain

import "errors"

var ErrInvalidTaxRate = errors.New("invalid_tax_rate")
