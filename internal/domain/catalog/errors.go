package catalog

import "errors"

var (
	ErrBranchNotFound    = errors.New("catalog: branch not found")
	ErrPriceListNotFound = errors.New("catalog: price list not found")
	ErrCategoryNotFound  = errors.New("catalog: category not found")
	ErrBrandNotFound     = errors.New("catalog: brand not found")
	ErrProductNotFound   = errors.New("catalog: product not found")

	ErrExternalIDAssigned = errors.New("catalog: external ID already assigned")
)
