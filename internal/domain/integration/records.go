package integration

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// The types below mirror the ERP wire format: concrete tagged records with
// explicit optional fields rather than open maps. Each carries the raw JSON
// it was decoded from, kept as an opaque blob for diagnostic replay and
// never consulted for logic.

// ExternalBranch is a branch/store record as the ERP transmits it.
type ExternalBranch struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	Description string `json:"description"`
	Address     string `json:"address"`
	City        string `json:"city"`
	Province    string `json:"province"`
	Phone       string `json:"phone"`
	Main        bool   `json:"main"`
	Active      *bool  `json:"active"`

	Raw json.RawMessage `json:"-"`
}

// ExternalPriceList is a price list record. ID 0 is conventionally the
// default list.
type ExternalPriceList struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
	Currency    string `json:"currency"`
	Default     bool   `json:"default"`
	Active      *bool  `json:"active"`

	Raw json.RawMessage `json:"-"`
}

// ExternalCategory is a category record. ParentID 0 means no parent.
type ExternalCategory struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
	ParentID    int64  `json:"parent_id"`

	Raw json.RawMessage `json:"-"`
}

// ExternalBrand is a brand record.
type ExternalBrand struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`

	Raw json.RawMessage `json:"-"`
}

// ExternalProduct is a product record. The ERP expresses the style/variant
// hierarchy only through ParentID back-references on variants; the parent
// itself may never arrive as a record of its own.
type ExternalProduct struct {
	ID          int64           `json:"id"`
	ParentID    int64           `json:"parent_id"`
	Code        string          `json:"code"`
	Barcode     string          `json:"barcode"`
	Description string          `json:"description"`
	CategoryID  int64           `json:"category_id"`
	BrandID     int64           `json:"brand_id"`
	Price       decimal.Decimal `json:"price"`
	Cost        decimal.Decimal `json:"cost"`
	VAT         decimal.Decimal `json:"vat"`
	Size        string          `json:"size"`
	Color       string          `json:"color"`
	Active      *bool           `json:"active"`

	Prices []ExternalPrice `json:"prices"`
	Stocks []ExternalStock `json:"stocks"`

	Raw json.RawMessage `json:"-"`
}

// ExternalPrice is a per-price-list price entry nested in a product record.
type ExternalPrice struct {
	PriceListID int64            `json:"price_list_id"`
	Price       decimal.Decimal  `json:"price"`
	Net         *decimal.Decimal `json:"net"`
	Cost        decimal.Decimal  `json:"cost"`
}

// ExternalStock is a per-branch stock entry nested in a product record.
// Available is optional; when absent it is derived as Quantity - Reserved.
type ExternalStock struct {
	BranchID  int64            `json:"branch_id"`
	Quantity  decimal.Decimal  `json:"quantity"`
	Reserved  decimal.Decimal  `json:"reserved"`
	Available *decimal.Decimal `json:"available"`
}

// ExternalCustomer is a customer record.
type ExternalCustomer struct {
	ID              int64           `json:"id"`
	Type            string          `json:"type"`
	TaxID           string          `json:"tax_id"`
	TaxType         string          `json:"tax_type"`
	TaxCategory     string          `json:"tax_category"`
	Description     string          `json:"description"`
	Email           string          `json:"email"`
	Phone           string          `json:"phone"`
	Address         string          `json:"address"`
	PriceListID     int64           `json:"price_list_id"`
	CreditLimit     decimal.Decimal `json:"credit_limit"`
	CreditBalance   decimal.Decimal `json:"credit_balance"`
	PaymentTermDays int             `json:"payment_term_days"`
	Discount        decimal.Decimal `json:"discount"`
	Active          *bool           `json:"active"`

	Raw json.RawMessage `json:"-"`
}

// Subscription is a webhook notification subscription registered with the
// ERP.
type Subscription struct {
	ID        int64  `json:"id"`
	Event     string `json:"event"`
	TargetURL string `json:"target_url"`
}

// IsActive interprets the optional active flag shared by several record
// types; an absent flag means active.
func IsActive(flag *bool) bool {
	return flag == nil || *flag
}
