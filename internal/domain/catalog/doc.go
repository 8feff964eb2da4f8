// Package catalog contains the tenant-scoped catalog entities kept in sync
// with the ERP: branches, price lists, categories, brands and products with
// their per-price-list prices and per-branch stock. Entities are created on
// first sync occurrence and only ever updated afterwards; deactivation is
// expressed through IsActive, never by deletion.
package catalog
