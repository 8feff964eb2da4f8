// Package integration contains the domain model for the ERP synchronization
// engine: the per-tenant ERP connection with its credential lifecycle, the
// external record types received from the ERP wire API, and the gateway and
// repository interfaces the sync services consume.
//
// The ERP is the source of truth for catalog, pricing, stock, branch and
// customer data. Synchronization is strictly one-way (pull); external
// identifiers are stable join keys scoped to a single tenant.
package integration
