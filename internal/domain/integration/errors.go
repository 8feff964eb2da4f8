package integration

import "errors"

var (
	// Connection errors
	ErrConnectionNotFound  = errors.New("integration: connection not found")
	ErrConnectionInactive  = errors.New("integration: connection is inactive")
	ErrInvalidTenantID     = errors.New("integration: invalid tenant ID")
	ErrMissingCredentials  = errors.New("integration: missing app credentials")

	// ErrAuthenticationFailed covers credential and refresh failures against
	// the ERP token endpoints. It aborts the current sync operation and is
	// never retried beyond the documented refresh-then-reauthenticate chain.
	ErrAuthenticationFailed = errors.New("integration: ERP authentication failed")

	// Transport errors, fatal for the current sync step
	ErrRequestFailed   = errors.New("integration: ERP request failed")
	ErrInvalidResponse = errors.New("integration: invalid ERP response")

	// Sync errors
	ErrSyncAlreadyRunning = errors.New("integration: sync already running for tenant")
	ErrTooManyIDs         = errors.New("integration: too many IDs for batch fetch")
)
