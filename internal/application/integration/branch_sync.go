package integration

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/integration"
)

// firstBranchExternalID is the ERP id of the branch created when an account
// is opened. When a tenant has exactly one unlinked branch and a record with
// this id arrives, the two are assumed to be the same physical store.
const firstBranchExternalID = 1

// BranchSyncer reconciles ERP branches against the store's branches. Because
// stores usually create their branches before connecting the ERP, the syncer
// tries to adopt an existing branch before creating a new one.
type BranchSyncer struct {
	branches catalog.BranchRepository
	logger   *zap.Logger
}

// NewBranchSyncer creates the branch reconciler.
func NewBranchSyncer(branches catalog.BranchRepository, logger *zap.Logger) *BranchSyncer {
	return &BranchSyncer{branches: branches, logger: logger}
}

// Sync reconciles every ERP branch and returns how many were processed.
func (s *BranchSyncer) Sync(ctx context.Context, gw integration.Gateway, tenantID uuid.UUID) (int, error) {
	records, err := gw.ListBranches(ctx)
	if err != nil {
		return 0, err
	}
	for _, rec := range records {
		if _, err := s.Resolve(ctx, tenantID, rec); err != nil {
			return 0, fmt.Errorf("branch %d: %w", rec.ID, err)
		}
	}
	return len(records), nil
}

// Resolve maps an ERP branch record onto a store branch, adopting an
// existing branch when one matches or creating a new one otherwise. The
// matching cascade is:
//
//  1. a branch already linked to the record's external id
//  2. a case-insensitive name match among unlinked branches, exact or
//     substring in either direction, first match wins
//  3. the tenant's only unlinked branch, when the record is the ERP's
//     first branch
//
// Once linked, a branch's external id never changes.
func (s *BranchSyncer) Resolve(ctx context.Context, tenantID uuid.UUID, rec integration.ExternalBranch) (*catalog.Branch, error) {
	branch, err := s.branches.FindByExternalID(ctx, tenantID, rec.ID)
	if err == nil {
		s.applyExternal(branch, rec)
		if err := s.branches.Update(ctx, branch); err != nil {
			return nil, err
		}
		return branch, nil
	}
	if !errors.Is(err, catalog.ErrBranchNotFound) {
		return nil, err
	}

	unlinked, err := s.branches.FindUnlinked(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if match := matchByName(unlinked, rec.Description); match != nil {
		return s.adopt(ctx, match, rec)
	}
	if rec.ID == firstBranchExternalID && len(unlinked) == 1 {
		s.logger.Info("Adopting the only unlinked branch as the ERP first branch",
			zap.String("tenant_id", tenantID.String()),
			zap.String("branch", unlinked[0].Name),
		)
		return s.adopt(ctx, &unlinked[0], rec)
	}

	branch = catalog.NewBranch(tenantID, branchName(rec))
	if err := branch.AttachExternalID(rec.ID); err != nil {
		return nil, err
	}
	s.applyExternal(branch, rec)
	if err := s.branches.Create(ctx, branch); err != nil {
		return nil, err
	}
	s.logger.Info("Created branch from ERP record",
		zap.String("tenant_id", tenantID.String()),
		zap.Int64("external_id", rec.ID),
		zap.String("name", branch.Name),
	)
	return branch, nil
}

// ResolveID finds the branch linked to an external id, running the matching
// cascade with a bare record when no link exists yet. Stock rows reference
// branches only by id, so this is the entry point used during product sync.
func (s *BranchSyncer) ResolveID(ctx context.Context, tenantID uuid.UUID, externalID int64) (*catalog.Branch, error) {
	branch, err := s.branches.FindByExternalID(ctx, tenantID, externalID)
	if err == nil {
		return branch, nil
	}
	if !errors.Is(err, catalog.ErrBranchNotFound) {
		return nil, err
	}
	return s.Resolve(ctx, tenantID, integration.ExternalBranch{ID: externalID})
}

func (s *BranchSyncer) adopt(ctx context.Context, branch *catalog.Branch, rec integration.ExternalBranch) (*catalog.Branch, error) {
	if err := branch.AttachExternalID(rec.ID); err != nil {
		return nil, err
	}
	s.applyExternal(branch, rec)
	if err := s.branches.Update(ctx, branch); err != nil {
		return nil, err
	}
	return branch, nil
}

// applyExternal copies record fields onto the branch, leaving fields alone
// when the record does not carry them. Bare records built from a stock row
// therefore never clobber an existing branch.
func (s *BranchSyncer) applyExternal(branch *catalog.Branch, rec integration.ExternalBranch) {
	if rec.Description != "" {
		branch.Name = rec.Description
	}
	if rec.Code != "" {
		branch.Code = rec.Code
	}
	if rec.Address != "" {
		branch.Address = rec.Address
	}
	if rec.City != "" {
		branch.City = rec.City
	}
	if rec.Province != "" {
		branch.Province = rec.Province
	}
	if rec.Phone != "" {
		branch.Phone = rec.Phone
	}
	if rec.Main {
		branch.IsDefault = true
	}
	branch.IsActive = integration.IsActive(rec.Active)
}

// matchByName returns the first unlinked branch whose name equals the
// record's name case-insensitively, or where either name contains the
// other. An empty record name matches nothing.
func matchByName(unlinked []catalog.Branch, name string) *catalog.Branch {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return nil
	}
	for i := range unlinked {
		have := strings.ToLower(strings.TrimSpace(unlinked[i].Name))
		if have == "" {
			continue
		}
		if have == needle || strings.Contains(have, needle) || strings.Contains(needle, have) {
			return &unlinked[i]
		}
	}
	return nil
}

func branchName(rec integration.ExternalBranch) string {
	if rec.Description != "" {
		return rec.Description
	}
	return fmt.Sprintf("Branch %d", rec.ID)
}
