package auctionservice

import (
	"context"
	"errors"
	"fmt"

	auctiondomain "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/domain"
	auctiondb "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/infrastructure/repositories"
	authdomain "github.com/Black-And-White-Club/bulk-auction/app/modules/auth/domain"
	"github.com/Black-And-White-Club/bulk-auction/internal/observability/attr"
	"github.com/Black-And-White-Club/bulk-auction/internal/results"
	"github.com/uptrace/bun"
)

const maxLedgerPage = 1000

func validateKey(key auctiondomain.BudgetKey) error {
	if key.TeamID == "" || key.SeasonID == "" || key.Track == "" {
		return reject(ErrValidationFailed, "team_id, season_id and currency_track are required")
	}
	return nil
}

// GetTeamBudget returns a team's budget row and its latest ledger balance.
func (s *AuctionService) GetTeamBudget(ctx context.Context, actor authdomain.Actor, key auctiondomain.BudgetKey) (*BudgetView, error) {
	return execute(s, ctx, "GetTeamBudget", key.String(), func(ctx context.Context, db bun.IDB, fx *effects) (results.OperationResult[*BudgetView, error], error) {
		if err := s.authorizeTeamView(ctx, actor, key.TeamID); err != nil {
			return fail[*BudgetView](err)
		}
		if err := validateKey(key); err != nil {
			return fail[*BudgetView](err)
		}

		budget, err := s.repo.GetBudget(ctx, db, key)
		if errors.Is(err, auctiondb.ErrNotFound) {
			return fail[*BudgetView](reject(ErrBudgetNotFound, "no budget for %s", key))
		}
		if err != nil {
			return infra[*BudgetView](err)
		}

		view := &BudgetView{Budget: budget}
		latest, err := s.repo.LatestLedgerEntry(ctx, db, key)
		switch {
		case err == nil:
			view.LatestBalance = ptr(latest.BalanceAfter)
		case !errors.Is(err, auctiondb.ErrNotFound):
			return infra[*BudgetView](err)
		}
		return ok(view)
	})
}

// ListLedger returns a team's ledger entries oldest first.
func (s *AuctionService) ListLedger(ctx context.Context, actor authdomain.Actor, key auctiondomain.BudgetKey, limit int) ([]auctiondb.LedgerEntry, error) {
	return execute(s, ctx, "ListLedger", key.String(), func(ctx context.Context, db bun.IDB, fx *effects) (results.OperationResult[[]auctiondb.LedgerEntry, error], error) {
		if err := s.authorizeTeamView(ctx, actor, key.TeamID); err != nil {
			return fail[[]auctiondb.LedgerEntry](err)
		}
		if err := validateKey(key); err != nil {
			return fail[[]auctiondb.LedgerEntry](err)
		}
		if limit <= 0 || limit > maxLedgerPage {
			limit = maxLedgerPage
		}
		entries, err := s.repo.ListLedgerEntries(ctx, db, key, limit)
		if err != nil {
			return infra[[]auctiondb.LedgerEntry](err)
		}
		return ok(entries)
	})
}

// AdjustBudget appends a compensating entry and moves the balance by amount.
// Positive amounts credit the team.
func (s *AuctionService) AdjustBudget(ctx context.Context, actor authdomain.Actor, req AdjustBudgetRequest) (*BudgetView, error) {
	return execute(s, ctx, "AdjustBudget", req.Key.String(), func(ctx context.Context, db bun.IDB, fx *effects) (results.OperationResult[*BudgetView, error], error) {
		if err := s.authorize(ctx, actor, authdomain.RoleAdmin); err != nil {
			return fail[*BudgetView](err)
		}
		if err := validateKey(req.Key); err != nil {
			return fail[*BudgetView](err)
		}
		if req.Amount == 0 {
			return fail[*BudgetView](reject(ErrInvalidAmount, "adjustment amount must not be zero"))
		}

		if _, err := s.budgetFor(ctx, db, req.Key); err != nil {
			return done[*BudgetView](err)
		}
		locked, err := s.repo.LockBudgets(ctx, db, req.Key.SeasonID, req.Key.Track, []string{req.Key.TeamID})
		if err != nil {
			return infra[*BudgetView](fmt.Errorf("failed to lock budget: %w", err))
		}
		if len(locked) == 0 {
			return fail[*BudgetView](reject(ErrBudgetNotFound, "no budget for %s", req.Key))
		}
		budget := &locked[0]

		balance := budget.AvailableBudget + req.Amount
		if balance < 0 {
			return fail[*BudgetView](reject(ErrInsufficientBudget, "adjustment would leave %d", balance))
		}
		budget.AvailableBudget = balance
		budget.TotalSpent -= req.Amount
		if err := s.repo.UpdateBudget(ctx, db, budget); err != nil {
			return infra[*BudgetView](fmt.Errorf("failed to update budget: %w", err))
		}

		entry := auctiondb.LedgerEntry{
			TeamID:        req.Key.TeamID,
			SeasonID:      req.Key.SeasonID,
			CurrencyTrack: req.Key.Track,
			Amount:        req.Amount,
			BalanceAfter:  balance,
			Reason:        auctiondomain.ReasonAdjustment,
			Metadata: map[string]any{
				"note":  req.Note,
				"actor": actor.ID,
			},
			CreatedAt: s.now(),
		}
		if err := s.repo.AppendLedgerEntries(ctx, db, []auctiondb.LedgerEntry{entry}); err != nil {
			return infra[*BudgetView](fmt.Errorf("failed to append adjustment: %w", err))
		}
		return ok(&BudgetView{Budget: budget, LatestBalance: ptr(balance)})
	})
}

// AuditTeamBudget checks a team's budget row against its ledger without
// changing either.
func (s *AuctionService) AuditTeamBudget(ctx context.Context, actor authdomain.Actor, key auctiondomain.BudgetKey) (*auctiondomain.AuditReport, error) {
	return execute(s, ctx, "AuditTeamBudget", key.String(), func(ctx context.Context, db bun.IDB, fx *effects) (results.OperationResult[*auctiondomain.AuditReport, error], error) {
		if err := s.authorize(ctx, actor, authdomain.RoleCommittee); err != nil {
			return fail[*auctiondomain.AuditReport](err)
		}
		if err := validateKey(key); err != nil {
			return fail[*auctiondomain.AuditReport](err)
		}

		budget, err := s.repo.GetBudget(ctx, db, key)
		if errors.Is(err, auctiondb.ErrNotFound) {
			return fail[*auctiondomain.AuditReport](reject(ErrBudgetNotFound, "no budget for %s", key))
		}
		if err != nil {
			return infra[*auctiondomain.AuditReport](err)
		}
		entries, err := s.repo.ListLedgerEntries(ctx, db, key, 0)
		if err != nil {
			return infra[*auctiondomain.AuditReport](err)
		}

		lines := make([]auctiondomain.LedgerLine, 0, len(entries))
		for _, e := range entries {
			lines = append(lines, auctiondomain.LedgerLine{ID: e.ID, Amount: e.Amount, BalanceAfter: e.BalanceAfter})
		}
		report := auctiondomain.AuditLedger(budget.State(), lines)
		if !report.Consistent {
			s.logger.WarnContext(ctx, "Budget audit found discrepancies",
				attr.ExtractCorrelationID(ctx),
				attr.String("budget", key.String()),
				attr.Any("discrepancies", report.Discrepancies),
			)
		}
		return ok(&report)
	})
}
