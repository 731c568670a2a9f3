package auctiondomain

import "fmt"

// LedgerLine is the part of a ledger entry the audit needs.
type LedgerLine struct {
	ID           int64
	Amount       int64
	BalanceAfter int64
}

// AuditReport describes whether a team's budget agrees with its ledger.
type AuditReport struct {
	Key               BudgetKey `json:"key"`
	Entries           int       `json:"entries"`
	LedgerSum         int64     `json:"ledger_sum"`
	StartingBalance   int64     `json:"starting_balance"`
	AvailableBudget   int64     `json:"available_budget"`
	ExpectedAvailable int64     `json:"expected_available"`
	Consistent        bool      `json:"consistent"`
	Discrepancies     []string  `json:"discrepancies,omitempty"`
}

// AuditLedger checks the running-balance chain starting from the starting
// balance, the ledger-sum invariant and the roster slot cap.
func AuditLedger(b BudgetState, lines []LedgerLine) AuditReport {
	report := AuditReport{
		Key:             b.Key,
		Entries:         len(lines),
		StartingBalance: b.StartingBalance,
		AvailableBudget: b.Available,
	}

	prev := b.StartingBalance
	for _, l := range lines {
		report.LedgerSum += l.Amount
		if l.BalanceAfter != prev+l.Amount {
			report.Discrepancies = append(report.Discrepancies, fmt.Sprintf(
				"entry %d: balance_after %d, expected %d", l.ID, l.BalanceAfter, prev+l.Amount))
		}
		prev = l.BalanceAfter
	}

	report.ExpectedAvailable = b.StartingBalance + report.LedgerSum
	if report.ExpectedAvailable != b.Available {
		report.Discrepancies = append(report.Discrepancies, fmt.Sprintf(
			"available_budget %d, ledger implies %d", b.Available, report.ExpectedAvailable))
	}
	if b.StartingBalance-b.TotalSpent != b.Available {
		report.Discrepancies = append(report.Discrepancies, fmt.Sprintf(
			"total_spent %d does not match starting %d minus available %d", b.TotalSpent, b.StartingBalance, b.Available))
	}
	if b.SlotsUsed > b.SlotsMax {
		report.Discrepancies = append(report.Discrepancies, fmt.Sprintf(
			"roster_slots_used %d exceeds max %d", b.SlotsUsed, b.SlotsMax))
	}

	report.Consistent = len(report.Discrepancies) == 0
	return report
}
