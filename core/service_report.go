package core

import (
	"context"
)

// ReportData returns the caller's profile and verified-transaction
// aggregate. Rows are proxied from the store; the only derivation is the
// verified count and amount total.
func (s *Service) ReportData(ctx context.Context, principal Principal) (Report, error) {
	if s == nil || s.profileStore == nil || s.transactionStore == nil {
		return Report{}, s.mapError(errInternal("core: report requires profile and transaction stores"))
	}
	if err := principal.Validate(); err != nil {
		return Report{}, s.mapError(ErrUnauthenticated)
	}

	profile, err := s.profileStore.GetByOwner(ctx, principal.ID)
	if err != nil {
		return Report{}, s.mapError(err)
	}

	transactions, err := s.transactionStore.ListVerifiedByOwner(ctx, principal.ID)
	if err != nil {
		return Report{}, s.mapError(err)
	}

	var total int64
	for _, txn := range transactions {
		total += txn.Amount
	}

	return Report{
		Profile:       profile,
		Transactions:  transactions,
		VerifiedCount: len(transactions),
		VerifiedTotal: total,
	}, nil
}
