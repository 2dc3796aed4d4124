package service

import "depotrack/backend/internal/domain"

// BatchSelector picks the source batch for a transfer fulfillment out of the
// product's STORE batches, in the order the repository returned them. A nil
// result means no batch can cover the requested quantity on its own; the
// workflow then fulfills the transfer without moving stock.
type BatchSelector interface {
	Name() string
	Select(batches []domain.Batch, requestedQty int) *domain.Batch
}

// FirstFit takes the first batch in collection order whose quantity covers
// the request.
type FirstFit struct{}

func (FirstFit) Name() string { return "first_fit" }

func (FirstFit) Select(batches []domain.Batch, requestedQty int) *domain.Batch {
	for i := range batches {
		if batches[i].Quantity >= requestedQty {
			return &batches[i]
		}
	}
	return nil
}

// FEFO prefers the qualifying batch that expires soonest; batches without an
// expiry date sort last. Ties break on the earlier received date.
type FEFO struct{}

func (FEFO) Name() string { return "fefo" }

func (FEFO) Select(batches []domain.Batch, requestedQty int) *domain.Batch {
	var best *domain.Batch
	for i := range batches {
		if batches[i].Quantity < requestedQty {
			continue
		}
		if best == nil || expiresBefore(&batches[i], best) {
			best = &batches[i]
		}
	}
	return best
}

func expiresBefore(a, b *domain.Batch) bool {
	switch {
	case a.ExpiryDate != nil && b.ExpiryDate != nil:
		if !a.ExpiryDate.Equal(*b.ExpiryDate) {
			return a.ExpiryDate.Before(*b.ExpiryDate)
		}
	case a.ExpiryDate != nil:
		return true
	case b.ExpiryDate != nil:
		return false
	}
	return a.ReceivedDate.Before(b.ReceivedDate)
}
