package service

import "go-inventory-ledger/internal/model"

// Notifier receives stock events after the change that produced them has committed.
// Implementations must not block.
type Notifier interface {
	Notify(event model.StockEvent)
}

type nopNotifier struct{}

func (nopNotifier) Notify(model.StockEvent) {}

func notifierOrNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}
