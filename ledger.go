package sitebook

import (
	"fmt"
	"iter"
	"slices"
	"sort"
)

// Ledger is the ordered list of cash transactions with their running balance.
//
// In a Ledger transactions are always in chronological order. A new
// transaction gets its balance from the last transaction of the list at
// the time it is appended, and the list is sorted afterwards. Appending in
// date order therefore yields exact running balances, while a back-dated
// append stores a balance relative to the wrong predecessor. Call Rebalance
// (or build the ledger with rebalancing on) to recompute every balance in
// date order.
type Ledger struct {
	transactions []Transaction
	rebalance    bool // recompute all balances after each change
}

// NewLedger creates a ledger holding txs. The transactions are sorted by
// date, stored balances are kept as they are.
func NewLedger(txs ...Transaction) *Ledger {
	l := &Ledger{transactions: slices.Clone(txs)}
	l.stableSort()
	return l
}

// SetRebalance turns automatic rebalancing after Append and Edit on or off.
func (l *Ledger) SetRebalance(on bool) { l.rebalance = on }

// Len returns the number of transactions.
func (l *Ledger) Len() int { return len(l.transactions) }

// Balance returns the balance stored on the last transaction, zero when the
// ledger is empty.
func (l *Ledger) Balance() Amount {
	if len(l.transactions) == 0 {
		return A(0)
	}
	return l.transactions[len(l.transactions)-1].Balance
}

// Append finalizes the draft into a transaction, appends it and keeps the
// ledger in chronological order. It returns the stored transaction, with its
// id and balance.
func (l *Ledger) Append(draft Draft) (Transaction, error) {
	if err := draft.Validate(); err != nil {
		return Transaction{}, err
	}
	draft = draft.normalized()

	tx := Transaction{
		ID:       l.nextID(),
		Date:     draft.Date,
		Details:  draft.Details,
		Category: draft.Category,
		Kind:     draft.Kind,
		Amount:   draft.Amount,
		Refs:     draft.Refs,
	}
	// The balance is relative to the last transaction in the list, not to
	// the chronological predecessor of tx.
	tx.Balance = l.Balance().Add(tx.signed())

	l.transactions = append(l.transactions, tx)
	l.stableSort()
	if l.rebalance {
		l.Rebalance()
	}
	stored, _ := l.Transaction(tx.ID)
	return stored, nil
}

// Edit replaces the fields of the transaction id with the draft. The id and
// the stored balance are kept: no balance is recomputed unless rebalancing is
// on. The ledger is sorted again in case the date changed, so an edited date
// can change which transaction is last and therefore the balance later
// appends start from.
func (l *Ledger) Edit(id TransactionID, draft Draft) (Transaction, error) {
	if err := draft.Validate(); err != nil {
		return Transaction{}, err
	}
	draft = draft.normalized()

	i := l.index(id)
	if i < 0 {
		return Transaction{}, fmt.Errorf("transaction %v: %w", id, ErrNotFound)
	}
	tx := &l.transactions[i]
	tx.Date = draft.Date
	tx.Details = draft.Details
	tx.Category = draft.Category
	tx.Kind = draft.Kind
	tx.Amount = draft.Amount
	tx.Refs = draft.Refs

	l.stableSort()
	if l.rebalance {
		l.Rebalance()
	}
	stored, _ := l.Transaction(id)
	return stored, nil
}

// Rebalance recomputes every stored balance as the running total in
// chronological order. It returns the number of balances that changed.
func (l *Ledger) Rebalance() int {
	changed := 0
	balance := A(0)
	for i := range l.transactions {
		tx := &l.transactions[i]
		balance = balance.Add(tx.signed())
		if !tx.Balance.Equal(balance) {
			tx.Balance = balance
			changed++
		}
	}
	return changed
}

// Transaction returns the transaction with the id.
func (l *Ledger) Transaction(id TransactionID) (Transaction, bool) {
	i := l.index(id)
	if i < 0 {
		return Transaction{}, false
	}
	return l.transactions[i], true
}

// Transactions returns an iterator over the transactions, in chronological
// order, accepted by all the filters.
func (l *Ledger) Transactions(filters ...func(Transaction) bool) iter.Seq2[int, Transaction] {
	return func(yield func(int, Transaction) bool) {
		for i, tx := range l.transactions {
			if !acceptAll(tx, filters) {
				continue
			}
			if !yield(i, tx) {
				return
			}
		}
	}
}

// References returns the ids of transactions accepted by refersTo.
func (l *Ledger) References(refersTo func(Transaction) bool) []TransactionID {
	var ids []TransactionID
	for _, tx := range l.Transactions(refersTo) {
		ids = append(ids, tx.ID)
	}
	return ids
}

// Total returns the sum of the signed amounts of the transactions accepted
// by all the filters.
func (l *Ledger) Total(filters ...func(Transaction) bool) Amount {
	total := A(0)
	for _, tx := range l.Transactions(filters...) {
		total = total.Add(tx.signed())
	}
	return total
}

func acceptAll(tx Transaction, filters []func(Transaction) bool) bool {
	for _, filter := range filters {
		if !filter(tx) {
			return false
		}
	}
	return true
}

func (l *Ledger) index(id TransactionID) int {
	return slices.IndexFunc(l.transactions, func(tx Transaction) bool { return tx.ID == id })
}

func (l *Ledger) nextID() TransactionID {
	var ids []TransactionID
	for _, tx := range l.transactions {
		ids = append(ids, tx.ID)
	}
	return nextID(slices.Values(ids))
}

// stableSort sorts the ledger by transaction date. The sort is stable, meaning
// transactions on the same day maintain their original relative order.
func (l *Ledger) stableSort() {
	sort.SliceStable(l.transactions, func(i, j int) bool {
		return l.transactions[i].Date.Before(l.transactions[j].Date)
	})
}

// all returns a copy of the transactions, for persistence.
func (l *Ledger) all() []Transaction { return slices.Clone(l.transactions) }
