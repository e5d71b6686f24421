package sitebook

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/etnz/sitebook/date"
	"github.com/etnz/sitebook/store"
)

// CommissionRecord is a staff incentive. It is due until paid; paying it is
// final. PaidTransaction is set if and only if IsPaid is true.
type CommissionRecord struct {
	ID              CommissionID  `json:"id"`
	Staff           StaffID       `json:"staffId"`
	Date            date.Date     `json:"date"`
	Amount          Amount        `json:"amount"`
	Remarks         string        `json:"remarks"`
	IsPaid          bool          `json:"isPaid"`
	PaidTransaction TransactionID `json:"paidTransactionId,omitempty"`
}

// MarshalJSON writes the record with a stable field order. The paid
// transaction is only written for a paid record.
func (c CommissionRecord) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", c.ID)
	w.Append("staffId", c.Staff)
	w.Append("date", c.Date)
	w.Append("amount", c.Amount)
	w.Append("remarks", c.Remarks)
	w.Append("isPaid", c.IsPaid)
	if c.IsPaid {
		w.Append("paidTransactionId", c.PaidTransaction)
	}
	return w.MarshalJSON()
}

// Payment describes the settlement of a set of commissions.
type Payment struct {
	Date    date.Date
	Remarks string
	// Total is posted to the ledger as is. It is not required to match the
	// sum of the commissions being paid.
	Total Amount
}

// Commissions tracks due and paid commissions.
type Commissions struct {
	records []CommissionRecord
}

// NewCommissions creates a tracker holding persisted records.
func NewCommissions(records ...CommissionRecord) *Commissions {
	return &Commissions{records: slices.Clone(records)}
}

// Add records a due commission.
func (c *Commissions) Add(staff StaffID, on date.Date, amount Amount, remarks string) (CommissionRecord, error) {
	var errs error
	staff = StaffID(strings.TrimSpace(string(staff)))
	if staff == "" {
		errs = errors.Join(errs, errors.New("staff is missing"))
	}
	if on.IsZero() {
		errs = errors.Join(errs, errors.New("date is missing"))
	}
	if !amount.IsPositive() {
		errs = errors.Join(errs, fmt.Errorf("amount must be positive, got %s", amount))
	}
	if errs != nil {
		return CommissionRecord{}, fmt.Errorf("%w: %w", ErrInvalid, errs)
	}
	rec := CommissionRecord{
		ID:      c.nextID(),
		Staff:   staff,
		Date:    on,
		Amount:  amount,
		Remarks: strings.TrimSpace(remarks),
	}
	c.records = append(c.records, rec)
	return rec, nil
}

// checkPayable verifies that every id is a due commission of the staff
// member, and returns the sum of their amounts.
func (c *Commissions) checkPayable(staff StaffID, ids []CommissionID) (Amount, error) {
	if len(ids) == 0 {
		return Amount{}, fmt.Errorf("%w: no commission selected", ErrInvalid)
	}
	sum := A(0)
	seen := make(map[CommissionID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return Amount{}, fmt.Errorf("%w: commission %v selected twice", ErrInvalid, id)
		}
		seen[id] = true
		rec, ok := c.Commission(id)
		switch {
		case !ok:
			return Amount{}, fmt.Errorf("commission %v: %w", id, ErrNotFound)
		case rec.Staff != staff:
			return Amount{}, fmt.Errorf("%w: commission %v belongs to %q not %q", ErrInvalid, id, rec.Staff, staff)
		case rec.IsPaid:
			return Amount{}, fmt.Errorf("commission %v paid by transaction %v: %w", id, rec.PaidTransaction, ErrAlreadyPaid)
		}
		sum = sum.Add(rec.Amount)
	}
	return sum, nil
}

// markPaid flags exactly the ids as paid by tx.
func (c *Commissions) markPaid(ids []CommissionID, tx TransactionID) {
	for i := range c.records {
		if slices.Contains(ids, c.records[i].ID) {
			c.records[i].IsPaid = true
			c.records[i].PaidTransaction = tx
		}
	}
}

// Commission returns the record with the id.
func (c *Commissions) Commission(id CommissionID) (CommissionRecord, bool) {
	i := slices.IndexFunc(c.records, func(r CommissionRecord) bool { return r.ID == id })
	if i < 0 {
		return CommissionRecord{}, false
	}
	return c.records[i], true
}

// Records returns an iterator over the commissions of the staff member, or
// of everyone when staff is empty.
func (c *Commissions) Records(staff StaffID) iter.Seq[CommissionRecord] {
	return func(yield func(CommissionRecord) bool) {
		for _, r := range c.records {
			if staff != "" && r.Staff != staff {
				continue
			}
			if !yield(r) {
				return
			}
		}
	}
}

// Due returns an iterator over the unpaid commissions of the staff member.
func (c *Commissions) Due(staff StaffID) iter.Seq[CommissionRecord] {
	return func(yield func(CommissionRecord) bool) {
		for r := range c.Records(staff) {
			if r.IsPaid {
				continue
			}
			if !yield(r) {
				return
			}
		}
	}
}

func (c *Commissions) nextID() CommissionID {
	var ids []CommissionID
	for _, r := range c.records {
		ids = append(ids, r.ID)
	}
	return nextID(slices.Values(ids))
}

// all returns a copy of the records, for persistence.
func (c *Commissions) all() []CommissionRecord { return slices.Clone(c.records) }

// PaymentResult is the outcome of PayCommission.
type PaymentResult struct {
	Transaction Transaction
	Paid        []CommissionRecord
	Advisories  Advisories
}

// AddCommission records a due commission for the staff member.
func (b *Book) AddCommission(ctx context.Context, staff StaffID, on date.Date, amount Amount, remarks string) (CommissionRecord, error) {
	rec, err := b.commissions.Add(staff, on, amount, remarks)
	if err != nil {
		return CommissionRecord{}, err
	}
	b.persist(ctx, store.KeyCommissions)
	return rec, nil
}

// PayCommission settles the commissions ids of the staff member: one Expense
// of p.Total is posted in the category holding the Commission link, and
// exactly the listed commissions are marked paid by it.
//
// Nothing is applied when a commission is unknown, belongs to someone else
// or is already paid, or when no category holds the Commission link. The
// total is posted as given; when it differs from the sum of the commissions
// an advisory is returned.
func (b *Book) PayCommission(ctx context.Context, staff StaffID, ids []CommissionID, p Payment) (PaymentResult, error) {
	staff = StaffID(strings.TrimSpace(string(staff)))
	sum, err := b.commissions.checkPayable(staff, ids)
	if err != nil {
		return PaymentResult{}, fmt.Errorf("pay commission: %w", err)
	}
	category, ok := b.registry.Resolve(Commission)
	if !ok {
		return PaymentResult{}, fmt.Errorf("pay commission: no category holds %q: %w", Commission, ErrNotConfigured)
	}
	details := p.Remarks
	if details == "" {
		details = fmt.Sprintf("Commission payment to %s", staff)
	}
	tx, err := b.ledger.Append(Draft{
		Date:     p.Date,
		Details:  details,
		Category: category,
		Kind:     Expense,
		Amount:   p.Total,
		Refs:     Refs{Staff: staff},
	})
	if err != nil {
		return PaymentResult{}, fmt.Errorf("pay commission: %w", err)
	}
	b.commissions.markPaid(ids, tx.ID)

	res := PaymentResult{Transaction: tx}
	for _, id := range ids {
		rec, _ := b.commissions.Commission(id)
		res.Paid = append(res.Paid, rec)
	}
	if !sum.Equal(p.Total) {
		res.Advisories = append(res.Advisories, Advisory{
			Code:   AdvisoryTotalMismatch,
			Detail: fmt.Sprintf("paid %s for commissions totalling %s", p.Total, sum),
		})
	}
	b.log.Debug().Int("transaction", int(tx.ID)).Int("commissions", len(ids)).Stringer("amount", p.Total).Msg("commissions paid")
	for _, a := range res.Advisories {
		b.log.Info().Str("advisory", a.Code.String()).Msg(a.Detail)
	}
	b.persist(ctx, store.KeyTransactions, store.KeyCommissions)
	return res, nil
}

// Commission returns the commission with the id.
func (b *Book) Commission(id CommissionID) (CommissionRecord, bool) {
	return b.commissions.Commission(id)
}

// Commissions iterates the commissions of the staff member, everyone's for "".
func (b *Book) Commissions(staff StaffID) iter.Seq[CommissionRecord] {
	return b.commissions.Records(staff)
}

// DueCommissions iterates the unpaid commissions of the staff member.
func (b *Book) DueCommissions(staff StaffID) iter.Seq[CommissionRecord] {
	return b.commissions.Due(staff)
}
