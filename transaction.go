package sitebook

import (
	"errors"
	"fmt"
	"strings"

	"github.com/etnz/sitebook/date"
)

// Refs are the optional links from a transaction to collaborator records.
// Removing a referenced collaborator is blocked, see Book.CheckRemovable.
type Refs struct {
	Project ProjectID `json:"projectId,omitempty"`
	Staff   StaffID   `json:"staffId,omitempty"`
	Laborer LaborerID `json:"laborerId,omitempty"`
	Contact ContactID `json:"contactId,omitempty"`
	Vendor  VendorID  `json:"vendorId,omitempty"`
}

// Transaction is a cash movement recorded in the ledger.
//
// Balance is the running balance stored when the transaction was appended.
// It is not recomputed on edit, see Ledger.Rebalance.
type Transaction struct {
	ID       TransactionID `json:"id"`
	Date     date.Date     `json:"date"`
	Details  string        `json:"details"`
	Category string        `json:"category"`
	Kind     Kind          `json:"kind"`
	Amount   Amount        `json:"amount"`
	Balance  Amount        `json:"balance"`
	Refs
}

// MarshalJSON writes the transaction with a stable field order and without
// empty references.
func (t Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", t.ID)
	w.Append("date", t.Date)
	w.Append("details", t.Details)
	w.Append("category", t.Category)
	w.Append("kind", t.Kind)
	w.Append("amount", t.Amount)
	w.Append("balance", t.Balance)
	w.Optional("projectId", t.Project)
	w.Optional("staffId", t.Staff)
	w.Optional("laborerId", t.Laborer)
	w.Optional("contactId", t.Contact)
	w.Optional("vendorId", t.Vendor)
	return w.MarshalJSON()
}

// signed returns the amount with the sign of its effect on the balance.
func (t Transaction) signed() Amount {
	if t.Kind.sign() < 0 {
		return t.Amount.Neg()
	}
	return t.Amount
}

// Draft is a transaction before the ledger assigned its id and balance.
type Draft struct {
	Date     date.Date
	Details  string
	Category string
	Kind     Kind
	Amount   Amount
	Refs
}

// Validate checks the draft fields.
func (d Draft) Validate() error {
	var errs error
	if d.Date.IsZero() {
		errs = errors.Join(errs, errors.New("date is missing"))
	}
	if !d.Kind.Valid() {
		errs = errors.Join(errs, fmt.Errorf("kind %v is not income, expense or amountOut", d.Kind))
	}
	if !d.Amount.IsPositive() {
		errs = errors.Join(errs, fmt.Errorf("amount must be positive, got %s", d.Amount))
	}
	if errs != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, errs)
	}
	return nil
}

func (d Draft) normalized() Draft {
	d.Details = strings.TrimSpace(d.Details)
	d.Category = strings.TrimSpace(d.Category)
	return d
}

// Filters for Ledger.Transactions and Ledger.References.

// ByProject accepts transactions bound to the project.
func ByProject(id ProjectID) func(Transaction) bool {
	return func(t Transaction) bool { return t.Project == id }
}

// ByStaff accepts transactions bound to the staff member.
func ByStaff(id StaffID) func(Transaction) bool {
	return func(t Transaction) bool { return t.Staff == id }
}

// ByLaborer accepts transactions bound to the laborer.
func ByLaborer(id LaborerID) func(Transaction) bool {
	return func(t Transaction) bool { return t.Laborer == id }
}

// ByContact accepts transactions bound to the contact.
func ByContact(id ContactID) func(Transaction) bool {
	return func(t Transaction) bool { return t.Contact == id }
}

// ByVendor accepts transactions bound to the vendor.
func ByVendor(id VendorID) func(Transaction) bool {
	return func(t Transaction) bool { return t.Vendor == id }
}

// ByCategory accepts transactions tagged with the category name.
func ByCategory(name string) func(Transaction) bool {
	return func(t Transaction) bool { return t.Category == name }
}

// ByKind accepts transactions of the kind.
func ByKind(k Kind) func(Transaction) bool {
	return func(t Transaction) bool { return t.Kind == k }
}

// InRange accepts transactions dated within r.
func InRange(r date.Range) func(Transaction) bool {
	return func(t Transaction) bool { return r.Contains(t.Date) }
}
