package sitebook

import (
	"iter"
	"strconv"
)

// Identifiers assigned by the book. They are allocated as max(existing)+1.
type (
	TransactionID int
	CategoryID    int
	MovementID    int
	CommissionID  int
)

// Identifiers owned by collaborators (staff, projects, vendors, ...). The
// book only stores and compares them.
type (
	ProjectID          string
	StaffID            string
	LaborerID          string
	ContactID          string
	VendorID           string
	MaterialID         string
	MaterialCategoryID string
)

func (id TransactionID) String() string { return strconv.Itoa(int(id)) }
func (id CategoryID) String() string    { return strconv.Itoa(int(id)) }
func (id MovementID) String() string    { return strconv.Itoa(int(id)) }
func (id CommissionID) String() string  { return strconv.Itoa(int(id)) }

// nextID returns max(ids)+1, or 1 when there is none.
func nextID[ID ~int](ids iter.Seq[ID]) ID {
	var last ID
	for id := range ids {
		last = max(last, id)
	}
	return last + 1
}
