// Package store provides the named-collection stores a book is persisted
// into. A store maps a key to one JSON document, usually a list of records.
//
// Stores do not coordinate sessions: two sessions that load, modify and save
// the same key lose one of the updates.
package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when nothing was ever stored under the key.
var ErrNotFound = errors.New("key not found")

// Store gets and sets JSON documents by key.
type Store interface {
	// Get decodes the document stored under key into v.
	Get(ctx context.Context, key string, v any) error
	// Set replaces the document stored under key with the encoding of v.
	Set(ctx context.Context, key string, v any) error
}

// Keys of the collections of a book.
const (
	KeyTransactions       = "transactions"
	KeyIncomeCategories   = "incomeCategories"
	KeyExpenseCategories  = "expenseCategories"
	KeyOwnerCategories    = "ownerCategories"
	KeyMaterials          = "materials"
	KeyMaterialCategories = "materialCategories"
	KeyStockMovements     = "stockMovements"
	KeyVendors            = "vendors"
	KeyVendorCategories   = "vendorCategories"
	KeyCommissions        = "commissions"
)

// Keys lists every collection key.
var Keys = []string{
	KeyTransactions,
	KeyIncomeCategories,
	KeyExpenseCategories,
	KeyOwnerCategories,
	KeyMaterials,
	KeyMaterialCategories,
	KeyStockMovements,
	KeyVendors,
	KeyVendorCategories,
	KeyCommissions,
}

// GetOptional is like s.Get but leaves v untouched when the key is absent.
func GetOptional(ctx context.Context, s Store, key string, v any) error {
	err := s.Get(ctx, key, v)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get %q: %w", key, err)
	}
	return nil
}
