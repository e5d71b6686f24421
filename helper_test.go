package sitebook

import (
	"context"
	"testing"

	"github.com/etnz/sitebook/date"
)

// D is a helper for test to create a date from a const
func D(s string) date.Date { return date.MustParse(s) }

func draft(on string, kind Kind, amount float64) Draft {
	return Draft{Date: D(on), Kind: kind, Amount: A(amount)}
}

// configuredBook returns a book whose vendor payment, construction material
// and commission links are configured.
func configuredBook(t *testing.T, opts ...Option) *Book {
	t.Helper()
	ctx := context.Background()
	b := New(opts...)
	for _, c := range []struct {
		name string
		kind Kind
		link SystemLink
	}{
		{"Client payments", Income, ProjectPayment},
		{"Vendor payments", Expense, VendorPayment},
		{"Materials", Expense, ConstructionMaterial},
		{"Commissions", Expense, Commission},
		{"Owner draw", AmountOut, NoLink},
	} {
		if _, err := b.AddCategory(ctx, c.name, c.kind, c.link); err != nil {
			t.Fatalf("AddCategory(%q): %v", c.name, err)
		}
	}
	return b
}

func mustAppend(t *testing.T, l *Ledger, d Draft) Transaction {
	t.Helper()
	tx, err := l.Append(d)
	if err != nil {
		t.Fatalf("Append(%v): %v", d, err)
	}
	return tx
}

func countTransactions(b *Book) int {
	n := 0
	for range b.Transactions() {
		n++
	}
	return n
}
