// Package renderer formats the state of a book as markdown listings.
package renderer

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/etnz/sitebook"
	"github.com/shopspring/decimal"
)

// Renderer writes listings with amounts formatted in one currency.
type Renderer struct {
	currency money.Currency
}

// New creates a renderer for the ISO 4217 currency code.
func New(currency string) (*Renderer, error) {
	cur := money.GetCurrency(strings.ToUpper(currency))
	if cur == nil {
		return nil, fmt.Errorf("unknown currency %q", currency)
	}
	return &Renderer{currency: *cur}, nil
}

// Money formats the amount, for instance "$1,250.50". Sub-unit digits beyond
// the currency precision are rounded. Amounts too large for go-money are
// printed as a plain number followed by the currency code.
func (r *Renderer) Money(a sitebook.Amount) string {
	dec := a.Shift(int32(r.currency.Fraction)).Round(0)
	if dec.GreaterThan(maxMinorUnits) || dec.LessThan(minMinorUnits) {
		return a.Round(int32(r.currency.Fraction)).String() + " " + r.currency.Code
	}
	return r.currency.Formatter().Format(dec.IntPart())
}

// go-money counts minor units in an int64.
var (
	maxMinorUnits = decimal.NewFromInt(math.MaxInt64)
	minMinorUnits = decimal.NewFromInt(math.MinInt64)
)

// Transactions lists transactions in a table followed by the balance.
func (r *Renderer) Transactions(txs []sitebook.Transaction, balance sitebook.Amount) string {
	var md markdown
	md.Printf("# Transactions\n\n")
	if len(txs) == 0 {
		md.Printf("No transactions.\n\n")
	} else {
		md.Row("ID", "Date", "Kind", "Category", "Details", "Amount", "Balance")
		md.Printf("|---:|:---|:---|:---|:---|---:|---:|\n")
		for _, tx := range txs {
			md.Row(tx.ID.String(), tx.Date.String(), tx.Kind.String(), tx.Category, details(tx), r.Money(tx.Amount), r.Money(tx.Balance))
		}
		md.Printf("\n")
	}
	md.Printf("**Balance**: %s\n", r.Money(balance))
	return md.String()
}

// details appends the references of the transaction to its details.
func details(tx sitebook.Transaction) string {
	var refs []string
	for _, ref := range []struct{ label, id string }{
		{"project", string(tx.Project)},
		{"staff", string(tx.Staff)},
		{"laborer", string(tx.Laborer)},
		{"contact", string(tx.Contact)},
		{"vendor", string(tx.Vendor)},
	} {
		if ref.id != "" {
			refs = append(refs, ref.label+" "+ref.id)
		}
	}
	if len(refs) == 0 {
		return tx.Details
	}
	return strings.TrimSpace(fmt.Sprintf("%s (%s)", tx.Details, strings.Join(refs, ", ")))
}

// Categories lists categories grouped by kind.
func Categories(categories []sitebook.Category) string {
	var md markdown
	md.Printf("# Categories\n\n")
	for _, kind := range []sitebook.Kind{sitebook.Income, sitebook.Expense, sitebook.AmountOut} {
		ConditionalBlock(&md, func(w io.Writer) bool {
			var section markdown
			section.Printf("## %s\n\n", kindTitle(kind))
			section.Row("ID", "Name", "System link")
			section.Printf("|---:|:---|:---|\n")
			n := 0
			for _, c := range categories {
				if c.Kind != kind {
					continue
				}
				section.Row(c.ID.String(), c.Name, string(c.Link))
				n++
			}
			section.Printf("\n")
			io.WriteString(w, section.String())
			return n > 0
		})
	}
	var unlinked []string
	for _, link := range sitebook.SystemLinks {
		if !held(categories, link) {
			unlinked = append(unlinked, string(link))
		}
	}
	if len(unlinked) > 0 {
		md.Printf("Unassigned system links: %s\n", strings.Join(unlinked, ", "))
	}
	return md.String()
}

func held(categories []sitebook.Category, link sitebook.SystemLink) bool {
	for _, c := range categories {
		if c.Link == link {
			return true
		}
	}
	return false
}

func kindTitle(k sitebook.Kind) string {
	switch k {
	case sitebook.Income:
		return "Income"
	case sitebook.Expense:
		return "Expense"
	default:
		return "Amount out"
	}
}

// Advisories renders advisories as a bullet list, or nothing.
func Advisories(as sitebook.Advisories) string {
	var md markdown
	for _, a := range as {
		md.Printf("- %s\n", a)
	}
	return md.String()
}
