package sitebook

import (
	"context"
	"fmt"

	"github.com/etnz/sitebook/date"
	"github.com/etnz/sitebook/store"
)

// Purchase is the input of AddStock.
type Purchase struct {
	Date      date.Date
	Material  MaterialID
	Quantity  Quantity
	UnitPrice Amount
	Vendor    VendorID  // optional, without vendor nothing is paid
	Project   ProjectID // optional, purchase made for a project
	Details   string    // optional, defaults to a generated description
}

// Issue is the input of IssueStock.
type Issue struct {
	Date     date.Date
	Material MaterialID
	Quantity Quantity
	Project  ProjectID // optional, without project nothing is charged
	Details  string    // optional, defaults to a generated description
}

// StockResult is the outcome of a stock operation. Transaction is nil when
// no cash impact was posted, Advisories then tells why.
type StockResult struct {
	Movement    StockMovement
	Transaction *Transaction
	Advisories  Advisories
}

// AddStock records a purchase of material. The movement is always recorded.
// When a vendor is given and the cost is positive, an Expense for the cost is
// posted in the category holding the VendorPayment link.
func (b *Book) AddStock(ctx context.Context, p Purchase) (StockResult, error) {
	price := p.UnitPrice
	m := StockMovement{
		Date:      p.Date,
		Material:  p.Material,
		Direction: In,
		Quantity:  p.Quantity,
		UnitPrice: &price,
		Vendor:    p.Vendor,
		Project:   p.Project,
	}
	if err := m.Validate(); err != nil {
		return StockResult{}, fmt.Errorf("add stock: %w", err)
	}

	// Resolve before recording, so that nothing is applied if posting fails.
	cost := p.UnitPrice.Mul(p.Quantity)
	var advisories Advisories
	var draft *Draft
	switch {
	case p.Vendor == "":
		advisories = append(advisories, Advisory{Code: AdvisoryNoVendor, Detail: "purchase recorded without payment"})
	case !cost.IsPositive():
		advisories = append(advisories, Advisory{Code: AdvisoryNoCost, Detail: "purchase recorded at no cost"})
	default:
		category, ok := b.registry.Resolve(VendorPayment)
		if !ok {
			advisories = append(advisories, Advisory{Code: AdvisoryNotConfigured, Detail: fmt.Sprintf("no category holds %q, payment of %s not posted", VendorPayment, cost)})
			break
		}
		draft = &Draft{
			Date:     p.Date,
			Details:  b.purchaseDetails(p),
			Category: category,
			Kind:     Expense,
			Amount:   cost,
			Refs:     Refs{Vendor: p.Vendor, Project: p.Project},
		}
		if err := draft.Validate(); err != nil {
			return StockResult{}, fmt.Errorf("add stock: %w", err)
		}
	}

	m, err := b.stock.Record(m)
	if err != nil {
		return StockResult{}, fmt.Errorf("add stock: %w", err)
	}
	res := StockResult{Movement: m, Advisories: advisories}
	keys := []string{store.KeyStockMovements}
	if draft != nil {
		tx, err := b.ledger.Append(*draft)
		if err != nil {
			// validated above
			return StockResult{}, fmt.Errorf("add stock: %w", err)
		}
		res.Transaction = &tx
		keys = append(keys, store.KeyTransactions)
	}
	b.logStock(res)
	b.persist(ctx, keys...)
	return res, nil
}

// IssueStock records material leaving the stock. The movement is always
// recorded, even when it makes the stock negative (see CheckIssue). When the
// material has a known purchase price and a project is given, an Expense of
// quantity times that price is posted to the project in the category
// holding the ConstructionMaterial link.
func (b *Book) IssueStock(ctx context.Context, i Issue) (StockResult, error) {
	m := StockMovement{
		Date:      i.Date,
		Material:  i.Material,
		Direction: Out,
		Quantity:  i.Quantity,
		Project:   i.Project,
	}
	if err := m.Validate(); err != nil {
		return StockResult{}, fmt.Errorf("issue stock: %w", err)
	}

	// The price only comes from purchases, so it does not matter that the
	// issue is recorded first or not.
	price, priced := b.stock.LatestUnitPrice(m.Material)
	var advisories Advisories
	var draft *Draft
	switch {
	case !priced || !price.IsPositive():
		advisories = append(advisories, Advisory{Code: AdvisoryUnknownPrice, Detail: fmt.Sprintf("no purchase price for %q, cost not tracked", m.Material)})
	case i.Project == "":
		advisories = append(advisories, Advisory{Code: AdvisoryNoProject, Detail: "issue has no project, cost not tracked"})
	default:
		category, ok := b.registry.Resolve(ConstructionMaterial)
		if !ok {
			advisories = append(advisories, Advisory{Code: AdvisoryNotConfigured, Detail: fmt.Sprintf("no category holds %q, cost not tracked", ConstructionMaterial)})
			break
		}
		draft = &Draft{
			Date:     i.Date,
			Details:  b.issueDetails(i, price),
			Category: category,
			Kind:     Expense,
			Amount:   price.Mul(i.Quantity),
			Refs:     Refs{Project: i.Project},
		}
		if err := draft.Validate(); err != nil {
			return StockResult{}, fmt.Errorf("issue stock: %w", err)
		}
	}

	m, err := b.stock.Record(m)
	if err != nil {
		return StockResult{}, fmt.Errorf("issue stock: %w", err)
	}
	res := StockResult{Movement: m, Advisories: advisories}
	keys := []string{store.KeyStockMovements}
	if draft != nil {
		tx, err := b.ledger.Append(*draft)
		if err != nil {
			return StockResult{}, fmt.Errorf("issue stock: %w", err)
		}
		res.Transaction = &tx
		keys = append(keys, store.KeyTransactions)
	}
	b.logStock(res)
	b.persist(ctx, keys...)
	return res, nil
}

// CheckIssue returns ErrInsufficientStock when issuing quantity would make
// the stock of the material negative. IssueStock does not call it.
func (b *Book) CheckIssue(material MaterialID, quantity Quantity) error {
	return b.stock.CheckIssue(material, quantity)
}

func (b *Book) purchaseDetails(p Purchase) string {
	if p.Details != "" {
		return p.Details
	}
	return fmt.Sprintf("Purchase of %s %s from %s", p.Quantity, b.materialLabel(p.Material), b.vendorLabel(p.Vendor))
}

func (b *Book) issueDetails(i Issue, price Amount) string {
	if i.Details != "" {
		return i.Details
	}
	return fmt.Sprintf("Issue of %s %s at %s", i.Quantity, b.materialLabel(i.Material), price)
}

func (b *Book) materialLabel(id MaterialID) string {
	if m, ok := b.stock.Material(id); ok {
		if m.Unit != "" {
			return fmt.Sprintf("%s of %s", m.Unit, m.Name)
		}
		return m.Name
	}
	return string(id)
}

func (b *Book) vendorLabel(id VendorID) string {
	if v, ok := b.Vendor(id); ok && v.Name != "" {
		return v.Name
	}
	return string(id)
}

func (b *Book) logStock(res StockResult) {
	ev := b.log.Debug().
		Int("movement", int(res.Movement.ID)).
		Str("material", string(res.Movement.Material)).
		Str("direction", string(res.Movement.Direction)).
		Stringer("quantity", res.Movement.Quantity)
	if res.Transaction != nil {
		ev = ev.Int("transaction", int(res.Transaction.ID)).Stringer("amount", res.Transaction.Amount)
	}
	ev.Msg("stock movement recorded")
	for _, a := range res.Advisories {
		b.log.Info().Str("advisory", a.Code.String()).Msg(a.Detail)
	}
}
