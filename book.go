package sitebook

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/etnz/sitebook/store"
	"github.com/rs/zerolog"
)

// Book owns every collection of the reconciliation core: categories, cash
// ledger, stock and commissions. All changes go through its methods, which
// keep the collections consistent with each other.
//
// A Book is meant for a single session and is not safe for concurrent use.
// When bound to a store, each change is written right away; a failed write
// is logged and does not fail the change.
type Book struct {
	registry    *Registry
	ledger      *Ledger
	stock       *Stock
	commissions *Commissions

	vendors            []Vendor
	vendorCategories   []VendorCategory
	materialCategories []MaterialCategory

	store store.Store
	log   zerolog.Logger
}

// Option configures a Book.
type Option func(*Book)

// WithRebalance makes the ledger recompute every balance after each append
// or edit, instead of relying on the last transaction of the list.
func WithRebalance(on bool) Option {
	return func(b *Book) { b.ledger.SetRebalance(on) }
}

// WithLogger sets the logger of the book. The default logger discards.
func WithLogger(log zerolog.Logger) Option {
	return func(b *Book) { b.log = log }
}

// New creates an empty book that is not bound to any store.
func New(opts ...Option) *Book {
	b := &Book{
		registry:    NewRegistry(),
		ledger:      NewLedger(),
		stock:       NewStock(nil, nil),
		commissions: NewCommissions(),
		log:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Open loads a book from s and binds it to s. Missing collections are empty.
func Open(ctx context.Context, s store.Store, opts ...Option) (*Book, error) {
	var (
		transactions []Transaction
		categories   []Category
		movements    []StockMovement
		materials    []Material
		commissions  []CommissionRecord
	)
	b := New()

	var errs error
	get := func(key string, v any) { errs = errors.Join(errs, store.GetOptional(ctx, s, key, v)) }
	get(store.KeyTransactions, &transactions)
	for _, key := range []string{store.KeyIncomeCategories, store.KeyExpenseCategories, store.KeyOwnerCategories} {
		kind := categoryKeys()[key]
		var cs []Category
		get(key, &cs)
		for _, c := range cs {
			if c.Kind == 0 {
				c.Kind = kind
			}
			categories = append(categories, c)
		}
	}
	get(store.KeyStockMovements, &movements)
	get(store.KeyMaterials, &materials)
	get(store.KeyCommissions, &commissions)
	get(store.KeyVendors, &b.vendors)
	get(store.KeyVendorCategories, &b.vendorCategories)
	get(store.KeyMaterialCategories, &b.materialCategories)
	if errs != nil {
		return nil, fmt.Errorf("open book: %w", errs)
	}

	categories, renumbered := uniqueCategoryIDs(categories)
	b.registry = NewRegistry(categories...)
	b.ledger = NewLedger(transactions...)
	b.stock = NewStock(movements, materials)
	b.commissions = NewCommissions(commissions...)
	b.store = s
	for _, opt := range opts {
		opt(b)
	}
	for _, c := range renumbered {
		b.log.Warn().Str("category", c.Name).Int("id", int(c.ID)).Msg("duplicate category id renumbered")
	}
	if len(renumbered) > 0 {
		b.persist(ctx, store.KeyIncomeCategories, store.KeyExpenseCategories, store.KeyOwnerCategories)
	}
	for link, ids := range b.registry.Conflicts() {
		b.log.Warn().Str("link", string(link)).Interface("categories", ids).Msg("system link held by several categories")
	}
	return b, nil
}

// categoryKeys maps the store keys of categories to the kind they hold.
func categoryKeys() map[string]Kind {
	return map[string]Kind{
		store.KeyIncomeCategories:  Income,
		store.KeyExpenseCategories: Expense,
		store.KeyOwnerCategories:   AmountOut,
	}
}

// Save writes every collection the book owns to s. Collaborator collections
// are not written.
func (b *Book) Save(ctx context.Context, s store.Store) error {
	var errs error
	for _, key := range b.ownedKeys() {
		errs = errors.Join(errs, b.write(ctx, s, key))
	}
	return errs
}

func (b *Book) ownedKeys() []string {
	return []string{
		store.KeyTransactions,
		store.KeyIncomeCategories,
		store.KeyExpenseCategories,
		store.KeyOwnerCategories,
		store.KeyMaterials,
		store.KeyStockMovements,
		store.KeyCommissions,
	}
}

func (b *Book) write(ctx context.Context, s store.Store, key string) error {
	var v any
	switch key {
	case store.KeyTransactions:
		v = b.ledger.all()
	case store.KeyIncomeCategories, store.KeyExpenseCategories, store.KeyOwnerCategories:
		cs := make([]Category, 0)
		for c := range b.registry.Categories(categoryKeys()[key]) {
			cs = append(cs, c)
		}
		v = cs
	case store.KeyMaterials:
		v = b.stock.Materials()
	case store.KeyStockMovements:
		v = b.stock.all()
	case store.KeyCommissions:
		v = b.commissions.all()
	default:
		return fmt.Errorf("key %q is not owned by the book", key)
	}
	if err := s.Set(ctx, key, v); err != nil {
		return fmt.Errorf("save %q: %w", key, err)
	}
	return nil
}

// persist writes the keys to the bound store. Failures are logged only.
func (b *Book) persist(ctx context.Context, keys ...string) {
	if b.store == nil {
		return
	}
	for _, key := range keys {
		if err := b.write(ctx, b.store, key); err != nil {
			b.log.Error().Err(err).Str("key", key).Msg("could not persist collection")
		}
	}
}

// --- categories ---

// AddCategory creates a category, see Registry.Add.
func (b *Book) AddCategory(ctx context.Context, name string, kind Kind, link SystemLink) (Category, error) {
	c, err := b.registry.Add(name, kind, link)
	if err != nil {
		return Category{}, err
	}
	b.persist(ctx, store.KeyIncomeCategories, store.KeyExpenseCategories, store.KeyOwnerCategories)
	return c, nil
}

// LinkCategory gives the link to the category, taking it from its previous
// holder.
func (b *Book) LinkCategory(ctx context.Context, id CategoryID, link SystemLink) error {
	if err := b.registry.Link(id, link); err != nil {
		return err
	}
	b.persist(ctx, store.KeyIncomeCategories, store.KeyExpenseCategories, store.KeyOwnerCategories)
	return nil
}

// UnlinkCategory removes the link of the category.
func (b *Book) UnlinkCategory(ctx context.Context, id CategoryID) error {
	if err := b.registry.Unlink(id); err != nil {
		return err
	}
	b.persist(ctx, store.KeyIncomeCategories, store.KeyExpenseCategories, store.KeyOwnerCategories)
	return nil
}

// Resolve returns the name of the category holding the link.
func (b *Book) Resolve(link SystemLink) (string, bool) { return b.registry.Resolve(link) }

// Categories returns the categories of the kind, all of them for kind zero.
func (b *Book) Categories(kind Kind) iter.Seq[Category] { return b.registry.Categories(kind) }

// --- ledger ---

// AppendTransaction appends a transaction to the ledger, see Ledger.Append.
func (b *Book) AppendTransaction(ctx context.Context, draft Draft) (Transaction, error) {
	tx, err := b.ledger.Append(draft)
	if err != nil {
		return Transaction{}, err
	}
	b.log.Debug().Int("id", int(tx.ID)).Stringer("kind", tx.Kind).Stringer("amount", tx.Amount).Stringer("balance", tx.Balance).Msg("transaction appended")
	b.persist(ctx, store.KeyTransactions)
	return tx, nil
}

// EditTransaction replaces the fields of a transaction, see Ledger.Edit.
func (b *Book) EditTransaction(ctx context.Context, id TransactionID, draft Draft) (Transaction, error) {
	tx, err := b.ledger.Edit(id, draft)
	if err != nil {
		return Transaction{}, err
	}
	b.log.Debug().Int("id", int(tx.ID)).Msg("transaction edited")
	b.persist(ctx, store.KeyTransactions)
	return tx, nil
}

// Rebalance recomputes every balance of the ledger in date order and returns
// how many changed.
func (b *Book) Rebalance(ctx context.Context) int {
	n := b.ledger.Rebalance()
	if n > 0 {
		b.log.Info().Int("changed", n).Msg("ledger rebalanced")
		b.persist(ctx, store.KeyTransactions)
	}
	return n
}

// Balance returns the balance of the last transaction.
func (b *Book) Balance() Amount { return b.ledger.Balance() }

// Transaction returns the transaction with the id.
func (b *Book) Transaction(id TransactionID) (Transaction, bool) { return b.ledger.Transaction(id) }

// Transactions iterates the ledger in date order, see Ledger.Transactions.
func (b *Book) Transactions(filters ...func(Transaction) bool) iter.Seq2[int, Transaction] {
	return b.ledger.Transactions(filters...)
}

// CheckRemovable returns ErrReferenced when some transaction refers to the
// collaborator record described by what, for instance:
//
//	b.CheckRemovable("project P1", ByProject("P1"))
func (b *Book) CheckRemovable(what string, refersTo func(Transaction) bool) error {
	if ids := b.ledger.References(refersTo); len(ids) > 0 {
		return fmt.Errorf("cannot remove %s, %d transaction(s) refer to it: %w", what, len(ids), ErrReferenced)
	}
	return nil
}

// --- stock ---

// AddMaterial adds a material to the catalog.
func (b *Book) AddMaterial(ctx context.Context, m Material) error {
	if err := b.stock.AddMaterial(m); err != nil {
		return err
	}
	b.persist(ctx, store.KeyMaterials)
	return nil
}

// Material returns the catalog entry of the material.
func (b *Book) Material(id MaterialID) (Material, bool) { return b.stock.Material(id) }

// Materials returns the material catalog.
func (b *Book) Materials() []Material { return b.stock.Materials() }

// CurrentStock returns the quantity on hand of the material.
func (b *Book) CurrentStock(id MaterialID) Quantity { return b.stock.Current(id) }

// LatestUnitPrice returns the price of the latest purchase of the material.
func (b *Book) LatestUnitPrice(id MaterialID) (Amount, bool) { return b.stock.LatestUnitPrice(id) }

// Movements iterates the movements of the material, all of them for "".
func (b *Book) Movements(id MaterialID) iter.Seq[StockMovement] { return b.stock.Movements(id) }

// --- collaborators ---

// Vendor returns the vendor with the id.
func (b *Book) Vendor(id VendorID) (Vendor, bool) {
	i := slices.IndexFunc(b.vendors, func(v Vendor) bool { return v.ID == id })
	if i < 0 {
		return Vendor{}, false
	}
	return b.vendors[i], true
}

// MaterialCategory returns the material category with the id.
func (b *Book) MaterialCategory(id MaterialCategoryID) (MaterialCategory, bool) {
	i := slices.IndexFunc(b.materialCategories, func(c MaterialCategory) bool { return c.ID == id })
	if i < 0 {
		return MaterialCategory{}, false
	}
	return b.materialCategories[i], true
}

// VendorCategory returns the vendor category with the id.
func (b *Book) VendorCategory(id string) (VendorCategory, bool) {
	i := slices.IndexFunc(b.vendorCategories, func(c VendorCategory) bool { return c.ID == id })
	if i < 0 {
		return VendorCategory{}, false
	}
	return b.vendorCategories[i], true
}
