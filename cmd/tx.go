package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/sitebook"
	"github.com/etnz/sitebook/date"
	"github.com/google/subcommands"
)

// txCmd is the top-level command for the cash ledger.
type txCmd struct{}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "add, edit and list ledger transactions" }
func (*txCmd) Usage() string {
	return `sbk tx <add|edit|list> <options>
`
}
func (*txCmd) SetFlags(f *flag.FlagSet) {}

func (c *txCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	commander := subcommands.NewCommander(f, "tx")
	for _, sub := range c.subcommands() {
		commander.Register(sub, "")
	}
	return commander.Execute(ctx, args...)
}

func (*txCmd) subcommands() []subcommands.Command {
	return []subcommands.Command{&txAddCmd{}, &txEditCmd{}, &txListCmd{}}
}

// draftFlags are the flags describing a transaction.
type draftFlags struct {
	date     string
	kind     string
	amount   string
	category string
	details  string
	refs     sitebook.Refs
}

func (d *draftFlags) SetFlags(f *flag.FlagSet, defaultDate string) {
	f.StringVar(&d.date, "d", defaultDate, "Transaction date (YYYY-MM-DD, today, -2d)")
	f.StringVar(&d.kind, "k", "", "Kind: income, expense or amountOut")
	f.StringVar(&d.amount, "a", "", "Amount, positive")
	f.StringVar(&d.category, "c", "", "Category name")
	f.StringVar(&d.details, "details", "", "Free text details")
	f.StringVar((*string)(&d.refs.Project), "project", "", "Project id")
	f.StringVar((*string)(&d.refs.Staff), "staff", "", "Staff id")
	f.StringVar((*string)(&d.refs.Laborer), "laborer", "", "Laborer id")
	f.StringVar((*string)(&d.refs.Contact), "contact", "", "Contact id")
	f.StringVar((*string)(&d.refs.Vendor), "vendor", "", "Vendor id")
}

// apply overrides the fields of base with the flags that are set.
func (d *draftFlags) apply(base sitebook.Draft) (sitebook.Draft, error) {
	var err error
	if d.date != "" {
		if base.Date, err = parseDate("d", d.date); err != nil {
			return base, err
		}
	}
	if d.kind != "" {
		if base.Kind, err = sitebook.ParseKind(d.kind); err != nil {
			return base, err
		}
	}
	if d.amount != "" {
		if base.Amount, err = parseAmount("a", d.amount); err != nil {
			return base, err
		}
	}
	if d.category != "" {
		base.Category = d.category
	}
	if d.details != "" {
		base.Details = d.details
	}
	for _, ref := range []struct{ from, to *string }{
		{(*string)(&d.refs.Project), (*string)(&base.Project)},
		{(*string)(&d.refs.Staff), (*string)(&base.Staff)},
		{(*string)(&d.refs.Laborer), (*string)(&base.Laborer)},
		{(*string)(&d.refs.Contact), (*string)(&base.Contact)},
		{(*string)(&d.refs.Vendor), (*string)(&base.Vendor)},
	} {
		if *ref.from != "" {
			*ref.to = *ref.from
		}
	}
	return base, nil
}

type txAddCmd struct {
	draftFlags
}

func (*txAddCmd) Name() string     { return "add" }
func (*txAddCmd) Synopsis() string { return "append a transaction to the ledger" }
func (*txAddCmd) Usage() string {
	return `sbk tx add -k <kind> -a <amount> [-d <date>] [-c <category>] [-details <text>] [-project <id>] ...

  Appends a transaction. Its balance is the balance of the last transaction of
  the ledger plus or minus the amount.
`
}

func (c *txAddCmd) SetFlags(f *flag.FlagSet) { c.draftFlags.SetFlags(f, "today") }

func (c *txAddCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.amount == "" {
		return fail(fmt.Errorf("-a is required"))
	}
	draft, err := c.apply(sitebook.Draft{})
	if err != nil {
		return fail(err)
	}
	s, err := openSession(ctx)
	if err != nil {
		return fail(err)
	}
	defer s.Close()

	tx, err := s.book.AppendTransaction(ctx, draft)
	if err != nil {
		return fail(err)
	}
	fmt.Fprintf(stdout, "Added transaction #%v: %s %s, balance %s\n", tx.ID, tx.Kind, s.render.Money(tx.Amount), s.render.Money(tx.Balance))
	return subcommands.ExitSuccess
}

type txEditCmd struct {
	id int
	draftFlags
}

func (*txEditCmd) Name() string     { return "edit" }
func (*txEditCmd) Synopsis() string { return "edit a transaction" }
func (*txEditCmd) Usage() string {
	return `sbk tx edit -id <id> [-d <date>] [-k <kind>] [-a <amount>] ...

  Replaces the fields given as flags. Stored balances are not recomputed, use
  'sbk rebalance' for that.
`
}

func (c *txEditCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.id, "id", 0, "Transaction id")
	c.draftFlags.SetFlags(f, "")
}

func (c *txEditCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := openSession(ctx)
	if err != nil {
		return fail(err)
	}
	defer s.Close()

	id := sitebook.TransactionID(c.id)
	tx, ok := s.book.Transaction(id)
	if !ok {
		return fail(fmt.Errorf("transaction %v: %w", id, sitebook.ErrNotFound))
	}
	draft, err := c.apply(sitebook.Draft{
		Date:     tx.Date,
		Details:  tx.Details,
		Category: tx.Category,
		Kind:     tx.Kind,
		Amount:   tx.Amount,
		Refs:     tx.Refs,
	})
	if err != nil {
		return fail(err)
	}
	if _, err := s.book.EditTransaction(ctx, id, draft); err != nil {
		return fail(err)
	}
	fmt.Fprintf(stdout, "Edited transaction #%v\n", id)
	return subcommands.ExitSuccess
}

type txListCmd struct {
	start    string
	end      string
	project  string
	vendor   string
	staff    string
	category string
	kind     string
}

func (*txListCmd) Name() string     { return "list" }
func (*txListCmd) Synopsis() string { return "list ledger transactions" }
func (*txListCmd) Usage() string {
	return `sbk tx list [-s <start date>] [-e <end date>] [-project <id>] [-vendor <id>] [-staff <id>] [-c <category>] [-k <kind>]

  Lists transactions in date order with their stored balance.
`
}

func (c *txListCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "s", "", "Only transactions on or after this date")
	f.StringVar(&c.end, "e", "", "Only transactions on or before this date")
	f.StringVar(&c.project, "project", "", "Only transactions of this project")
	f.StringVar(&c.vendor, "vendor", "", "Only transactions of this vendor")
	f.StringVar(&c.staff, "staff", "", "Only transactions of this staff member")
	f.StringVar(&c.category, "c", "", "Only transactions of this category")
	f.StringVar(&c.kind, "k", "", "Only transactions of this kind")
}

func (c *txListCmd) filters() ([]func(sitebook.Transaction) bool, error) {
	var filters []func(sitebook.Transaction) bool
	if c.start != "" || c.end != "" {
		var r date.Range
		var err error
		if c.start != "" {
			if r.From, err = parseDate("s", c.start); err != nil {
				return nil, err
			}
		}
		if c.end != "" {
			if r.To, err = parseDate("e", c.end); err != nil {
				return nil, err
			}
		}
		filters = append(filters, sitebook.InRange(r))
	}
	if c.project != "" {
		filters = append(filters, sitebook.ByProject(sitebook.ProjectID(c.project)))
	}
	if c.vendor != "" {
		filters = append(filters, sitebook.ByVendor(sitebook.VendorID(c.vendor)))
	}
	if c.staff != "" {
		filters = append(filters, sitebook.ByStaff(sitebook.StaffID(c.staff)))
	}
	if c.category != "" {
		filters = append(filters, sitebook.ByCategory(c.category))
	}
	if c.kind != "" {
		k, err := sitebook.ParseKind(c.kind)
		if err != nil {
			return nil, err
		}
		filters = append(filters, sitebook.ByKind(k))
	}
	return filters, nil
}

func (c *txListCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	filters, err := c.filters()
	if err != nil {
		return fail(err)
	}
	s, err := openSession(ctx)
	if err != nil {
		return fail(err)
	}
	defer s.Close()

	var txs []sitebook.Transaction
	for _, tx := range s.book.Transactions(filters...) {
		txs = append(txs, tx)
	}
	printMarkdown(s.render.Transactions(txs, s.book.Balance()))
	return subcommands.ExitSuccess
}

type rebalanceCmd struct{}

func (*rebalanceCmd) Name() string     { return "rebalance" }
func (*rebalanceCmd) Synopsis() string { return "recompute every stored balance in date order" }
func (*rebalanceCmd) Usage() string {
	return `sbk rebalance

  Balances are computed when a transaction is appended, relative to the last
  transaction of the ledger. Back-dated transactions therefore leave balances
  that do not follow the date order: rebalance fixes them.
`
}
func (*rebalanceCmd) SetFlags(f *flag.FlagSet) {}

func (*rebalanceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := openSession(ctx)
	if err != nil {
		return fail(err)
	}
	defer s.Close()

	n := s.book.Rebalance(ctx)
	fmt.Fprintf(stdout, "%d balance(s) changed, balance is %s\n", n, s.render.Money(s.book.Balance()))
	return subcommands.ExitSuccess
}
