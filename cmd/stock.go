package cmd

import (
	"context"
	"flag"
	"fmt"
	"slices"

	"github.com/etnz/sitebook"
	"github.com/etnz/sitebook/renderer"
	"github.com/google/subcommands"
)

// materialCmd is the top-level command for the material catalog.
type materialCmd struct{}

func (*materialCmd) Name() string     { return "material" }
func (*materialCmd) Synopsis() string { return "manage the material catalog" }
func (*materialCmd) Usage() string {
	return `sbk material add <options>
`
}
func (*materialCmd) SetFlags(f *flag.FlagSet) {}

func (c *materialCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	commander := subcommands.NewCommander(f, "material")
	for _, sub := range c.subcommands() {
		commander.Register(sub, "")
	}
	return commander.Execute(ctx, args...)
}

func (*materialCmd) subcommands() []subcommands.Command {
	return []subcommands.Command{&materialAddCmd{}}
}

type materialAddCmd struct {
	material sitebook.Material
}

func (*materialAddCmd) Name() string     { return "add" }
func (*materialAddCmd) Synopsis() string { return "add a material to the catalog" }
func (*materialAddCmd) Usage() string {
	return `sbk material add -id <id> -n <name> [-cat <material category id>] [-unit <unit>]
`
}

func (c *materialAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar((*string)(&c.material.ID), "id", "", "Material id")
	f.StringVar(&c.material.Name, "n", "", "Material name")
	f.StringVar((*string)(&c.material.Category), "cat", "", "Material category id")
	f.StringVar(&c.material.Unit, "unit", "", "Unit of quantities, for instance bag or m3")
}

func (c *materialAddCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := openSession(ctx)
	if err != nil {
		return fail(err)
	}
	defer s.Close()

	if c.material.Category != "" {
		if _, ok := s.book.MaterialCategory(c.material.Category); !ok {
			s.log.Warn().Str("category", string(c.material.Category)).Msg("unknown material category")
		}
	}
	if err := s.book.AddMaterial(ctx, c.material); err != nil {
		return fail(err)
	}
	fmt.Fprintf(stdout, "Added material %q\n", c.material.ID)
	return subcommands.ExitSuccess
}

// stockCmd is the top-level command for stock movements.
type stockCmd struct{}

func (*stockCmd) Name() string     { return "stock" }
func (*stockCmd) Synopsis() string { return "record purchases and issues of materials" }
func (*stockCmd) Usage() string {
	return `sbk stock <add|issue|list> <options>

  Purchases from a vendor are paid in the category holding the vendorPayment
  link. Issues to a project are charged in the category holding the
  constructionMaterial link, at the latest purchase price.
`
}
func (*stockCmd) SetFlags(f *flag.FlagSet) {}

func (c *stockCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	commander := subcommands.NewCommander(f, "stock")
	for _, sub := range c.subcommands() {
		commander.Register(sub, "")
	}
	return commander.Execute(ctx, args...)
}

func (*stockCmd) subcommands() []subcommands.Command {
	return []subcommands.Command{&stockAddCmd{}, &stockIssueCmd{}, &stockListCmd{}}
}

type stockAddCmd struct {
	date     string
	material string
	quantity string
	price    string
	vendor   string
	project  string
	details  string
}

func (*stockAddCmd) Name() string     { return "add" }
func (*stockAddCmd) Synopsis() string { return "record a purchase of material" }
func (*stockAddCmd) Usage() string {
	return `sbk stock add -m <material> -q <quantity> -p <unit price> [-vendor <id>] [-project <id>] [-d <date>] [-details <text>]
`
}

func (c *stockAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "today", "Purchase date")
	f.StringVar(&c.material, "m", "", "Material id")
	f.StringVar(&c.quantity, "q", "", "Quantity purchased")
	f.StringVar(&c.price, "p", "0", "Unit price")
	f.StringVar(&c.vendor, "vendor", "", "Vendor id, without vendor nothing is paid")
	f.StringVar(&c.project, "project", "", "Project the purchase is made for")
	f.StringVar(&c.details, "details", "", "Details of the payment, generated when empty")
}

func (c *stockAddCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := parseDate("d", c.date)
	if err != nil {
		return fail(err)
	}
	quantity, err := parseQuantity("q", c.quantity)
	if err != nil {
		return fail(err)
	}
	price, err := parseAmount("p", c.price)
	if err != nil {
		return fail(err)
	}
	s, err := openSession(ctx)
	if err != nil {
		return fail(err)
	}
	defer s.Close()

	res, err := s.book.AddStock(ctx, sitebook.Purchase{
		Date:      on,
		Material:  sitebook.MaterialID(c.material),
		Quantity:  quantity,
		UnitPrice: price,
		Vendor:    sitebook.VendorID(c.vendor),
		Project:   sitebook.ProjectID(c.project),
		Details:   c.details,
	})
	if err != nil {
		return fail(err)
	}
	printStockResult(s, res)
	return subcommands.ExitSuccess
}

type stockIssueCmd struct {
	date     string
	material string
	quantity string
	project  string
	details  string
	check    bool
}

func (*stockIssueCmd) Name() string     { return "issue" }
func (*stockIssueCmd) Synopsis() string { return "record material leaving the stock" }
func (*stockIssueCmd) Usage() string {
	return `sbk stock issue -m <material> -q <quantity> [-project <id>] [-d <date>] [-details <text>] [-check]

  Stock may become negative unless -check is given.
`
}

func (c *stockIssueCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "today", "Issue date")
	f.StringVar(&c.material, "m", "", "Material id")
	f.StringVar(&c.quantity, "q", "", "Quantity issued")
	f.StringVar(&c.project, "project", "", "Project charged with the cost")
	f.StringVar(&c.details, "details", "", "Details of the charge, generated when empty")
	f.BoolVar(&c.check, "check", false, "Refuse to issue more than the stock on hand")
}

func (c *stockIssueCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := parseDate("d", c.date)
	if err != nil {
		return fail(err)
	}
	quantity, err := parseQuantity("q", c.quantity)
	if err != nil {
		return fail(err)
	}
	s, err := openSession(ctx)
	if err != nil {
		return fail(err)
	}
	defer s.Close()

	material := sitebook.MaterialID(c.material)
	if c.check {
		if err := s.book.CheckIssue(material, quantity); err != nil {
			return fail(err)
		}
	}
	res, err := s.book.IssueStock(ctx, sitebook.Issue{
		Date:     on,
		Material: material,
		Quantity: quantity,
		Project:  sitebook.ProjectID(c.project),
		Details:  c.details,
	})
	if err != nil {
		return fail(err)
	}
	printStockResult(s, res)
	return subcommands.ExitSuccess
}

func printStockResult(s *session, res sitebook.StockResult) {
	m := res.Movement
	fmt.Fprintf(stdout, "Recorded movement #%v: %s %s of %s, %s on hand\n", m.ID, m.Direction, m.Quantity, m.Material, s.book.CurrentStock(m.Material))
	if tx := res.Transaction; tx != nil {
		fmt.Fprintf(stdout, "Posted transaction #%v: %s %s in %q\n", tx.ID, tx.Kind, s.render.Money(tx.Amount), tx.Category)
	}
	printAdvisories(res.Advisories)
}

type stockListCmd struct {
	material string
}

func (*stockListCmd) Name() string     { return "list" }
func (*stockListCmd) Synopsis() string { return "list stock on hand, or the movements of a material" }
func (*stockListCmd) Usage() string {
	return `sbk stock list [-m <material>]
`
}

func (c *stockListCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.material, "m", "", "List the movements of this material")
}

func (c *stockListCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := openSession(ctx)
	if err != nil {
		return fail(err)
	}
	defer s.Close()

	if c.material != "" {
		printMarkdown(s.render.Movements(slices.Collect(s.book.Movements(sitebook.MaterialID(c.material)))))
		return subcommands.ExitSuccess
	}
	printMarkdown(s.render.Stock(stockLines(s.book)))
	return subcommands.ExitSuccess
}

// stockLines returns the catalog materials, then the materials that only
// appear in movements.
func stockLines(b *sitebook.Book) []renderer.StockLine {
	materials := b.Materials()
	for m := range b.Movements("") {
		if !slices.ContainsFunc(materials, func(c sitebook.Material) bool { return c.ID == m.Material }) {
			materials = append(materials, sitebook.Material{ID: m.Material})
		}
	}
	var lines []renderer.StockLine
	for _, m := range materials {
		price, ok := b.LatestUnitPrice(m.ID)
		lines = append(lines, renderer.StockLine{
			Material: m,
			OnHand:   b.CurrentStock(m.ID),
			Price:    price,
			Priced:   ok,
		})
	}
	return lines
}
