package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"slices"

	"github.com/etnz/sitebook"
	"github.com/etnz/sitebook/renderer"
	"github.com/google/subcommands"
)

// categoryCmd is the top-level command to manage categories.
type categoryCmd struct{}

func (*categoryCmd) Name() string     { return "category" }
func (*categoryCmd) Synopsis() string { return "manage transaction categories and their system links" }
func (*categoryCmd) Usage() string {
	return `sbk category <add|link|unlink> <options>

  Manages transaction categories. A system link binds a fixed role (vendorPayment,
  commission, ...) to one category; generated transactions are tagged with it.
`
}
func (*categoryCmd) SetFlags(f *flag.FlagSet) {}

func (c *categoryCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	commander := subcommands.NewCommander(f, "category")
	for _, sub := range c.subcommands() {
		commander.Register(sub, "")
	}
	return commander.Execute(ctx, args...)
}

func (*categoryCmd) subcommands() []subcommands.Command {
	return []subcommands.Command{&categoryAddCmd{}, &categoryLinkCmd{}, &categoryUnlinkCmd{}}
}

type categoryAddCmd struct {
	name string
	kind string
	link string
}

func (*categoryAddCmd) Name() string     { return "add" }
func (*categoryAddCmd) Synopsis() string { return "add a category" }
func (*categoryAddCmd) Usage() string {
	return `sbk category add -n <name> -k <income|expense|amountOut> [-link <role>]
`
}

func (c *categoryAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "n", "", "Category name, unique across kinds")
	f.StringVar(&c.kind, "k", "", "Kind: income, expense or amountOut")
	f.StringVar(&c.link, "link", "", "Optional system link to take for this category")
}

func (c *categoryAddCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	kind, err := sitebook.ParseKind(c.kind)
	if err != nil {
		return fail(err)
	}
	link, err := sitebook.ParseSystemLink(c.link)
	if err != nil {
		return fail(err)
	}
	s, err := openSession(ctx)
	if err != nil {
		return fail(err)
	}
	defer s.Close()

	cat, err := s.book.AddCategory(ctx, c.name, kind, link)
	if err != nil {
		return fail(err)
	}
	fmt.Fprintf(stdout, "Added %s category #%v %q\n", cat.Kind, cat.ID, cat.Name)
	return subcommands.ExitSuccess
}

type categoryLinkCmd struct {
	id   int
	link string
}

func (*categoryLinkCmd) Name() string     { return "link" }
func (*categoryLinkCmd) Synopsis() string { return "give a system link to a category" }
func (*categoryLinkCmd) Usage() string {
	return `sbk category link -id <category id> -link <role>

  The category holding the link before loses it.
`
}

func (c *categoryLinkCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.id, "id", 0, "Category id")
	f.StringVar(&c.link, "link", "", "System link")
}

func (c *categoryLinkCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	link, err := sitebook.ParseSystemLink(c.link)
	if err != nil {
		return fail(err)
	}
	if link == sitebook.NoLink {
		return fail(errors.New("-link is required"))
	}
	s, err := openSession(ctx)
	if err != nil {
		return fail(err)
	}
	defer s.Close()

	if err := s.book.LinkCategory(ctx, sitebook.CategoryID(c.id), link); err != nil {
		return fail(err)
	}
	fmt.Fprintf(stdout, "Category #%d now holds %q\n", c.id, link)
	return subcommands.ExitSuccess
}

type categoryUnlinkCmd struct {
	id int
}

func (*categoryUnlinkCmd) Name() string     { return "unlink" }
func (*categoryUnlinkCmd) Synopsis() string { return "remove the system link of a category" }
func (*categoryUnlinkCmd) Usage() string {
	return `sbk category unlink -id <category id>
`
}

func (c *categoryUnlinkCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.id, "id", 0, "Category id")
}

func (c *categoryUnlinkCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := openSession(ctx)
	if err != nil {
		return fail(err)
	}
	defer s.Close()

	if err := s.book.UnlinkCategory(ctx, sitebook.CategoryID(c.id)); err != nil {
		return fail(err)
	}
	fmt.Fprintf(stdout, "Category #%d holds no system link\n", c.id)
	return subcommands.ExitSuccess
}

type categoriesCmd struct{}

func (*categoriesCmd) Name() string     { return "categories" }
func (*categoriesCmd) Synopsis() string { return "list categories" }
func (*categoriesCmd) Usage() string {
	return `sbk categories

  Lists the categories of every kind with their system links.
`
}
func (*categoriesCmd) SetFlags(f *flag.FlagSet) {}

func (*categoriesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := openSession(ctx)
	if err != nil {
		return fail(err)
	}
	defer s.Close()

	printMarkdown(renderer.Categories(slices.Collect(s.book.Categories(0))))
	return subcommands.ExitSuccess
}
