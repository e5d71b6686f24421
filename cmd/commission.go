package cmd

import (
	"context"
	"flag"
	"fmt"
	"slices"

	"github.com/etnz/sitebook"
	"github.com/google/subcommands"
)

// commissionCmd is the top-level command for staff commissions.
type commissionCmd struct{}

func (*commissionCmd) Name() string     { return "commission" }
func (*commissionCmd) Synopsis() string { return "record and pay staff commissions" }
func (*commissionCmd) Usage() string {
	return `sbk commission <add|pay> <options>
`
}
func (*commissionCmd) SetFlags(f *flag.FlagSet) {}

func (c *commissionCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	commander := subcommands.NewCommander(f, "commission")
	for _, sub := range c.subcommands() {
		commander.Register(sub, "")
	}
	return commander.Execute(ctx, args...)
}

func (*commissionCmd) subcommands() []subcommands.Command {
	return []subcommands.Command{&commissionAddCmd{}, &commissionPayCmd{}}
}

type commissionAddCmd struct {
	staff   string
	date    string
	amount  string
	remarks string
}

func (*commissionAddCmd) Name() string     { return "add" }
func (*commissionAddCmd) Synopsis() string { return "record a due commission" }
func (*commissionAddCmd) Usage() string {
	return `sbk commission add -staff <id> -a <amount> [-d <date>] [-remarks <text>]
`
}

func (c *commissionAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.staff, "staff", "", "Staff id")
	f.StringVar(&c.date, "d", "today", "Date the commission was earned")
	f.StringVar(&c.amount, "a", "", "Commission amount")
	f.StringVar(&c.remarks, "remarks", "", "Remarks")
}

func (c *commissionAddCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := parseDate("d", c.date)
	if err != nil {
		return fail(err)
	}
	amount, err := parseAmount("a", c.amount)
	if err != nil {
		return fail(err)
	}
	s, err := openSession(ctx)
	if err != nil {
		return fail(err)
	}
	defer s.Close()

	rec, err := s.book.AddCommission(ctx, sitebook.StaffID(c.staff), on, amount, c.remarks)
	if err != nil {
		return fail(err)
	}
	fmt.Fprintf(stdout, "Added commission #%v of %s for %s\n", rec.ID, s.render.Money(rec.Amount), rec.Staff)
	return subcommands.ExitSuccess
}

type commissionPayCmd struct {
	staff   string
	ids     string
	total   string
	date    string
	remarks string
}

func (*commissionPayCmd) Name() string     { return "pay" }
func (*commissionPayCmd) Synopsis() string { return "pay due commissions of a staff member" }
func (*commissionPayCmd) Usage() string {
	return `sbk commission pay -staff <id> -ids <id,id,...> [-total <amount>] [-d <date>] [-remarks <text>]

  Posts one expense in the category holding the commission link and marks the
  commissions paid. The total defaults to the sum of the commissions.
`
}

func (c *commissionPayCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.staff, "staff", "", "Staff id")
	f.StringVar(&c.ids, "ids", "", "Comma separated commission ids")
	f.StringVar(&c.total, "total", "", "Amount paid, defaults to the sum of the commissions")
	f.StringVar(&c.date, "d", "today", "Payment date")
	f.StringVar(&c.remarks, "remarks", "", "Details of the payment")
}

func (c *commissionPayCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ids, err := parseIDs[sitebook.CommissionID]("ids", c.ids)
	if err != nil {
		return fail(err)
	}
	on, err := parseDate("d", c.date)
	if err != nil {
		return fail(err)
	}
	s, err := openSession(ctx)
	if err != nil {
		return fail(err)
	}
	defer s.Close()

	var total sitebook.Amount
	if c.total != "" {
		if total, err = parseAmount("total", c.total); err != nil {
			return fail(err)
		}
	} else {
		total = sitebook.A(0)
		for _, id := range ids {
			if rec, ok := s.book.Commission(id); ok {
				total = total.Add(rec.Amount)
			}
		}
	}

	res, err := s.book.PayCommission(ctx, sitebook.StaffID(c.staff), ids, sitebook.Payment{Date: on, Remarks: c.remarks, Total: total})
	if err != nil {
		return fail(err)
	}
	fmt.Fprintf(stdout, "Paid %d commission(s) with transaction #%v of %s\n", len(res.Paid), res.Transaction.ID, s.render.Money(res.Transaction.Amount))
	printAdvisories(res.Advisories)
	return subcommands.ExitSuccess
}

type commissionsCmd struct {
	staff string
	due   bool
}

func (*commissionsCmd) Name() string     { return "commissions" }
func (*commissionsCmd) Synopsis() string { return "list commissions" }
func (*commissionsCmd) Usage() string {
	return `sbk commissions [-staff <id>] [-due]
`
}

func (c *commissionsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.staff, "staff", "", "Only the commissions of this staff member")
	f.BoolVar(&c.due, "due", false, "Only unpaid commissions")
}

func (c *commissionsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := openSession(ctx)
	if err != nil {
		return fail(err)
	}
	defer s.Close()

	staff := sitebook.StaffID(c.staff)
	records := s.book.Commissions(staff)
	if c.due {
		records = s.book.DueCommissions(staff)
	}
	printMarkdown(s.render.Commissions(slices.Collect(records)))
	return subcommands.ExitSuccess
}
