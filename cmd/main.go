package cmd

import (
	"flag"

	"github.com/etnz/sitebook"
	"github.com/etnz/sitebook/docs"
	"github.com/etnz/sitebook/internal/config"
	"github.com/etnz/sitebook/store"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Commands are the top-level commands of sbk, by group.
var Commands = map[string][]subcommands.Command{
	"categories": {&categoryCmd{}, &categoriesCmd{}},
	"ledger":     {&txCmd{}, &rebalanceCmd{}},
	"stock":      {&materialCmd{}, &stockCmd{}},
	"staff":      {&commissionCmd{}, &commissionsCmd{}},
	"data":       {&queryCmd{}},
	"help":       {&topicCmd{}},
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for group, cmds := range Commands {
		for _, cmd := range cmds {
			c.Register(cmd, group)
		}
	}
}

// parent is a command dispatching to subcommands.
type parent interface {
	subcommands() []subcommands.Command
}

// Completion describes the command line of sbk for shell completion.
func Completion() *complete.Command {
	root := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: flagPredictors(flag.CommandLine),
	}
	for _, cmds := range Commands {
		for _, cmd := range cmds {
			root.Sub[cmd.Name()] = completion(cmd)
		}
	}
	return root
}

func completion(cmd subcommands.Command) *complete.Command {
	f := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.SetFlags(f)
	c := &complete.Command{Flags: flagPredictors(f)}
	if _, ok := cmd.(*topicCmd); ok {
		if topics, err := docs.GetAllTopics(); err == nil {
			c.Args = predict.Set(topics)
		}
	}
	if p, ok := cmd.(parent); ok {
		c.Sub = map[string]*complete.Command{}
		for _, sub := range p.subcommands() {
			c.Sub[sub.Name()] = completion(sub)
		}
	}
	return c
}

// flagPredictors predicts the values of the well known flags, anything for
// the others.
func flagPredictors(f *flag.FlagSet) map[string]complete.Predictor {
	kinds := predict.Set{sitebook.Income.String(), sitebook.Expense.String(), sitebook.AmountOut.String()}
	var links predict.Set
	for _, l := range sitebook.SystemLinks {
		links = append(links, string(l))
	}
	known := map[string]complete.Predictor{
		"k":         kinds,
		"link":      links,
		"key":       predict.Set(store.Keys),
		"store":     predict.Set{config.BackendMemory, config.BackendDir, config.BackendSQLite, config.BackendMySQL},
		"path":      predict.Files("*"),
		"log-level": predict.Set{"debug", "info", "warn", "error"},
	}
	flags := map[string]complete.Predictor{}
	f.VisitAll(func(fl *flag.Flag) {
		switch p, ok := known[fl.Name]; {
		case ok && !(fl.Name == "path" && f != flag.CommandLine):
			flags[fl.Name] = p
		case isBool(fl):
			flags[fl.Name] = predict.Nothing
		default:
			flags[fl.Name] = predict.Something
		}
	})
	return flags
}

func isBool(fl *flag.Flag) bool {
	b, ok := fl.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}
