package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"slices"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/sitebook/store"
	"github.com/google/subcommands"
)

type queryCmd struct {
	key  string
	path string
}

func (*queryCmd) Name() string     { return "query" }
func (*queryCmd) Synopsis() string { return "evaluate a JSONPath expression on a stored collection" }
func (*queryCmd) Usage() string {
	return `sbk query -key <collection> [-path <jsonpath>]

  Prints the result as JSON. For instance:

    sbk query -key transactions -path '$[?(@.kind=="income")].amount'
`
}

func (c *queryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.key, "key", store.KeyTransactions, "Collection to query")
	f.StringVar(&c.path, "path", "$", "JSONPath expression")
}

func (c *queryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !slices.Contains(store.Keys, c.key) {
		return fail(fmt.Errorf("unknown collection %q", c.key))
	}
	s, err := openSession(ctx)
	if err != nil {
		return fail(err)
	}
	defer s.Close()

	var doc any
	if err := s.store.Get(ctx, c.key, &doc); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return fail(err)
		}
		doc = []any{}
	}
	v, err := jsonpath.Get(c.path, doc)
	if err != nil {
		return fail(fmt.Errorf("evaluate %q: %w", c.path, err))
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fail(err)
	}
	fmt.Fprintln(stdout, string(out))
	return subcommands.ExitSuccess
}
