// Package cmd implements the CLI application to keep a site book.
//
// Every command opens the book from the configured store, runs one
// operation and leaves the changes persisted in the store.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/sitebook"
	"github.com/etnz/sitebook/date"
	"github.com/etnz/sitebook/internal/config"
	"github.com/etnz/sitebook/internal/logger"
	"github.com/etnz/sitebook/renderer"
	"github.com/etnz/sitebook/store"
	"github.com/etnz/sitebook/store/mysql"
	"github.com/etnz/sitebook/store/sqlite"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.
// Empty flags fall back to the environment, see internal/config.

var (
	storeKind = flag.String("store", "", "Store backend: memory, dir, sqlite or mysql (default $SITEBOOK_STORE or dir)")
	storePath = flag.String("path", "", "Book folder, or sqlite file (default $SITEBOOK_PATH or .sitebook)")
	currency  = flag.String("currency", "", "Currency code used to format amounts (default $SITEBOOK_CURRENCY or USD)")
	logLevel  = flag.String("log-level", "", "Log level: debug, info, warn or error (default $SITEBOOK_LOG_LEVEL or info)")
	rebalance = flag.Bool("rebalance", false, "Recompute every balance after each change, overrides $SITEBOOK_REBALANCE when set")
	plain     = flag.Bool("plain", false, "Print raw markdown instead of rendering it for the terminal")
)

// stdout is where commands print their results.
var stdout io.Writer = os.Stdout

// loadConfig reads the environment and applies the global flags on top.
func loadConfig() (config.Config, error) {
	cfg, err := config.Parse()
	if err != nil {
		return config.Config{}, err
	}
	if *storeKind != "" {
		cfg.Store = *storeKind
	}
	if *storePath != "" {
		cfg.Path = *storePath
	}
	if *currency != "" {
		cfg.Currency = *currency
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *rebalance {
		cfg.Rebalance = true
	}
	return cfg, cfg.Validate()
}

// OpenStore opens the store configured by cfg. The returned function
// releases it.
func OpenStore(cfg config.Config) (store.Store, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Store {
	case config.BackendMemory:
		return store.NewMemory(), noop, nil
	case config.BackendDir:
		s, err := store.NewDir(cfg.Path)
		return s, noop, err
	case config.BackendSQLite:
		s, err := sqlite.Open(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case config.BackendMySQL:
		s, err := mysql.Open(cfg.MySQLDSN)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

// session is an opened book with everything a command needs to report on it.
type session struct {
	book   *sitebook.Book
	store  store.Store
	render *renderer.Renderer
	log    zerolog.Logger
	close  func() error
}

// openSession opens the configured book.
func openSession(ctx context.Context) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log := logger.New(cfg.LogLevel)
	render, err := renderer.New(cfg.Currency)
	if err != nil {
		return nil, err
	}
	s, closer, err := OpenStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store, err)
	}
	ctx = logger.WithContext(ctx, log)
	book, err := sitebook.Open(ctx, s, sitebook.WithLogger(log), sitebook.WithRebalance(cfg.Rebalance))
	if err != nil {
		closer()
		return nil, err
	}
	log.Debug().Str("store", cfg.Store).Str("path", cfg.Path).Msg("book opened")
	return &session{book: book, store: s, render: render, log: log, close: closer}, nil
}

// Close releases the store of the session.
func (s *session) Close() {
	if err := s.close(); err != nil {
		s.log.Error().Err(err).Msg("could not close the store")
	}
}

// printMarkdown prints markdown to stdout, rendered for the terminal unless
// -plain is set.
func printMarkdown(md string) {
	if *plain {
		fmt.Fprint(stdout, md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Fprint(stdout, out)
			return
		}
	}
	fmt.Fprint(stdout, md)
}

// printAdvisories reports the advisories of an operation.
func printAdvisories(as sitebook.Advisories) {
	if len(as) > 0 {
		fmt.Fprint(stdout, renderer.Advisories(as))
	}
}

// fail prints the error to stderr and returns the failure status.
func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}

// parsing helpers for flag values.

func parseDate(name, value string) (date.Date, error) {
	d, err := date.Parse(value)
	if err != nil {
		return date.Date{}, fmt.Errorf("-%s: %w", name, err)
	}
	return d, nil
}

func parseAmount(name, value string) (sitebook.Amount, error) {
	if value == "" {
		return sitebook.Amount{}, fmt.Errorf("-%s is required", name)
	}
	a, err := sitebook.ParseAmount(value)
	if err != nil {
		return sitebook.Amount{}, fmt.Errorf("-%s: %w", name, err)
	}
	return a, nil
}

func parseQuantity(name, value string) (sitebook.Quantity, error) {
	if value == "" {
		return sitebook.Quantity{}, fmt.Errorf("-%s is required", name)
	}
	q, err := sitebook.ParseQuantity(value)
	if err != nil {
		return sitebook.Quantity{}, fmt.Errorf("-%s: %w", name, err)
	}
	return q, nil
}

// parseIDs parses a comma separated list of ids.
func parseIDs[ID ~int](name, value string) ([]ID, error) {
	var ids []ID
	for _, field := range strings.Split(value, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("-%s: %q is not an id", name, field)
		}
		ids = append(ids, ID(n))
	}
	if len(ids) == 0 {
		return nil, errors.New("-" + name + " is required")
	}
	return ids, nil
}
