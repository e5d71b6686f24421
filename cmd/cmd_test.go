package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/etnz/sitebook/store"
	"github.com/google/go-cmp/cmp"
	"github.com/google/subcommands"
)

// setup points the global flags to a fresh book folder and captures stdout.
func setup(t *testing.T) (dir string, out *bytes.Buffer) {
	t.Helper()
	dir = t.TempDir()
	oldKind, oldPath, oldCurrency, oldPlain, oldStdout := *storeKind, *storePath, *currency, *plain, stdout
	*storeKind, *storePath, *currency, *plain = "dir", dir, "USD", true
	out = &bytes.Buffer{}
	stdout = out
	t.Cleanup(func() {
		*storeKind, *storePath, *currency, *plain, stdout = oldKind, oldPath, oldCurrency, oldPlain, oldStdout
	})
	return dir, out
}

// run executes cmd with the command line args.
func run(t *testing.T, cmd subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	f := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.SetFlags(f)
	if err := f.Parse(args); err != nil {
		t.Fatalf("parsing %v: %v", args, err)
	}
	return cmd.Execute(context.Background(), f)
}

func mustRun(t *testing.T, cmd subcommands.Command, args ...string) {
	t.Helper()
	if status := run(t, cmd, args...); status != subcommands.ExitSuccess {
		t.Fatalf("%s %v: status %v", cmd.Name(), args, status)
	}
}

func configure(t *testing.T) {
	t.Helper()
	mustRun(t, &categoryCmd{}, "add", "-n", "Client payments", "-k", "income", "-link", "projectPayment")
	mustRun(t, &categoryCmd{}, "add", "-n", "Vendor payments", "-k", "expense", "-link", "vendorPayment")
	mustRun(t, &categoryCmd{}, "add", "-n", "Materials", "-k", "expense", "-link", "constructionMaterial")
	mustRun(t, &categoryCmd{}, "add", "-n", "Commissions", "-k", "expense", "-link", "commission")
}

func TestCategoryCommands(t *testing.T) {
	dir, out := setup(t)
	configure(t)
	mustRun(t, &categoryCmd{}, "add", "-n", "Suppliers", "-k", "expense")
	mustRun(t, &categoryCmd{}, "link", "-id", "5", "-link", "vendorPayment")

	var cats []map[string]any
	data, err := os.ReadFile(filepath.Join(dir, store.KeyExpenseCategories+".json"))
	if err != nil {
		t.Fatalf("expense categories not written: %v", err)
	}
	if err := json.Unmarshal(data, &cats); err != nil {
		t.Fatal(err)
	}
	links := map[string]any{}
	for _, c := range cats {
		links[c["name"].(string)] = c["systemLink"]
	}
	want := map[string]any{"Vendor payments": nil, "Materials": "constructionMaterial", "Commissions": "commission", "Suppliers": "vendorPayment"}
	if diff := cmp.Diff(want, links); diff != "" {
		t.Errorf("links mismatch (-want +got):\n%s", diff)
	}

	mustRun(t, &categoryCmd{}, "unlink", "-id", "5")
	out.Reset()
	mustRun(t, &categoriesCmd{})
	if !strings.Contains(out.String(), "Unassigned system links: salary, houseExpense, clientInvestment, laborCost, vendorPayment") {
		t.Errorf("categories output:\n%s", out)
	}

	if status := run(t, &categoryCmd{}, "add", "-n", "Suppliers", "-k", "income"); status != subcommands.ExitFailure {
		t.Errorf("duplicate category: status %v, want failure", status)
	}
	if status := run(t, &categoryCmd{}, "link", "-id", "42", "-link", "salary"); status != subcommands.ExitFailure {
		t.Errorf("unknown category: status %v, want failure", status)
	}
}

func TestLedgerCommands(t *testing.T) {
	_, out := setup(t)
	mustRun(t, &txCmd{}, "add", "-d", "2024-01-10", "-k", "income", "-a", "1000", "-c", "Client payments", "-project", "P1")
	mustRun(t, &txCmd{}, "add", "-d", "2024-01-20", "-k", "expense", "-a", "200")
	out.Reset()
	mustRun(t, &txCmd{}, "add", "-d", "2024-01-05", "-k", "expense", "-a", "100")
	if want := "Added transaction #3: expense $100.00, balance $700.00\n"; out.String() != want {
		t.Errorf("tx add output = %q, want %q", out, want)
	}

	out.Reset()
	mustRun(t, &rebalanceCmd{})
	if want := "3 balance(s) changed, balance is $700.00\n"; out.String() != want {
		t.Errorf("rebalance output = %q, want %q", out, want)
	}

	mustRun(t, &txCmd{}, "edit", "-id", "2", "-details", "site office rent")
	out.Reset()
	mustRun(t, &txCmd{}, "list", "-s", "2024-01-06", "-k", "expense")
	got := out.String()
	if !strings.Contains(got, "| 2 | 2024-01-20 | expense |  | site office rent | $200.00 | $700.00 |") {
		t.Errorf("tx list output:\n%s", got)
	}
	if strings.Contains(got, "| 1 |") || strings.Contains(got, "| 3 |") {
		t.Errorf("tx list is not filtered:\n%s", got)
	}

	if status := run(t, &txCmd{}, "add", "-k", "expense", "-a", "-5"); status != subcommands.ExitFailure {
		t.Errorf("negative amount: status %v, want failure", status)
	}
	if status := run(t, &txCmd{}, "edit", "-id", "9", "-a", "5"); status != subcommands.ExitFailure {
		t.Errorf("unknown transaction: status %v, want failure", status)
	}
}

func TestStockAndCommissionCommands(t *testing.T) {
	_, out := setup(t)
	configure(t)
	mustRun(t, &materialCmd{}, "add", "-id", "cement", "-n", "Cement", "-unit", "bag")

	out.Reset()
	mustRun(t, &stockCmd{}, "add", "-d", "2024-02-01", "-m", "cement", "-vendor", "V1", "-q", "100", "-p", "50")
	if !strings.Contains(out.String(), `Posted transaction #1: expense $5,000.00 in "Vendor payments"`) {
		t.Errorf("stock add output:\n%s", out)
	}

	out.Reset()
	mustRun(t, &stockCmd{}, "issue", "-d", "2024-02-05", "-m", "cement", "-project", "P1", "-q", "40")
	if !strings.Contains(out.String(), "60 on hand") || !strings.Contains(out.String(), `$2,000.00 in "Materials"`) {
		t.Errorf("stock issue output:\n%s", out)
	}

	out.Reset()
	mustRun(t, &stockCmd{}, "issue", "-d", "2024-02-06", "-m", "sand", "-q", "3")
	if !strings.Contains(out.String(), "-3 on hand") || !strings.Contains(out.String(), "- unknown-price") {
		t.Errorf("stock issue of unpriced material:\n%s", out)
	}
	if status := run(t, &stockCmd{}, "issue", "-m", "cement", "-q", "61", "-check"); status != subcommands.ExitFailure {
		t.Errorf("checked issue over stock: status %v, want failure", status)
	}

	out.Reset()
	mustRun(t, &stockCmd{}, "list")
	if !strings.Contains(out.String(), "| cement | Cement | bag | 60 | $50.00 | $3,000.00 |") {
		t.Errorf("stock list output:\n%s", out)
	}

	mustRun(t, &commissionCmd{}, "add", "-staff", "S1", "-d", "2024-03-01", "-a", "2000")
	mustRun(t, &commissionCmd{}, "add", "-staff", "S1", "-d", "2024-03-02", "-a", "150")
	out.Reset()
	mustRun(t, &commissionCmd{}, "pay", "-staff", "S1", "-ids", "1", "-d", "2024-03-10")
	if want := "Paid 1 commission(s) with transaction #3 of $2,000.00\n"; out.String() != want {
		t.Errorf("commission pay output = %q, want %q", out, want)
	}
	if status := run(t, &commissionCmd{}, "pay", "-staff", "S1", "-ids", "1"); status != subcommands.ExitFailure {
		t.Errorf("paying twice: status %v, want failure", status)
	}

	out.Reset()
	mustRun(t, &commissionsCmd{}, "-due")
	if !strings.Contains(out.String(), "**Due**: $150.00") || strings.Contains(out.String(), "paid by") {
		t.Errorf("commissions output:\n%s", out)
	}

	out.Reset()
	mustRun(t, &queryCmd{}, "-key", "transactions", "-path", "$[*].amount")
	var amounts []float64
	if err := json.Unmarshal(out.Bytes(), &amounts); err != nil {
		t.Fatalf("query output %q: %v", out, err)
	}
	if diff := cmp.Diff([]float64{5000, 2000, 2000}, amounts); diff != "" {
		t.Errorf("query mismatch (-want +got):\n%s", diff)
	}
}

func TestQueryUnknownKey(t *testing.T) {
	setup(t)
	if status := run(t, &queryCmd{}, "-key", "projects"); status != subcommands.ExitFailure {
		t.Errorf("status %v, want failure", status)
	}
}

func TestOpenStore(t *testing.T) {
	dir, _ := setup(t)
	for _, kind := range []string{"memory", "dir", "sqlite"} {
		*storeKind = kind
		*storePath = filepath.Join(dir, kind)
		cfg, err := loadConfig()
		if err != nil {
			t.Fatalf("loadConfig(%s): %v", kind, err)
		}
		s, closer, err := OpenStore(cfg)
		if err != nil {
			t.Fatalf("OpenStore(%s): %v", kind, err)
		}
		if err := s.Set(context.Background(), store.KeyTransactions, []int{}); err != nil {
			t.Errorf("%s: Set(): %v", kind, err)
		}
		if err := closer(); err != nil {
			t.Errorf("%s: close: %v", kind, err)
		}
	}

	*storeKind = "mysql"
	if _, err := loadConfig(); err == nil && os.Getenv("SITEBOOK_MYSQL_DSN") == "" {
		t.Errorf("mysql without dsn was accepted")
	}
	*storeKind = "redis"
	if _, err := loadConfig(); err == nil {
		t.Errorf("unknown store was accepted")
	}
}

func TestCompletion(t *testing.T) {
	c := Completion()
	for _, name := range []string{"category", "categories", "tx", "rebalance", "material", "stock", "commission", "commissions", "query", "topic"} {
		if _, ok := c.Sub[name]; !ok {
			t.Errorf("no completion for %q", name)
		}
	}
	tx := c.Sub["tx"]
	if _, ok := tx.Sub["add"]; !ok {
		t.Fatalf("no completion for tx add")
	}
	kinds := tx.Sub["add"].Flags["k"].Predict("")
	if diff := cmp.Diff([]string{"income", "expense", "amountOut"}, kinds); diff != "" {
		t.Errorf("kind predictions mismatch (-want +got):\n%s", diff)
	}
}

func TestTopic(t *testing.T) {
	_, out := setup(t)
	mustRun(t, &topicCmd{}, "ledger")
	if !strings.HasPrefix(out.String(), "# Ledger") {
		t.Errorf("topic ledger printed %q", out.String())
	}
	if status := run(t, &topicCmd{}, "payroll"); status != subcommands.ExitFailure {
		t.Errorf("unknown topic: status %v, want failure", status)
	}
	if args := Completion().Sub["topic"].Args; args == nil || !slices.Contains(args.Predict(""), "stock") {
		t.Errorf("topic arguments are not completed")
	}
}
