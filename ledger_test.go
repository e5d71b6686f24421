package sitebook

import (
	"errors"
	"math/rand"
	"testing"
)

func TestLedger_AppendScenario(t *testing.T) {
	l := NewLedger()

	first := mustAppend(t, l, draft("2024-01-01", Income, 1000))
	if first.ID != 1 || !first.Balance.Equal(A(1000)) {
		t.Errorf("first = {id:%v balance:%v}, want {id:1 balance:1000}", first.ID, first.Balance)
	}
	second := mustAppend(t, l, draft("2024-01-02", Expense, 300))
	if second.ID != 2 || !second.Balance.Equal(A(700)) {
		t.Errorf("second = {id:%v balance:%v}, want {id:2 balance:700}", second.ID, second.Balance)
	}
	if !l.Balance().Equal(A(700)) {
		t.Errorf("Balance() = %v, want 700", l.Balance())
	}
}

func TestLedger_ForwardSum(t *testing.T) {
	// Appending in non-decreasing date order gives the exact sum.
	rng := rand.New(rand.NewSource(42))
	l := NewLedger()
	want := A(0)
	day := D("2024-01-01")
	kinds := []Kind{Income, Expense, AmountOut}
	for i := 0; i < 200; i++ {
		day = day.Add(rng.Intn(3))
		kind := kinds[rng.Intn(len(kinds))]
		amount := A(rng.Intn(10000) + 1).Round(0)
		mustAppend(t, l, Draft{Date: day, Kind: kind, Amount: amount})
		if kind == Income {
			want = want.Add(amount)
		} else {
			want = want.Sub(amount)
		}
	}
	if got := l.Balance(); !got.Equal(want) {
		t.Errorf("Balance() = %v, want %v", got, want)
	}
	if got := l.Total(); !got.Equal(want) {
		t.Errorf("Total() = %v, want %v", got, want)
	}
	// every stored balance is the running sum
	running := A(0)
	for _, tx := range l.Transactions() {
		running = running.Add(tx.signed())
		if !tx.Balance.Equal(running) {
			t.Fatalf("transaction %v balance = %v, want %v", tx.ID, tx.Balance, running)
		}
	}
	if n := l.Rebalance(); n != 0 {
		t.Errorf("Rebalance() changed %d balances of a forward built ledger", n)
	}
}

func TestLedger_BackdatedAppend(t *testing.T) {
	l := NewLedger()
	mustAppend(t, l, draft("2024-01-10", Income, 1000))
	mustAppend(t, l, draft("2024-01-20", Expense, 200))
	back := mustAppend(t, l, draft("2024-01-05", Expense, 100))

	// The balance is relative to the array-last transaction (800), not to
	// its chronological predecessor (nothing).
	if !back.Balance.Equal(A(700)) {
		t.Errorf("back-dated balance = %v, want 700", back.Balance)
	}
	var order []TransactionID
	for _, tx := range l.Transactions() {
		order = append(order, tx.ID)
	}
	if len(order) != 3 || order[0] != 3 || order[1] != 1 || order[2] != 2 {
		t.Errorf("order = %v, want [3 1 2]", order)
	}
	// The last element is now the 2024-01-20 expense, still at 800.
	if !l.Balance().Equal(A(800)) {
		t.Errorf("Balance() = %v, want 800", l.Balance())
	}

	if n := l.Rebalance(); n != 3 {
		t.Errorf("Rebalance() = %d, want 3", n)
	}
	want := map[TransactionID]Amount{3: A(-100), 1: A(900), 2: A(700)}
	for _, tx := range l.Transactions() {
		if !tx.Balance.Equal(want[tx.ID]) {
			t.Errorf("after Rebalance, transaction %v balance = %v, want %v", tx.ID, tx.Balance, want[tx.ID])
		}
	}
}

func TestLedger_AutoRebalance(t *testing.T) {
	l := NewLedger()
	l.SetRebalance(true)
	mustAppend(t, l, draft("2024-01-10", Income, 1000))
	mustAppend(t, l, draft("2024-01-20", Expense, 200))
	back := mustAppend(t, l, draft("2024-01-05", Expense, 100))
	if !back.Balance.Equal(A(-100)) {
		t.Errorf("back-dated balance = %v, want -100", back.Balance)
	}
	if !l.Balance().Equal(A(700)) {
		t.Errorf("Balance() = %v, want 700", l.Balance())
	}
}

func TestLedger_SameDateKeepsInsertionOrder(t *testing.T) {
	l := NewLedger()
	for i := 0; i < 5; i++ {
		mustAppend(t, l, draft("2024-03-01", Income, float64(i+1)))
	}
	mustAppend(t, l, draft("2024-02-01", Income, 1))
	want := []TransactionID{6, 1, 2, 3, 4, 5}
	i := 0
	for _, tx := range l.Transactions() {
		if tx.ID != want[i] {
			t.Errorf("position %d = %v, want %v", i, tx.ID, want[i])
		}
		i++
	}
}

func TestLedger_IDsAreMaxPlusOne(t *testing.T) {
	l := NewLedger(
		Transaction{ID: 4, Date: D("2024-01-01"), Kind: Income, Amount: A(1), Balance: A(1)},
		Transaction{ID: 9, Date: D("2024-01-02"), Kind: Income, Amount: A(1), Balance: A(2)},
	)
	tx := mustAppend(t, l, draft("2024-01-03", Income, 1))
	if tx.ID != 10 {
		t.Errorf("ID = %v, want 10", tx.ID)
	}
}

func TestLedger_AppendValidation(t *testing.T) {
	testCases := []struct {
		name  string
		draft Draft
	}{
		{"no date", Draft{Kind: Income, Amount: A(1)}},
		{"no kind", Draft{Date: D("2024-01-01"), Amount: A(1)}},
		{"zero amount", draft("2024-01-01", Expense, 0)},
		{"negative amount", draft("2024-01-01", Expense, -5)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			l := NewLedger()
			_, err := l.Append(tc.draft)
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("Append() error = %v, want ErrInvalid", err)
			}
			if l.Len() != 0 {
				t.Errorf("rejected draft was appended")
			}
		})
	}
}

func TestLedger_EditKeepsBalances(t *testing.T) {
	l := NewLedger()
	mustAppend(t, l, draft("2024-01-01", Income, 1000))
	second := mustAppend(t, l, draft("2024-01-02", Expense, 300))

	edited, err := l.Edit(second.ID, Draft{Date: D("2024-01-02"), Kind: Expense, Amount: A(500), Details: "  corrected "})
	if err != nil {
		t.Fatalf("Edit(): %v", err)
	}
	if !edited.Amount.Equal(A(500)) || edited.Details != "corrected" {
		t.Errorf("Edit() = %+v", edited)
	}
	if !edited.Balance.Equal(A(700)) {
		t.Errorf("Edit() recomputed the balance: %v, want 700", edited.Balance)
	}
	if edited.ID != second.ID {
		t.Errorf("Edit() changed the id to %v", edited.ID)
	}

	if _, err := l.Edit(99, draft("2024-01-02", Expense, 1)); !errors.Is(err, ErrNotFound) {
		t.Errorf("Edit(unknown) error = %v, want ErrNotFound", err)
	}
	if _, err := l.Edit(second.ID, draft("2024-01-02", Expense, 0)); !errors.Is(err, ErrInvalid) {
		t.Errorf("Edit(invalid) error = %v, want ErrInvalid", err)
	}
}

func TestLedger_EditDateResorts(t *testing.T) {
	l := NewLedger()
	a := mustAppend(t, l, draft("2024-01-01", Income, 10))
	mustAppend(t, l, draft("2024-01-02", Income, 20))
	if _, err := l.Edit(a.ID, draft("2024-01-03", Income, 10)); err != nil {
		t.Fatal(err)
	}
	var last Transaction
	for _, tx := range l.Transactions() {
		last = tx
	}
	if last.ID != a.ID {
		t.Errorf("last transaction = %v, want %v", last.ID, a.ID)
	}
}

func TestLedger_EditedDateMovesTheAppendBase(t *testing.T) {
	l := NewLedger()
	first := mustAppend(t, l, draft("2024-01-01", Income, 1000))
	mustAppend(t, l, draft("2024-01-02", Expense, 300))
	if _, err := l.Edit(first.ID, draft("2024-01-05", Income, 1000)); err != nil {
		t.Fatal(err)
	}
	// The edited transaction is now last and keeps its balance of 1000.
	next := mustAppend(t, l, draft("2024-01-06", Expense, 100))
	if !next.Balance.Equal(A(900)) {
		t.Errorf("balance after edit = %v, want 900", next.Balance)
	}
	if n := l.Rebalance(); n != 2 || !l.Balance().Equal(A(600)) {
		t.Errorf("Rebalance() = %d, balance %v, want 2 and 600", n, l.Balance())
	}
}

func TestLedger_Filters(t *testing.T) {
	l := NewLedger()
	mustAppend(t, l, Draft{Date: D("2024-01-01"), Kind: Income, Amount: A(100), Category: "Client payments", Refs: Refs{Project: "P1"}})
	mustAppend(t, l, Draft{Date: D("2024-01-02"), Kind: Expense, Amount: A(40), Refs: Refs{Project: "P1", Vendor: "V1"}})
	mustAppend(t, l, Draft{Date: D("2024-01-03"), Kind: Expense, Amount: A(10), Refs: Refs{Staff: "S1"}})

	if got := l.References(ByProject("P1")); len(got) != 2 {
		t.Errorf("References(P1) = %v", got)
	}
	if got := l.Total(ByProject("P1")); !got.Equal(A(60)) {
		t.Errorf("Total(P1) = %v, want 60", got)
	}
	if got := l.Total(ByProject("P1"), ByKind(Expense)); !got.Equal(A(-40)) {
		t.Errorf("Total(P1, expense) = %v, want -40", got)
	}
	if got := l.References(ByVendor("V2")); len(got) != 0 {
		t.Errorf("References(V2) = %v", got)
	}
	if got := l.References(ByCategory("Client payments")); len(got) != 1 || got[0] != 1 {
		t.Errorf("References(category) = %v", got)
	}
}
