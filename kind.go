package sitebook

import (
	"encoding/json"
	"fmt"
)

// Kind tells how a transaction moves the running balance.
type Kind int

const (
	// Income adds to the balance.
	Income Kind = iota + 1
	// Expense subtracts from the balance.
	Expense
	// AmountOut subtracts from the balance. It records cash leaving the
	// business to its owners rather than spent on operations.
	AmountOut
)

var kindNames = map[Kind]string{
	Income:    "income",
	Expense:   "expense",
	AmountOut: "amountOut",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether k is one of the three kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// sign returns +1 for Income, -1 otherwise.
func (k Kind) sign() int64 {
	if k == Income {
		return 1
	}
	return -1
}

// ParseKind parses a string into a Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if s == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown kind: %q", s)
}

func (k Kind) MarshalJSON() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("cannot marshal kind %d", int(k))
	}
	return json.Marshal(k.String())
}

func (k *Kind) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParseKind(s)
	if err != nil {
		return err
	}
	*k = v
	return nil
}
