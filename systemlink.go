package sitebook

import (
	"encoding/json"
	"fmt"
)

// SystemLink is a fixed semantic role that a user-named category can hold.
// Generated transactions are tagged with the category holding the role, so
// the book never hardcodes category names.
type SystemLink string

const (
	NoLink               SystemLink = ""
	Salary               SystemLink = "salary"
	Commission           SystemLink = "commission"
	HouseExpense         SystemLink = "houseExpense"
	ProjectPayment       SystemLink = "projectPayment"
	ClientInvestment     SystemLink = "clientInvestment"
	ConstructionMaterial SystemLink = "constructionMaterial"
	LaborCost            SystemLink = "laborCost"
	VendorPayment        SystemLink = "vendorPayment"
)

// SystemLinks lists every role in a stable order.
var SystemLinks = []SystemLink{
	Salary,
	Commission,
	HouseExpense,
	ProjectPayment,
	ClientInvestment,
	ConstructionMaterial,
	LaborCost,
	VendorPayment,
}

// Valid reports whether l is a known role. NoLink is valid.
func (l SystemLink) Valid() bool {
	if l == NoLink {
		return true
	}
	for _, known := range SystemLinks {
		if l == known {
			return true
		}
	}
	return false
}

// ParseSystemLink parses a role name. The empty string parses as NoLink.
func ParseSystemLink(s string) (SystemLink, error) {
	l := SystemLink(s)
	if !l.Valid() {
		return NoLink, fmt.Errorf("unknown system link: %q", s)
	}
	return l, nil
}

func (l *SystemLink) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParseSystemLink(s)
	if err != nil {
		return err
	}
	*l = v
	return nil
}
