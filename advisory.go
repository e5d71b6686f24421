package sitebook

import "fmt"

// Advisory is a notice returned with a successful operation whose cash
// impact was skipped or is questionable. It is not an error: the operation
// has been applied.
type Advisory struct {
	Code   AdvisoryCode
	Detail string
}

// AdvisoryCode classifies advisories.
type AdvisoryCode int

const (
	// AdvisoryNoVendor: stock purchased without vendor, no payment posted.
	AdvisoryNoVendor AdvisoryCode = iota + 1
	// AdvisoryNoCost: stock purchased at zero cost, no payment posted.
	AdvisoryNoCost
	// AdvisoryUnknownPrice: stock issued with no known purchase price.
	AdvisoryUnknownPrice
	// AdvisoryNoProject: stock issued without a project to charge.
	AdvisoryNoProject
	// AdvisoryNotConfigured: the system link needed to post is not held by any category.
	AdvisoryNotConfigured
	// AdvisoryTotalMismatch: a commission payment total differs from the selected commissions.
	AdvisoryTotalMismatch
)

func (c AdvisoryCode) String() string {
	switch c {
	case AdvisoryNoVendor:
		return "no-vendor"
	case AdvisoryNoCost:
		return "no-cost"
	case AdvisoryUnknownPrice:
		return "unknown-price"
	case AdvisoryNoProject:
		return "no-project"
	case AdvisoryNotConfigured:
		return "not-configured"
	case AdvisoryTotalMismatch:
		return "total-mismatch"
	default:
		return "unknown"
	}
}

func (a Advisory) String() string {
	if a.Detail == "" {
		return a.Code.String()
	}
	return fmt.Sprintf("%s: %s", a.Code, a.Detail)
}

// Advisories is the list of advisories of one operation.
type Advisories []Advisory

// Has reports whether an advisory with the code is present.
func (as Advisories) Has(code AdvisoryCode) bool {
	for _, a := range as {
		if a.Code == code {
			return true
		}
	}
	return false
}
