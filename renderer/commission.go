package renderer

import (
	"github.com/etnz/sitebook"
)

// Commissions lists commission records and the total still due.
func (r *Renderer) Commissions(records []sitebook.CommissionRecord) string {
	var md markdown
	md.Printf("# Commissions\n\n")
	if len(records) == 0 {
		md.Printf("No commissions.\n")
		return md.String()
	}
	md.Row("ID", "Staff", "Date", "Amount", "Status", "Remarks")
	md.Printf("|---:|:---|:---|---:|:---|:---|\n")
	due := sitebook.A(0)
	for _, c := range records {
		status := "due"
		if c.IsPaid {
			status = "paid by #" + c.PaidTransaction.String()
		} else {
			due = due.Add(c.Amount)
		}
		md.Row(c.ID.String(), string(c.Staff), c.Date.String(), r.Money(c.Amount), status, c.Remarks)
	}
	md.Printf("\n**Due**: %s\n", r.Money(due))
	return md.String()
}
