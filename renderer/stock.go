package renderer

import (
	"github.com/etnz/sitebook"
)

// StockLine is the state of one material.
type StockLine struct {
	Material sitebook.Material
	OnHand   sitebook.Quantity
	Price    sitebook.Amount
	Priced   bool // false when the material was never purchased with a price
}

// Stock lists the quantity on hand of each material. Value is on hand times
// the latest purchase price.
func (r *Renderer) Stock(lines []StockLine) string {
	var md markdown
	md.Printf("# Stock\n\n")
	if len(lines) == 0 {
		md.Printf("No materials.\n")
		return md.String()
	}
	md.Row("Material", "Name", "Unit", "On hand", "Latest price", "Value")
	md.Printf("|:---|:---|:---|---:|---:|---:|\n")
	total := sitebook.A(0)
	for _, l := range lines {
		price, value := "", ""
		if l.Priced {
			v := l.Price.Mul(l.OnHand)
			total = total.Add(v)
			price, value = r.Money(l.Price), r.Money(v)
		}
		md.Row(string(l.Material.ID), l.Material.Name, l.Material.Unit, l.OnHand.String(), price, value)
	}
	md.Printf("\n**Stock value**: %s\n", r.Money(total))
	return md.String()
}

// Movements lists stock movements in the order they were recorded.
func (r *Renderer) Movements(movements []sitebook.StockMovement) string {
	var md markdown
	md.Printf("# Stock movements\n\n")
	if len(movements) == 0 {
		md.Printf("No movements.\n")
		return md.String()
	}
	md.Row("ID", "Date", "Material", "Direction", "Quantity", "Unit price", "Vendor", "Project")
	md.Printf("|---:|:---|:---|:---|---:|---:|:---|:---|\n")
	for _, m := range movements {
		price := ""
		if m.UnitPrice != nil {
			price = r.Money(*m.UnitPrice)
		}
		md.Row(m.ID.String(), m.Date.String(), string(m.Material), string(m.Direction), m.Quantity.String(), price, string(m.Vendor), string(m.Project))
	}
	return md.String()
}
