package sitebook

import (
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"slices"
	"sort"
	"strings"

	"github.com/etnz/sitebook/date"
)

// Direction of a stock movement.
type Direction string

const (
	In  Direction = "in"  // purchase
	Out Direction = "out" // issue to a site
)

// StockMovement is a single recorded quantity change of one material.
//
// UnitPrice and Vendor are only meaningful for In movements.
type StockMovement struct {
	ID        MovementID `json:"id"`
	Date      date.Date  `json:"date"`
	Material  MaterialID `json:"materialId"`
	Direction Direction  `json:"direction"`
	Quantity  Quantity   `json:"quantity"`
	UnitPrice *Amount    `json:"unitPrice,omitempty"`
	Vendor    VendorID   `json:"vendorId,omitempty"`
	Project   ProjectID  `json:"projectId,omitempty"`
}

// MarshalJSON writes the movement with a stable field order. Purchase only
// fields are never written for an Out movement.
func (m StockMovement) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", m.ID)
	w.Append("date", m.Date)
	w.Append("materialId", m.Material)
	w.Append("direction", m.Direction)
	w.Append("quantity", m.Quantity)
	if m.Direction == In {
		w.Optional("unitPrice", m.UnitPrice)
		w.Optional("vendorId", m.Vendor)
	}
	w.Optional("projectId", m.Project)
	return w.MarshalJSON()
}

// signed returns the quantity with the sign of its effect on the stock.
func (m StockMovement) signed() Quantity {
	if m.Direction == Out {
		return m.Quantity.Neg()
	}
	return m.Quantity
}

// Validate checks the movement fields, its id excepted.
func (m StockMovement) Validate() error {
	var errs error
	if m.Date.IsZero() {
		errs = errors.Join(errs, errors.New("date is missing"))
	}
	if strings.TrimSpace(string(m.Material)) == "" {
		errs = errors.Join(errs, errors.New("material is missing"))
	}
	switch m.Direction {
	case In:
		if m.UnitPrice != nil && m.UnitPrice.IsNegative() {
			errs = errors.Join(errs, fmt.Errorf("unit price must not be negative, got %s", m.UnitPrice))
		}
	case Out:
		if m.UnitPrice != nil || m.Vendor != "" {
			errs = errors.Join(errs, errors.New("an issue carries no unit price nor vendor"))
		}
	default:
		errs = errors.Join(errs, fmt.Errorf("direction %q is neither in nor out", m.Direction))
	}
	if !m.Quantity.IsPositive() {
		errs = errors.Join(errs, fmt.Errorf("quantity must be positive, got %s", m.Quantity))
	}
	if errs != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, errs)
	}
	return nil
}

// Material is a stock item.
type Material struct {
	ID       MaterialID         `json:"id"`
	Name     string             `json:"name"`
	Category MaterialCategoryID `json:"categoryId"`
	Unit     string             `json:"unit"`
}

// Stock records stock movements and derives quantities and prices from them.
//
// Nothing bounds the stock from below: issuing more than available makes it
// negative. Use CheckIssue before issuing to refuse that.
type Stock struct {
	movements []StockMovement
	materials []Material
}

// NewStock creates a stock engine from persisted movements and materials.
func NewStock(movements []StockMovement, materials []Material) *Stock {
	return &Stock{
		movements: slices.Clone(movements),
		materials: slices.Clone(materials),
	}
}

// Record validates m, assigns its id and appends it.
func (s *Stock) Record(m StockMovement) (StockMovement, error) {
	m.Material = MaterialID(strings.TrimSpace(string(m.Material)))
	if err := m.Validate(); err != nil {
		return StockMovement{}, err
	}
	if m.UnitPrice != nil {
		price := *m.UnitPrice
		m.UnitPrice = &price
	}
	m.ID = s.nextID()
	s.movements = append(s.movements, m)
	return m, nil
}

// Current returns the quantity on hand: the sum of the quantities of all the
// movements of the material, positive for In and negative for Out.
func (s *Stock) Current(material MaterialID) Quantity {
	total := Q(0)
	for m := range s.Movements(material) {
		total = total.Add(m.signed())
	}
	return total
}

// LatestUnitPrice returns the unit price of the most recent priced purchase
// of the material. Among purchases on the same date the one recorded last
// wins. ok is false when the material was never purchased with a price.
func (s *Stock) LatestUnitPrice(material MaterialID) (price Amount, ok bool) {
	var priced []StockMovement
	for m := range s.Movements(material) {
		if m.Direction == In && m.UnitPrice != nil {
			priced = append(priced, m)
		}
	}
	if len(priced) == 0 {
		return Amount{}, false
	}
	sort.SliceStable(priced, func(i, j int) bool { return priced[i].Date.Before(priced[j].Date) })
	return *priced[len(priced)-1].UnitPrice, true
}

// CheckIssue returns ErrInsufficientStock when issuing quantity of the
// material would make its stock negative.
func (s *Stock) CheckIssue(material MaterialID, quantity Quantity) error {
	if current := s.Current(material); current.LessThan(quantity) {
		return fmt.Errorf("cannot issue %s of %q, %s on hand: %w", quantity, material, current, ErrInsufficientStock)
	}
	return nil
}

// Movements returns an iterator over the movements of the material, in the
// order they were recorded. An empty material yields every movement.
func (s *Stock) Movements(material MaterialID) iter.Seq[StockMovement] {
	return func(yield func(StockMovement) bool) {
		for _, m := range s.movements {
			if material != "" && m.Material != material {
				continue
			}
			if !yield(m) {
				return
			}
		}
	}
}

// AddMaterial adds a material to the catalog.
func (s *Stock) AddMaterial(m Material) error {
	m.ID = MaterialID(strings.TrimSpace(string(m.ID)))
	m.Name = strings.TrimSpace(m.Name)
	switch {
	case m.ID == "":
		return fmt.Errorf("%w: material id is missing", ErrInvalid)
	case m.Name == "":
		return fmt.Errorf("%w: material %q has no name", ErrInvalid, m.ID)
	}
	if _, exists := s.Material(m.ID); exists {
		return fmt.Errorf("%w: material %q already exists", ErrInvalid, m.ID)
	}
	s.materials = append(s.materials, m)
	return nil
}

// Material returns the catalog entry of the material.
func (s *Stock) Material(id MaterialID) (Material, bool) {
	i := slices.IndexFunc(s.materials, func(m Material) bool { return m.ID == id })
	if i < 0 {
		return Material{}, false
	}
	return s.materials[i], true
}

// Materials returns the catalog.
func (s *Stock) Materials() []Material { return slices.Clone(s.materials) }

func (s *Stock) nextID() MovementID {
	var ids []MovementID
	for _, m := range s.movements {
		ids = append(ids, m.ID)
	}
	return nextID(slices.Values(ids))
}

// all returns a copy of the movements, for persistence.
func (s *Stock) all() []StockMovement { return slices.Clone(s.movements) }

// check that a StockMovement is a valid json marshaller type.
var _ json.Marshaler = StockMovement{}
