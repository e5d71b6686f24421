package sitebook

import (
	"fmt"
	"iter"
	"slices"
	"strings"
)

// Category tags transactions. A category may hold one system link.
type Category struct {
	ID   CategoryID `json:"id"`
	Name string     `json:"name"`
	Kind Kind       `json:"kind"`
	Link SystemLink `json:"systemLink,omitempty"`
}

// Registry holds the categories of all three kinds and resolves system links
// to category names.
type Registry struct {
	categories []Category
}

// NewRegistry creates a registry holding the categories. Duplicated links
// are tolerated, see Conflicts.
func NewRegistry(categories ...Category) *Registry {
	r := &Registry{categories: slices.Clone(categories)}
	slices.SortStableFunc(r.categories, func(a, b Category) int { return int(a.ID) - int(b.ID) })
	return r
}

// uniqueCategoryIDs gives a fresh id to every category whose id is already
// used by an earlier one. Transactions refer to categories by name, so
// renumbering loses nothing. It returns the renumbered categories too.
func uniqueCategoryIDs(categories []Category) (all, renumbered []Category) {
	all = slices.Clone(categories)
	next := nextID[CategoryID](func(yield func(CategoryID) bool) {
		for _, c := range all {
			if !yield(c.ID) {
				return
			}
		}
	})
	seen := make(map[CategoryID]bool, len(all))
	for i := range all {
		if seen[all[i].ID] {
			all[i].ID = next
			next++
			renumbered = append(renumbered, all[i])
		}
		seen[all[i].ID] = true
	}
	return all, renumbered
}

// Resolve returns the name of the category holding the link. ok is false when
// no category holds it, callers must then treat the feature as not
// configured.
func (r *Registry) Resolve(link SystemLink) (name string, ok bool) {
	if link == NoLink {
		return "", false
	}
	for _, c := range r.categories {
		if c.Link == link {
			return c.Name, true
		}
	}
	return "", false
}

// Add creates a category. The name must be unique across all kinds. When a
// link is given it is taken away from the category holding it.
func (r *Registry) Add(name string, kind Kind, link SystemLink) (Category, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return Category{}, fmt.Errorf("%w: category name is missing", ErrInvalid)
	case !kind.Valid():
		return Category{}, fmt.Errorf("%w: category %q has no valid kind", ErrInvalid, name)
	case !link.Valid():
		return Category{}, fmt.Errorf("%w: unknown system link %q", ErrInvalid, link)
	}
	if _, exists := r.ByName(name); exists {
		return Category{}, fmt.Errorf("%w: category %q already exists", ErrInvalid, name)
	}
	c := Category{
		ID:   nextID(r.ids()),
		Name: name,
		Kind: kind,
	}
	r.categories = append(r.categories, c)
	if link != NoLink {
		r.assign(c.ID, link)
		c.Link = link
	}
	return c, nil
}

// Link assigns the link to the category id. Whichever category held the link
// before loses it, so that a link is always held by at most one category.
func (r *Registry) Link(id CategoryID, link SystemLink) error {
	if link == NoLink || !link.Valid() {
		return fmt.Errorf("%w: unknown system link %q", ErrInvalid, link)
	}
	if r.index(id) < 0 {
		return fmt.Errorf("category %v: %w", id, ErrNotFound)
	}
	r.assign(id, link)
	return nil
}

// Unlink removes the link held by the category id, if any.
func (r *Registry) Unlink(id CategoryID) error {
	i := r.index(id)
	if i < 0 {
		return fmt.Errorf("category %v: %w", id, ErrNotFound)
	}
	r.categories[i].Link = NoLink
	return nil
}

func (r *Registry) assign(id CategoryID, link SystemLink) {
	for i := range r.categories {
		switch {
		case r.categories[i].ID == id:
			r.categories[i].Link = link
		case r.categories[i].Link == link:
			r.categories[i].Link = NoLink
		}
	}
}

// Category returns the category with the id.
func (r *Registry) Category(id CategoryID) (Category, bool) {
	i := r.index(id)
	if i < 0 {
		return Category{}, false
	}
	return r.categories[i], true
}

// ByName returns the category with the name.
func (r *Registry) ByName(name string) (Category, bool) {
	for _, c := range r.categories {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

// Categories returns an iterator over the categories of the kind, or of
// every kind when kind is zero.
func (r *Registry) Categories(kind Kind) iter.Seq[Category] {
	return func(yield func(Category) bool) {
		for _, c := range r.categories {
			if kind != 0 && c.Kind != kind {
				continue
			}
			if !yield(c) {
				return
			}
		}
	}
}

// Conflicts returns the links held by more than one category, with the ids
// holding them. Data written by Link never has conflicts, but loaded data
// might.
func (r *Registry) Conflicts() map[SystemLink][]CategoryID {
	holders := make(map[SystemLink][]CategoryID)
	for _, c := range r.categories {
		if c.Link != NoLink {
			holders[c.Link] = append(holders[c.Link], c.ID)
		}
	}
	for link, ids := range holders {
		if len(ids) < 2 {
			delete(holders, link)
		}
	}
	return holders
}

func (r *Registry) index(id CategoryID) int {
	return slices.IndexFunc(r.categories, func(c Category) bool { return c.ID == id })
}

func (r *Registry) ids() iter.Seq[CategoryID] {
	return func(yield func(CategoryID) bool) {
		for _, c := range r.categories {
			if !yield(c.ID) {
				return
			}
		}
	}
}
