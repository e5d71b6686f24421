package sitebook

// Records owned by collaborators of the book. The book loads them to name
// things in listings and never writes them.

// Vendor supplies materials.
type Vendor struct {
	ID       VendorID `json:"id"`
	Name     string   `json:"name"`
	Category string   `json:"categoryId,omitempty"`
	Phone    string   `json:"phone,omitempty"`
}

// VendorCategory groups vendors.
type VendorCategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MaterialCategory groups materials.
type MaterialCategory struct {
	ID   MaterialCategoryID `json:"id"`
	Name string             `json:"name"`
}
