package directory

// User is a single record in the directory.
type User struct {
	// ID is a positive integer assigned by the store at creation time.
	// Callers never supply it.
	ID int `json:"id"`

	// Name is the display name. The store places no constraints on it.
	Name string `json:"name"`

	// Email is the contact address. The store enforces neither uniqueness
	// nor format; boundary validation is the API layer's concern.
	Email string `json:"email"`
}

// UpdateUser carries a partial update. Nil fields keep their prior value.
type UpdateUser struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

// IsEmpty reports whether the update carries no fields at all.
func (u UpdateUser) IsEmpty() bool {
	return u.Name == nil && u.Email == nil
}

// SeedUser is a record loaded from seed configuration. Seed records are
// created through the store's normal Create path, so they receive ids from
// the active policy like any other record.
type SeedUser struct {
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
}
