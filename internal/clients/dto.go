package clients

// CreateClientRequest creates a client or prospect.
type CreateClientRequest struct {
	Kind  Kind   `json:"kind" validate:"required,oneof=CLIENT PROSPECT"`
	Name  string `json:"name" validate:"required,min=1,max=200"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone" validate:"omitempty,max=40"`
	Notes string `json:"notes" validate:"omitempty,max=2000"`
}

// UpdateClientRequest patches a client.
type UpdateClientRequest struct {
	Kind  *Kind   `json:"kind,omitempty" validate:"omitempty,oneof=CLIENT PROSPECT"`
	Name  *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone *string `json:"phone,omitempty" validate:"omitempty,max=40"`
	Notes *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// ListClientsRequest filters the listing.
type ListClientsRequest struct {
	BusinessID int64
	Kind       *Kind
	Search     string
	Limit      int
	Offset     int
}
