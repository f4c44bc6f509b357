package catalog

// CreateServiceRequest adds a catalog entry.
type CreateServiceRequest struct {
	Name         string `json:"name" validate:"required,min=1,max=200"`
	Description  string `json:"description" validate:"omitempty,max=2000"`
	PriceCents   *int64 `json:"priceCents,omitempty" validate:"omitempty,gte=0"`
	DayRateCents *int64 `json:"dayRateCents,omitempty" validate:"omitempty,gte=0"`
	Unit         string `json:"unit" validate:"omitempty,max=40"`
}

// UpdateServiceRequest patches a catalog entry.
type UpdateServiceRequest struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description  *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	PriceCents   *int64  `json:"priceCents,omitempty" validate:"omitempty,gte=0"`
	DayRateCents *int64  `json:"dayRateCents,omitempty" validate:"omitempty,gte=0"`
	Unit         *string `json:"unit,omitempty" validate:"omitempty,max=40"`
	Archived     *bool   `json:"archived,omitempty"`
}
