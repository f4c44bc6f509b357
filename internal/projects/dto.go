package projects

// CreateProjectRequest creates a project.
type CreateProjectRequest struct {
	ClientID int64  `json:"clientId" validate:"required,gt=0"`
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Notes    string `json:"notes" validate:"omitempty,max=4000"`
}

// UpdateProjectRequest patches a project.
type UpdateProjectRequest struct {
	Name   *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Status *Status `json:"status,omitempty" validate:"omitempty,oneof=ACTIVE PAUSED ARCHIVED"`
	Notes  *string `json:"notes,omitempty" validate:"omitempty,max=4000"`
}

// ListProjectsRequest filters the listing.
type ListProjectsRequest struct {
	BusinessID int64
	ClientID   *int64
	Status     *Status
	Limit      int
	Offset     int
}

// AddLineRequest attaches a priced line to a project.
type AddLineRequest struct {
	CatalogServiceID int64        `json:"catalogServiceId" validate:"required,gt=0"`
	Quantity         int64        `json:"quantity" validate:"omitempty,gte=1"`
	PriceCents       *int64       `json:"priceCents,omitempty" validate:"omitempty,gte=0"`
	DiscountType     DiscountType `json:"discountType" validate:"omitempty,oneof=NONE PERCENT AMOUNT"`
	DiscountValue    float64      `json:"discountValue" validate:"gte=0"`
	BillingUnit      BillingUnit  `json:"billingUnit" validate:"omitempty,oneof=ONE_OFF MONTHLY"`
	UnitLabel        string       `json:"unitLabel" validate:"omitempty,max=40"`
	TitleOverride    string       `json:"titleOverride" validate:"omitempty,max=200"`
	Description      string       `json:"description" validate:"omitempty,max=2000"`
}

// UpdateLineRequest patches a service line.
type UpdateLineRequest struct {
	Quantity      *int64        `json:"quantity,omitempty" validate:"omitempty,gte=1"`
	PriceCents    *int64        `json:"priceCents,omitempty" validate:"omitempty,gte=0"`
	ClearPrice    bool          `json:"clearPrice,omitempty"`
	DiscountType  *DiscountType `json:"discountType,omitempty" validate:"omitempty,oneof=NONE PERCENT AMOUNT"`
	DiscountValue *float64      `json:"discountValue,omitempty" validate:"omitempty,gte=0"`
	BillingUnit   *BillingUnit  `json:"billingUnit,omitempty" validate:"omitempty,oneof=ONE_OFF MONTHLY"`
	UnitLabel     *string       `json:"unitLabel,omitempty" validate:"omitempty,max=40"`
	TitleOverride *string       `json:"titleOverride,omitempty" validate:"omitempty,max=200"`
	Description   *string       `json:"description,omitempty" validate:"omitempty,max=2000"`
	Position      *int          `json:"position,omitempty" validate:"omitempty,gte=0"`
}
