package businesses

// UpdateSettingsRequest patches the billing settings of a business.
type UpdateSettingsRequest struct {
	Name                  *string  `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Currency              *string  `json:"currency,omitempty" validate:"omitempty,len=3,uppercase"`
	VATEnabled            *bool    `json:"vatEnabled,omitempty"`
	VATRatePercent        *float64 `json:"vatRatePercent,omitempty" validate:"omitempty,gte=0,lte=100"`
	DefaultDepositPercent *float64 `json:"defaultDepositPercent,omitempty" validate:"omitempty,gte=0,lte=100"`
}
