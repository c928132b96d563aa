package merchant

// CreateMerchantInput is the intake payload for a new merchant.
type CreateMerchantInput struct {
	BusinessName       string `json:"businessName" validate:"notblank,max=255"`
	Email              string `json:"email" validate:"required,email,max=255"`
	Password           string `json:"password" validate:"notblank,maxbytes=72"`
	PhoneNumber        string `json:"phoneNumber" validate:"notblank,max=50"`
	Address            string `json:"address" validate:"max=500"`
	BusinessType       string `json:"businessType" validate:"max=100"`
	RegistrationNumber string `json:"registrationNumber" validate:"max=100"`
	TaxID              string `json:"taxId" validate:"max=100"`
}

// UpdateMerchantInput carries the mutable profile fields. Email and password
// are not part of it and cannot be changed through an update.
type UpdateMerchantInput struct {
	BusinessName       string `json:"businessName" validate:"notblank,max=255"`
	PhoneNumber        string `json:"phoneNumber" validate:"notblank,max=50"`
	Address            string `json:"address" validate:"max=500"`
	BusinessType       string `json:"businessType" validate:"max=100"`
	RegistrationNumber string `json:"registrationNumber" validate:"max=100"`
	TaxID              string `json:"taxId" validate:"max=100"`
	// nil keeps the current value
	Active *bool `json:"active"`
}
