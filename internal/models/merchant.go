package models

import "time"

// Merchant is the identity and business profile of one merchant.
type Merchant struct {
	ID                 uint      `gorm:"primarykey" json:"id"`
	BusinessName       string    `gorm:"not null" json:"businessName"`
	Email              string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash       string    `gorm:"column:password;not null" json:"-"`
	PhoneNumber        string    `gorm:"not null" json:"phoneNumber"`
	Address            string    `json:"address"`
	BusinessType       string    `json:"businessType"`
	RegistrationNumber string    `json:"registrationNumber"`
	TaxID              string    `gorm:"column:tax_id" json:"taxId"`
	Active             bool      `gorm:"not null" json:"active"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Merchant) TableName() string { return "merchants" }
