// Package owners serves the account settings of a hotel owner: profile,
// branding, billing details and password.
package owners

import (
	"strings"

	"github.com/google/uuid"
)

// Profile is the owner's account record.
type Profile struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	Phone        string    `json:"phone"`
	Mobile       string    `json:"mobile"`
	CompanyName  string    `json:"company_name"`
	BusinessName string    `json:"business_name"`
	LogoURL      string    `json:"logo_url"`
}

// ProfileInput is the body of PUT /account/profile.
type ProfileInput struct {
	FullName    string `json:"full_name" validate:"required,max=200"`
	Phone       string `json:"phone" validate:"max=32"`
	Mobile      string `json:"mobile" validate:"max=32"`
	CompanyName string `json:"company_name" validate:"max=200"`
}

// BrandingInput is the body of PUT /account/branding.
type BrandingInput struct {
	BusinessName string `json:"business_name" validate:"max=200"`
	LogoURL      string `json:"logo_url" validate:"omitempty,url,max=2048"`
}

// Billing holds the owner's payout bank details.
type Billing struct {
	BankName      string `json:"bank_name" validate:"max=200"`
	AccountNumber string `json:"account_number" validate:"omitempty,numeric,min=6,max=20"`
	IFSCCode      string `json:"ifsc_code" validate:"omitempty,len=11,alphanum"`
	PANNumber     string `json:"pan_number" validate:"omitempty,len=10,alphanum"`
}

// Normalize trims the fields and upper-cases the codes.
func (b Billing) Normalize() Billing {
	return Billing{
		BankName:      strings.TrimSpace(b.BankName),
		AccountNumber: strings.TrimSpace(b.AccountNumber),
		IFSCCode:      strings.ToUpper(strings.TrimSpace(b.IFSCCode)),
		PANNumber:     strings.ToUpper(strings.TrimSpace(b.PANNumber)),
	}
}

// BillingInput is the body of PUT /account/billing. Changes must be
// confirmed with the account password.
type BillingInput struct {
	Billing
	Password string `json:"password" validate:"required"`
}

// PasswordInput is the body of PUT /account/password.
type PasswordInput struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}
