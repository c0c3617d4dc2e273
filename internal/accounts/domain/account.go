package domain

import "time"

type Account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string // argon2id PHC string
	Role         Role

	EmailVerified bool

	// VerificationCode is empty when no verification cycle is outstanding.
	VerificationCode        string
	VerificationCodeExpires *time.Time

	ProfileImage string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasPendingCode reports whether a verification code is waiting to be used.
func (a Account) HasPendingCode() bool { return a.VerificationCode != "" }

// CodeExpired reports whether the pending code expired at or before now.
// Codes without an expiry never expire.
func (a Account) CodeExpired(now time.Time) bool {
	return a.VerificationCodeExpires != nil && !now.Before(*a.VerificationCodeExpires)
}

// Summary drops the secret-bearing fields.
func (a Account) Summary() AccountSummary {
	return AccountSummary{
		ID:            a.ID,
		Name:          a.Name,
		Email:         a.Email,
		Role:          a.Role,
		EmailVerified: a.EmailVerified,
		ProfileImage:  a.ProfileImage,
		CreatedAt:     a.CreatedAt,
	}
}

// AccountSummary is the listing projection. It never carries the password
// hash or a verification code.
type AccountSummary struct {
	ID            string
	Name          string
	Email         string
	Role          Role
	EmailVerified bool
	ProfileImage  string
	CreatedAt     time.Time
}

// PendingCode is a verification code together with its expiry.
type PendingCode struct {
	Code      string
	ExpiresAt time.Time
}

// AccountPatch describes a partial update. Nil fields are left untouched.
type AccountPatch struct {
	Name          *string
	PasswordHash  *string
	Role          *Role
	EmailVerified *bool
	ProfileImage  *string

	// SetCode replaces any pending code. ClearCode removes it and wins when
	// both are set.
	SetCode   *PendingCode
	ClearCode bool
}

// Apply returns a copy of a with the patch applied. UpdatedAt is left to the
// store.
func (p AccountPatch) Apply(a Account) Account {
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.PasswordHash != nil {
		a.PasswordHash = *p.PasswordHash
	}
	if p.Role != nil {
		a.Role = *p.Role
	}
	if p.EmailVerified != nil {
		a.EmailVerified = *p.EmailVerified
	}
	if p.ProfileImage != nil {
		a.ProfileImage = *p.ProfileImage
	}
	if p.SetCode != nil {
		a.VerificationCode = p.SetCode.Code
		exp := p.SetCode.ExpiresAt
		a.VerificationCodeExpires = &exp
	}
	if p.ClearCode {
		a.VerificationCode = ""
		a.VerificationCodeExpires = nil
	}
	return a
}
