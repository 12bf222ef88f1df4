package user

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Roles known to the marketplace.
const (
	RoleClient = "client"
	RoleVendor = "vendor"
	RoleAdmin  = "admin"
)

var (
	cpfPattern   = regexp.MustCompile(`^\d{3}\.\d{3}\.\d{3}-\d{2}$`)
	emailPattern = regexp.MustCompile(`^[\w.+-]+@[\w-]+(\.[\w-]+)+$`)
)

// User is the accounts table model. Accounts are never hard-deleted; the
// Active flag is flipped instead.
type User struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	Name         string     `gorm:"size:100;not null" json:"name"`
	Email        string     `gorm:"uniqueIndex;size:128;not null" json:"email"`
	PasswordHash string     `gorm:"size:128;not null" json:"-"`
	CPF          string     `gorm:"uniqueIndex;size:14;not null" json:"cpf"`
	Role         string     `gorm:"size:16;index;not null" json:"role"`
	Active       bool       `gorm:"not null;default:true" json:"active"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleClient, RoleVendor, RoleAdmin:
		return true
	}
	return false
}

// RegisterInput carries the fields accepted on account creation.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	CPF      string `json:"cpf"`
	Role     string `json:"role"`
}

// Validate normalizes the input and returns field-level problems.
func (in *RegisterInput) Validate() []string {
	var details []string

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.CPF = strings.TrimSpace(in.CPF)
	in.Role = strings.TrimSpace(in.Role)
	if in.Role == "" {
		in.Role = RoleClient
	}

	if len(in.Name) < 2 || len(in.Name) > 100 {
		details = append(details, "name must be between 2 and 100 characters")
	}
	if !emailPattern.MatchString(in.Email) {
		details = append(details, "email is not valid")
	}
	if len(in.Password) < 6 {
		details = append(details, "password must have at least 6 characters")
	}
	if !cpfPattern.MatchString(in.CPF) {
		details = append(details, "cpf must be in the format XXX.XXX.XXX-XX")
	}
	if !ValidRole(in.Role) {
		details = append(details, fmt.Sprintf("role must be one of %s, %s, %s", RoleClient, RoleVendor, RoleAdmin))
	}

	return details
}

// UpdateInput carries the fields accepted on account update. Pointers
// distinguish "absent" from zero values; Role and Active are admin-only.
type UpdateInput struct {
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	CPF    *string `json:"cpf"`
	Role   *string `json:"role"`
	Active *bool   `json:"active"`
}

// Validate checks only the fields that are present.
func (in *UpdateInput) Validate() []string {
	var details []string

	if in.Name != nil {
		*in.Name = strings.TrimSpace(*in.Name)
		if len(*in.Name) < 2 || len(*in.Name) > 100 {
			details = append(details, "name must be between 2 and 100 characters")
		}
	}
	if in.Email != nil {
		*in.Email = strings.ToLower(strings.TrimSpace(*in.Email))
		if !emailPattern.MatchString(*in.Email) {
			details = append(details, "email is not valid")
		}
	}
	if in.CPF != nil {
		*in.CPF = strings.TrimSpace(*in.CPF)
		if !cpfPattern.MatchString(*in.CPF) {
			details = append(details, "cpf must be in the format XXX.XXX.XXX-XX")
		}
	}
	if in.Role != nil && !ValidRole(*in.Role) {
		details = append(details, fmt.Sprintf("role must be one of %s, %s, %s", RoleClient, RoleVendor, RoleAdmin))
	}

	return details
}
