package domain

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Role is a back-office user's access level.
type Role string

const (
	RoleAgent         Role = "agent"
	RoleSupervisor    Role = "supervisor"
	RoleManager       Role = "manager"
	RoleAdministrator Role = "administrator"
)

// AgencyScope limits which agencies' transactions a role can act on.
type AgencyScope int

const (
	ScopeOwnAgency AgencyScope = iota
	ScopeAnyAgency
)

// CancellationPolicy is a role's cancellation ceiling and agency scope.
// A nil Ceiling means unlimited.
type CancellationPolicy struct {
	Ceiling *decimal.Decimal
	Scope   AgencyScope
}

// CancellationPolicies is the authorization table for cancellations.
var CancellationPolicies = map[Role]CancellationPolicy{
	RoleAgent:         {Ceiling: DecimalPtr(decimal.NewFromInt(1_000)), Scope: ScopeOwnAgency},
	RoleSupervisor:    {Ceiling: DecimalPtr(decimal.NewFromInt(10_000)), Scope: ScopeOwnAgency},
	RoleManager:       {Ceiling: DecimalPtr(decimal.NewFromInt(50_000)), Scope: ScopeAnyAgency},
	RoleAdministrator: {Ceiling: nil, Scope: ScopeAnyAgency},
}

// InternationalAdminThreshold is the amount above which only an
// administrator may cancel an international transfer.
var InternationalAdminThreshold = decimal.NewFromInt(25_000)

// IsValid checks if the role is a known role.
func (r Role) IsValid() bool {
	_, ok := CancellationPolicies[r]
	return ok
}

// ParseRole maps a free-text role to the closed role set.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", ErrUnknownRole
	}
	return r, nil
}

// CanConfigure reports whether the role may change rate, tier, fee and rule tables.
func (r Role) CanConfigure() bool {
	return r == RoleManager || r == RoleAdministrator
}

// CanApprove reports whether the role may act as checker.
func (r Role) CanApprove() bool {
	return r == RoleSupervisor || r == RoleManager || r == RoleAdministrator
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID       string
	Name     string
	Role     Role
	AgencyID string
}

// Authentication errors
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInsufficientRole = errors.New("insufficient role for this operation")
	ErrUnknownRole      = errors.New("unknown role")
)
