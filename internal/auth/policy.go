package auth

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var ErrForbidden = errors.New("forbidden")

type Role string

const (
	RoleOwner    Role = "owner"
	RoleCashier  Role = "cashier"
	RoleCustomer Role = "customer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleCashier, RoleCustomer:
		return true
	}
	return false
}

func (r Role) IsStaff() bool {
	return r == RoleOwner || r == RoleCashier
}

type Operation string

const (
	OpOrderCreate      Operation = "order:create"
	OpOrderView        Operation = "order:view"
	OpOrderComplete    Operation = "order:complete"
	OpOrderConfirmCash Operation = "order:confirm_cash"
	OpCheckoutToken    Operation = "checkout:token"

	OpCustomerCheckout Operation = "customer:checkout"
	OpCustomerHistory  Operation = "customer:history"

	OpProductManage Operation = "product:manage"
	OpTableManage   Operation = "table:manage"
	OpDashboardView Operation = "dashboard:view"
	OpUserManage    Operation = "user:manage"
)

var staff = []Role{RoleOwner, RoleCashier}

// Policy lists the roles allowed to call each operation. Operations missing from the
// table are denied.
var Policy = map[Operation][]Role{
	OpOrderCreate:      staff,
	OpOrderView:        staff,
	OpOrderComplete:    staff,
	OpOrderConfirmCash: staff,
	OpCheckoutToken:    staff,

	OpCustomerCheckout: {RoleCustomer},
	OpCustomerHistory:  {RoleCustomer},

	OpProductManage: staff,
	OpTableManage:   staff,
	OpDashboardView: staff,
	OpUserManage:    {RoleOwner},
}

// Actor is whoever is calling a service operation. Staff actors carry a UserID;
// customer actors carry the phone and name from their verified OTP session.
type Actor struct {
	Role   Role
	UserID *uuid.UUID
	Name   string
	Phone  string
}

func Staff(role Role, id uuid.UUID, name string) Actor {
	return Actor{Role: role, UserID: &id, Name: name}
}

func Customer(name, phone string) Actor {
	return Actor{Role: RoleCustomer, Name: name, Phone: phone}
}

func Allowed(role Role, op Operation) bool {
	for _, r := range Policy[op] {
		if r == role {
			return true
		}
	}
	return false
}

// Authorize must run before any side effect of op.
func Authorize(a Actor, op Operation) error {
	if !Allowed(a.Role, op) {
		return fmt.Errorf("%w: role %q may not %s", ErrForbidden, a.Role, op)
	}
	if a.Role.IsStaff() && a.UserID == nil {
		return fmt.Errorf("%w: staff actor without user id", ErrForbidden)
	}
	if a.Role == RoleCustomer && a.Phone == "" {
		return fmt.Errorf("%w: customer actor without phone", ErrForbidden)
	}
	return nil
}
