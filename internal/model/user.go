package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Roles recognised by the role middleware.
const (
	RoleAdmin    = "ADMIN"
	RoleCustomer = "CUSTOMER"
)

// User represents an application user record as stored in the
// `users` table.  Customers carry a wallet Balance that purchases are
// debited from; staff users have role ADMIN.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – ADMIN or CUSTOMER.
//  Balance      – wallet balance available for purchases.
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64          // users.id
	Email        string          // users.email
	PasswordHash string          // users.password_hash
	Role         string          // users.role
	Balance      decimal.Decimal // users.balance
	IsActive     bool            // users.is_active
	CreatedAt    time.Time       // users.created_at
	UpdatedAt    time.Time       // users.updated_at
}
