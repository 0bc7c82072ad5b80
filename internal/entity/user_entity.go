package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string
type UserStatus string

const (
	UserRoleAdmin  UserRole = "admin"
	UserRoleAuthor UserRole = "author"
	UserRoleReader UserRole = "reader"

	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

type User struct {
	Id        uuid.UUID
	Email     string
	FullName  string
	Role      UserRole
	Status    UserStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
