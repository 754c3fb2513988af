package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles. Super-admins can do everything; admins manage programs within
// their departments; staff can create and view.
const (
	RoleSuperAdmin = "super-admin"
	RoleAdmin      = "admin"
	RoleStaff      = "staff"
)

type User struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name         string               `bson:"name" json:"name"`
	Email        string               `bson:"email" json:"email"`
	Phone        string               `bson:"phone,omitempty" json:"phone,omitempty"`
	PasswordHash string               `bson:"password_hash" json:"-"`
	Role         string               `bson:"role" json:"role"`
	Departments  []primitive.ObjectID `bson:"departments" json:"departments"`
	CreatedAt    time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time            `bson:"updated_at" json:"updated_at"`
}

// InDepartment reports whether the user is assigned to the given
// department.
func (u *User) InDepartment(dept primitive.ObjectID) bool {
	for _, d := range u.Departments {
		if d == dept {
			return true
		}
	}
	return false
}

// CanModerate reports whether a user with the given role and department
// memberships may approve, reject or otherwise transition a program
// owned by dept.
func CanModerate(role string, departments []primitive.ObjectID, dept primitive.ObjectID) bool {
	if role == RoleSuperAdmin {
		return true
	}
	if role != RoleAdmin {
		return false
	}
	for _, d := range departments {
		if d == dept {
			return true
		}
	}
	return false
}
