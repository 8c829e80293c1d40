package models

import (
	"time"

	"gorm.io/gorm"

	"campus-gms/types"
)

type UserRole string

const (
	RoleStudent   UserRole = "student"
	RoleResponder UserRole = "responder"
	RoleAdmin     UserRole = "admin"
)

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	StudentID    string    `json:"student_id" gorm:"size:32;uniqueIndex;not null"`
	FullName     string    `json:"full_name" gorm:"size:255;not null"`
	PhoneNumber  string    `json:"phone_number" gorm:"size:20"`
	Email        string    `json:"email" gorm:"size:255"`
	Department   string    `json:"department" gorm:"size:100"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Hidden from JSON
	Role         UserRole  `json:"role" gorm:"type:varchar(20);not null;default:'student';check:role IN ('student','responder','admin')"`
	Confirmed    bool      `json:"confirmed" gorm:"default:false"`
	IsActive     bool      `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// BeforeCreate is a GORM hook that runs before creating a user
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Role == "" {
		u.Role = RoleStudent
	}
	return nil
}

// IsValidRole checks if the user role is valid
func (u *User) IsValidRole() bool {
	switch u.Role {
	case RoleStudent, RoleResponder, RoleAdmin:
		return true
	default:
		return false
	}
}

// IsStaff reports whether the user handles issues rather than filing them.
func (u *User) IsStaff() bool {
	return u.Role == RoleResponder || u.Role == RoleAdmin
}

// IsAdmin checks if the user is an admin
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ToAccount returns the public view of the user.
func (u *User) ToAccount() *types.Account {
	return &types.Account{
		ID:          u.ID,
		StudentID:   u.StudentID,
		FullName:    u.FullName,
		PhoneNumber: u.PhoneNumber,
		Email:       u.Email,
		Department:  u.Department,
		Role:        string(u.Role),
		Confirmed:   u.Confirmed,
		CreatedAt:   u.CreatedAt,
	}
}
