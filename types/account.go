package types

import "time"

// TokenPair represents a pair of access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// Account is the public view of a student or staff account.
type Account struct {
	ID          uint      `json:"id"`
	StudentID   string    `json:"student_id"`
	FullName    string    `json:"full_name"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	Email       string    `json:"email,omitempty"`
	Department  string    `json:"department,omitempty"`
	Role        string    `json:"role"`
	Confirmed   bool      `json:"confirmed"`
	CreatedAt   time.Time `json:"created_at"`
}

// SignInRequest is the body of POST /auth/signin.
type SignInRequest struct {
	StudentID string `json:"student_id" binding:"required"`
	Password  string `json:"password" binding:"required"`
}

// SignUpRequest is the body of POST /auth/signup.
type SignUpRequest struct {
	StudentID       string `json:"student_id" binding:"required,min=3,max=32"`
	FullName        string `json:"full_name" binding:"required,min=2,max=100"`
	PhoneNumber     string `json:"phone_number"`
	Email           string `json:"email" binding:"omitempty,email"`
	Department      string `json:"department"`
	Password        string `json:"password" binding:"required,min=8,max=128"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// AuthResult is the data payload of signin, signup and refresh.
type AuthResult struct {
	User   *Account  `json:"user,omitempty"`
	Tokens TokenPair `json:"tokens"`
}

// RefreshRequest is the body of POST /auth/refresh and /auth/signout.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}
