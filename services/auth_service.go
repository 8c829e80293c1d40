package services

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-gms/models"
	"campus-gms/types"
	"campus-gms/utils"
)

var (
	ErrStudentIDTaken     = errors.New("student id already registered")
	ErrInvalidCredentials = errors.New("invalid student id or password")
	ErrAccountDisabled    = errors.New("account is deactivated")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrUserNotFound       = errors.New("user not found")
	ErrWeakPassword       = errors.New("password too weak")
)

// WeakPasswordError lists what is wrong with a password.
type WeakPasswordError struct {
	Problems []string
}

func (e *WeakPasswordError) Error() string {
	return "password too weak: " + strings.Join(e.Problems, "; ")
}

func (e *WeakPasswordError) Is(target error) bool { return target == ErrWeakPassword }

// AuthService registers and signs in students.
type AuthService struct {
	db     *gorm.DB
	jwt    *JWTService
	logger *zap.Logger
}

func NewAuthService(db *gorm.DB, jwt *JWTService, logger *zap.Logger) *AuthService {
	return &AuthService{db: db, jwt: jwt, logger: logger}
}

// DeviceInfo identifies where a sign-in came from.
type DeviceInfo struct {
	DeviceID  string
	UserAgent string
	IPAddress string
}

// SignUp creates a student account and signs it in.
func (s *AuthService) SignUp(req types.SignUpRequest, dev DeviceInfo) (*types.AuthResult, error) {
	if req.Password != req.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}
	if ok, problems := utils.ValidatePasswordStrength(req.Password); !ok {
		return nil, &WeakPasswordError{Problems: problems}
	}

	studentID := utils.NormalizeStudentID(req.StudentID)
	var count int64
	if err := s.db.Model(&models.User{}).Where("student_id = ?", studentID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrStudentIDTaken
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := models.User{
		StudentID:    studentID,
		FullName:     strings.TrimSpace(req.FullName),
		PhoneNumber:  strings.TrimSpace(req.PhoneNumber),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Department:   strings.TrimSpace(req.Department),
		PasswordHash: hash,
		Role:         models.RoleStudent,
		IsActive:     true,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.logger.Info("✅ Student registered", zap.Uint("user_id", user.ID), zap.String("student_id", user.StudentID))

	return s.issue(&user, dev)
}

// SignIn checks a student id and password.
func (s *AuthService) SignIn(req types.SignInRequest, dev DeviceInfo) (*types.AuthResult, error) {
	var user models.User
	err := s.db.Where("student_id = ?", utils.NormalizeStudentID(req.StudentID)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		s.logger.Warn("🚫 Failed sign-in", zap.String("student_id", user.StudentID), zap.String("ip", dev.IPAddress))
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}
	return s.issue(&user, dev)
}

func (s *AuthService) issue(user *models.User, dev DeviceInfo) (*types.AuthResult, error) {
	pair, err := s.jwt.GenerateTokenPair(user, dev.DeviceID, dev.UserAgent, dev.IPAddress)
	if err != nil {
		return nil, err
	}
	return &types.AuthResult{User: user.ToAccount(), Tokens: *pair}, nil
}

// Refresh trades a refresh token for a new access token.
func (s *AuthService) Refresh(refreshToken string) (*types.AuthResult, error) {
	pair, user, err := s.jwt.RefreshAccessToken(refreshToken)
	if err != nil {
		return nil, err
	}
	return &types.AuthResult{User: user.ToAccount(), Tokens: *pair}, nil
}

// SignOut revokes the refresh token.
func (s *AuthService) SignOut(refreshToken string) error {
	return s.jwt.RevokeRefreshToken(refreshToken)
}

// UserByID loads an active user.
func (s *AuthService) UserByID(id uint) (*models.User, error) {
	var user models.User
	err := s.db.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}
	return &user, nil
}

// UpdateUser changes a user's role or confirmation flag. Nil fields are
// left alone.
func (s *AuthService) UpdateUser(studentID string, role *models.UserRole, confirmed *bool) (*models.User, error) {
	var user models.User
	err := s.db.Where("student_id = ?", utils.NormalizeStudentID(studentID)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if role != nil {
		user.Role = *role
		if !user.IsValidRole() {
			return nil, fmt.Errorf("unknown role %q", *role)
		}
		updates["role"] = *role
	}
	if confirmed != nil {
		user.Confirmed = *confirmed
		updates["confirmed"] = *confirmed
	}
	if len(updates) == 0 {
		return &user, nil
	}
	if err := s.db.Model(&user).Updates(updates).Error; err != nil {
		return nil, err
	}
	s.logger.Info("✅ User updated", zap.String("student_id", user.StudentID), zap.Any("changes", updates))
	return &user, nil
}

// ListUsers pages through accounts, optionally filtered by role.
func (s *AuthService) ListUsers(role string, page, limit int) ([]models.User, types.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	q := s.db.Model(&models.User{})
	if role != "" {
		q = q.Where("role = ?", role)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, types.Pagination{}, err
	}
	var users []models.User
	if err := q.Order("created_at DESC, id DESC").Offset((page - 1) * limit).Limit(limit).Find(&users).Error; err != nil {
		return nil, types.Pagination{}, err
	}
	pages := (total + int64(limit) - 1) / int64(limit)
	return users, types.Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}, nil
}
