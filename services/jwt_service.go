package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-gms/config"
	"campus-gms/models"
	"campus-gms/types"
)

var (
	ErrInvalidToken        = errors.New("invalid token")
	ErrRefreshTokenInvalid = errors.New("refresh token is invalid or expired")
)

// JWTService handles JWT token operations
type JWTService struct {
	db     *gorm.DB
	cfg    config.JWTConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewJWTService creates a new JWT service
func NewJWTService(db *gorm.DB, cfg config.JWTConfig, logger *zap.Logger) *JWTService {
	return &JWTService{db: db, cfg: cfg, logger: logger, now: time.Now}
}

// GenerateTokenPair generates both access and refresh tokens
func (js *JWTService) GenerateTokenPair(user *models.User, deviceID, userAgent, ipAddress string) (*types.TokenPair, error) {
	// Generate access token (short-lived)
	accessToken, expiresIn, err := js.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	// Generate refresh token (long-lived)
	refreshToken, err := js.generateRefreshToken(user.ID, deviceID, userAgent, ipAddress)
	if err != nil {
		return nil, err
	}

	return &types.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
		TokenType:    "Bearer",
	}, nil
}

// generateAccessToken generates a short-lived access token
func (js *JWTService) generateAccessToken(user *models.User) (string, int64, error) {
	now := js.now()
	ttl := time.Duration(js.cfg.ExpiryHours) * time.Hour
	claims := &types.Claims{
		UserID: user.ID,
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    js.cfg.Issuer,
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(js.cfg.Secret))
	if err != nil {
		return "", 0, fmt.Errorf("sign access token: %w", err)
	}
	return tokenString, int64(ttl / time.Second), nil
}

// generateRefreshToken generates a long-lived refresh token
func (js *JWTService) generateRefreshToken(userID uint, deviceID, userAgent, ipAddress string) (string, error) {
	// Generate a secure random token
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	tokenString := hex.EncodeToString(tokenBytes)

	now := js.now()
	refreshToken := &models.RefreshToken{
		Token:     tokenString,
		UserID:    userID,
		ExpiresAt: now.Add(time.Duration(js.cfg.RefreshExpiryDays) * 24 * time.Hour),
		LastUsed:  now,
		DeviceID:  deviceID,
		UserAgent: truncate(userAgent, 500),
		IPAddress: truncate(ipAddress, 45),
	}
	if err := js.db.Create(refreshToken).Error; err != nil {
		return "", fmt.Errorf("store refresh token: %w", err)
	}

	js.logger.Debug("✅ Refresh token generated", zap.Uint("user_id", userID), zap.String("device_id", deviceID))
	return tokenString, nil
}

// ValidateAccessToken validates an access token and returns its claims
func (js *JWTService) ValidateAccessToken(tokenString string) (*types.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &types.Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(js.cfg.Secret), nil
	}, jwt.WithTimeFunc(js.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*types.Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ValidateRefreshToken validates a refresh token
func (js *JWTService) ValidateRefreshToken(tokenString string) (*models.RefreshToken, error) {
	var refreshToken models.RefreshToken
	if err := js.db.Where("token = ?", tokenString).First(&refreshToken).Error; err != nil {
		return nil, ErrRefreshTokenInvalid
	}
	if !refreshToken.IsValidAt(js.now()) {
		return nil, ErrRefreshTokenInvalid
	}
	return &refreshToken, nil
}

// RefreshAccessToken issues a new access token for a valid refresh token.
// The refresh token itself is kept.
func (js *JWTService) RefreshAccessToken(refreshTokenString string) (*types.TokenPair, *models.User, error) {
	refreshToken, err := js.ValidateRefreshToken(refreshTokenString)
	if err != nil {
		return nil, nil, err
	}

	var user models.User
	if err := js.db.First(&user, refreshToken.UserID).Error; err != nil || !user.IsActive {
		return nil, nil, ErrRefreshTokenInvalid
	}

	accessToken, expiresIn, err := js.generateAccessToken(&user)
	if err != nil {
		return nil, nil, err
	}

	if err := js.db.Model(refreshToken).Update("last_used", js.now()).Error; err != nil {
		js.logger.Warn("⚠️ Failed to touch refresh token", zap.Error(err))
	}

	return &types.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenString,
		ExpiresIn:    expiresIn,
		TokenType:    "Bearer",
	}, &user, nil
}

// RevokeRefreshToken revokes a refresh token
func (js *JWTService) RevokeRefreshToken(tokenString string) error {
	res := js.db.Model(&models.RefreshToken{}).
		Where("token = ? AND is_revoked = ?", tokenString, false).
		Update("is_revoked", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRefreshTokenInvalid
	}
	return nil
}

// RevokeAllUserTokens revokes all refresh tokens for a user
func (js *JWTService) RevokeAllUserTokens(userID uint) error {
	if err := js.db.Model(&models.RefreshToken{}).
		Where("user_id = ? AND is_revoked = ?", userID, false).
		Update("is_revoked", true).Error; err != nil {
		return err
	}
	js.logger.Info("✅ All refresh tokens revoked", zap.Uint("user_id", userID))
	return nil
}

// CleanupExpiredTokens removes expired and revoked refresh tokens
func (js *JWTService) CleanupExpiredTokens() (int64, error) {
	res := js.db.Where("expires_at < ? OR is_revoked = ?", js.now(), true).Delete(&models.RefreshToken{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
