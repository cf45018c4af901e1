package service

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"factory-ops/internal/entities"
	apperrors "factory-ops/pkg/errors"
)

// JwtCustomClaim - полезная нагрузка токена. Токены выпускает внешний сервис авторизации,
// здесь они только проверяются и превращаются в профиль актора.
type JwtCustomClaim struct {
	UserID     uint64 `json:"userId"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Permission string `json:"permission"`
	jwt.RegisteredClaims
}

func (c *JwtCustomClaim) Profile() entities.Profile {
	return entities.Profile{
		ID:         c.UserID,
		Name:       c.Name,
		Email:      c.Email,
		Permission: c.Permission,
	}
}

type JWTService interface {
	GenerateToken(profile entities.Profile) (string, error)
	ValidateToken(tokenString string) (*JwtCustomClaim, error)
	GetAccessTokenTTL() time.Duration
}

type jwtService struct {
	secretKey      string
	accessTokenExp time.Duration
	logger         *zap.Logger
}

func NewJWTService(secretKey string, accessTokenExp time.Duration, logger *zap.Logger) JWTService {
	return &jwtService{
		secretKey:      secretKey,
		accessTokenExp: accessTokenExp,
		logger:         logger,
	}
}

// GenerateToken используется сидером и тестами для выпуска локальных токенов.
func (s *jwtService) GenerateToken(profile entities.Profile) (string, error) {
	now := time.Now()
	claims := &JwtCustomClaim{
		UserID:     profile.ID,
		Name:       profile.Name,
		Email:      profile.Email,
		Permission: profile.Permission,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTokenExp)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	return token.SignedString([]byte(s.secretKey))
}

func (s *jwtService) GetAccessTokenTTL() time.Duration {
	return s.accessTokenExp
}

func (s *jwtService) ValidateToken(tokenString string) (*JwtCustomClaim, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JwtCustomClaim{}, func(token *jwt.Token) (interface{}, error) {
		switch token.Method.(type) {
		case *jwt.SigningMethodHMAC:
			return []byte(s.secretKey), nil
		default:
			return nil, apperrors.ErrInvalidSigningMethod
		}
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		if errors.Is(err, apperrors.ErrInvalidSigningMethod) {
			return nil, apperrors.ErrInvalidSigningMethod
		}
		s.logger.Debug("Ошибка парсинга или проверки подписи токена", zap.Error(err))
		return nil, apperrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*JwtCustomClaim)
	if !ok || !token.Valid {
		s.logger.Warn("Токен невалиден или не удалось извлечь claims")
		return nil, apperrors.ErrInvalidToken
	}
	if claims.UserID == 0 || claims.Permission == "" {
		return nil, apperrors.ErrInvalidToken
	}

	return claims, nil
}
