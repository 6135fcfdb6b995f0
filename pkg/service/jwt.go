package service

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	apperrors "equipment-portal/pkg/errors"
	"equipment-portal/pkg/types"
)

// JwtCustomClaim - claims, которые выпускает backend. Разные версии backend
// кладут id пользователя то в userId, то в id.
type JwtCustomClaim struct {
	UserID   types.ID `json:"userId"`
	AltID    types.ID `json:"id"`
	Role     string   `json:"role"`
	BranchID types.ID `json:"branchId"`
	Name     string   `json:"name"`
	// Verified - подпись проверена секретом шлюза.
	Verified bool `json:"-"`
	jwt.RegisteredClaims
}

func (c *JwtCustomClaim) PrincipalID() types.ID {
	if !c.UserID.IsZero() {
		return c.UserID
	}
	if !c.AltID.IsZero() {
		return c.AltID
	}
	return types.ID(c.RegisteredClaims.Subject)
}

type JWTService interface {
	ParseClaims(tokenString string) (*JwtCustomClaim, error)
}

type jwtService struct {
	secretKey string
	logger    *zap.Logger
}

// NewJWTService: без секрета подпись не проверяется и claims возвращаются
// с Verified=false. Таким claims нельзя верить без подтверждения backend.
func NewJWTService(secretKey string, logger *zap.Logger) JWTService {
	return &jwtService{secretKey: secretKey, logger: logger.Named("jwt")}
}

func (s *jwtService) ParseClaims(tokenString string) (*JwtCustomClaim, error) {
	claims := &JwtCustomClaim{}

	if s.secretKey == "" {
		if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
			s.logger.Debug("не удалось разобрать токен", zap.Error(err))
			return nil, apperrors.ErrInvalidToken
		}
		if claims.ExpiresAt != nil && claims.ExpiresAt.Time.Before(time.Now()) {
			return nil, apperrors.ErrTokenExpired
		}
		return claims, nil
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
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
		s.logger.Debug("ошибка проверки подписи токена", zap.Error(err))
		return nil, apperrors.ErrInvalidToken
	}
	if !token.Valid {
		return nil, apperrors.ErrInvalidToken
	}
	claims.Verified = true
	return claims, nil
}
