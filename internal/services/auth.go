package services

import (
	"errors"
	"time"

	"task-platform/backend/internal/config"
	"task-platform/backend/internal/models"

	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// ErrInvalidToken covers bad signature, malformed payload and expiry alike;
// callers must not be able to tell them apart.
var (
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// TokenClaims is the decoded assertion carried by a signed token. Role is
// only present on access tokens; refresh tokens re-check role against
// current state when a new access token is issued.
type TokenClaims struct {
	Subject   uuid.UUID
	Role      string
	TokenType string
}

type AuthService interface {
	HashPassword(password string) (string, error)
	VerifyPassword(hashedPassword, plainPassword string) bool
	IssueAccessToken(userID uuid.UUID, role string) (string, error)
	IssueRefreshToken(userID uuid.UUID) (string, error)
	DecodeToken(tokenString string) (*TokenClaims, error)
	LoginUser(db *gorm.DB, email, password string) (*models.User, error)
}

type AuthServiceImpl struct {
	cfg config.AuthConfig
}

func NewAuthService(cfg config.AuthConfig) *AuthServiceImpl {
	return &AuthServiceImpl{cfg: cfg}
}

func (s *AuthServiceImpl) HashPassword(password string) (string, error) {
	cost := s.cfg.BCryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (s *AuthServiceImpl) VerifyPassword(hashedPassword, plainPassword string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword)) == nil
}

// IssueAccessToken embeds the role so authorized requests skip a database
// round trip. Role changes become visible only after re-authentication.
func (s *AuthServiceImpl) IssueAccessToken(userID uuid.UUID, role string) (string, error) {
	return s.signToken(jwt.MapClaims{
		"sub":  userID.String(),
		"role": role,
		"type": TokenTypeAccess,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(s.cfg.AccessTokenTTL).Unix(),
	})
}

func (s *AuthServiceImpl) IssueRefreshToken(userID uuid.UUID) (string, error) {
	return s.signToken(jwt.MapClaims{
		"sub":  userID.String(),
		"type": TokenTypeRefresh,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(s.cfg.RefreshTokenTTL).Unix(),
	})
}

func (s *AuthServiceImpl) signToken(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthServiceImpl) DecodeToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	subject, err := uuid.FromString(sub)
	if err != nil {
		return nil, ErrInvalidToken
	}

	tokenType, _ := claims["type"].(string)
	if tokenType == "" {
		return nil, ErrInvalidToken
	}

	role, _ := claims["role"].(string)

	return &TokenClaims{
		Subject:   subject,
		Role:      role,
		TokenType: tokenType,
	}, nil
}

func (s *AuthServiceImpl) LoginUser(db *gorm.DB, email, password string) (*models.User, error) {
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.VerifyPassword(user.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}
