package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const adminSubject = "admin"

var (
	ErrAdminNotConfigured = errors.New("admin session not configured")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrJWTInvalid         = errors.New("jwt invalid")
	ErrJWTExpired         = errors.New("jwt expired")
)

// AdminClaims son los claims del token de sesión del panel de administración.
type AdminClaims struct {
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// AdminSession valida la contraseña del admin y emite tokens revocables.
// El token es un JWT HS256 cuyo jti vive como AdminGrant hasta el logout.
type AdminSession struct {
	passwordHash []byte
	secret       []byte
	ttl          time.Duration
	issuer       string
	grants       AdminGrantStore
	now          func() time.Time
}

func NewAdminSession(passwordHash, secret string, ttl time.Duration, grants AdminGrantStore) *AdminSession {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	if grants == nil {
		grants = NewMemoryAdminGrantStore()
	}
	return &AdminSession{
		passwordHash: []byte(strings.TrimSpace(passwordHash)),
		secret:       []byte(secret),
		ttl:          ttl,
		issuer:       "spicy-biryani",
		grants:       grants,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *AdminSession) configured() bool {
	return s != nil && len(s.passwordHash) > 0 && len(s.secret) > 0
}

// Login compara la contraseña con el hash bcrypt y devuelve un token firmado.
// client identifica desde dónde se pidió la sesión.
func (s *AdminSession) Login(ctx context.Context, password, client string) (string, error) {
	if !s.configured() {
		return "", ErrAdminNotConfigured
	}
	if strings.TrimSpace(password) == "" {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := s.now()
	jti := uuid.NewString()
	claims := AdminClaims{
		TokenType: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    s.issuer,
			Subject:   adminSubject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", err
	}
	grant := AdminGrant{
		ID:        jti,
		Client:    strings.TrimSpace(client),
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.grants.Save(ctx, grant); err != nil {
		return "", fmt.Errorf("save admin grant: %w", err)
	}
	return signed, nil
}

// Validate parsea el token y devuelve su grant si sigue vigente.
func (s *AdminSession) Validate(ctx context.Context, token string) (AdminGrant, error) {
	if !s.configured() {
		return AdminGrant{}, ErrAdminNotConfigured
	}
	if strings.TrimSpace(token) == "" {
		return AdminGrant{}, ErrJWTInvalid
	}
	claims, err := s.parseToken(token)
	if err != nil {
		return AdminGrant{}, err
	}
	if claims.TokenType != "admin" || claims.Subject != adminSubject || claims.Issuer != s.issuer || claims.ID == "" {
		return AdminGrant{}, ErrJWTInvalid
	}
	grant, ok, err := s.grants.Find(ctx, claims.ID)
	if err != nil || !ok {
		return AdminGrant{}, ErrJWTInvalid
	}
	return grant, nil
}

// IsAuthenticated es el booleano que consume la UI.
func (s *AdminSession) IsAuthenticated(ctx context.Context, token string) bool {
	_, err := s.Validate(ctx, token)
	return err == nil
}

// Logout revoca el grant del token. Un token ya expirado no es un error.
func (s *AdminSession) Logout(ctx context.Context, token string) error {
	if !s.configured() {
		return ErrAdminNotConfigured
	}
	claims, err := s.parseToken(token)
	if err != nil {
		if errors.Is(err, ErrJWTExpired) {
			return nil
		}
		return err
	}
	if claims.ID == "" {
		return ErrJWTInvalid
	}
	return s.grants.Delete(ctx, claims.ID)
}

func (s *AdminSession) parseToken(tokenString string) (AdminClaims, error) {
	var claims AdminClaims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return AdminClaims{}, ErrJWTExpired
		}
		return AdminClaims{}, ErrJWTInvalid
	}
	return claims, nil
}
