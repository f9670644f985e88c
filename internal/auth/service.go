// Package auth issues role-scoped tokens for municipal staff. The review
// workflow's role guards consume the role claim; everything else about
// identity (guardian logins, ID-porten) is an upstream concern.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	id "opptak/pkg/domain"
	dErrors "opptak/pkg/domain-errors"
	"opptak/pkg/platform/sentinel"
)

// TokenTTL bounds how long a staff session token stays valid.
const TokenTTL = 8 * time.Hour

// Claims is the JWT payload for staff tokens.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Service verifies staff credentials and signs session tokens.
type Service struct {
	store      StaffStore
	signingKey []byte
}

func NewService(store StaffStore, signingKey []byte) *Service {
	return &Service{store: store, signingKey: signingKey}
}

// Login verifies the password and returns a signed token. Unknown usernames
// and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string, now time.Time) (string, Staff, error) {
	staff, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", Staff{}, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return "", Staff{}, dErrors.Wrap(dErrors.CodeInternal, "find staff account", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(password)) != nil {
		return "", Staff{}, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}

	claims := Claims{
		Role: staff.Role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   staff.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", Staff{}, dErrors.Wrap(dErrors.CodeInternal, "sign token", err)
	}
	return token, staff, nil
}

// Verify parses a token and returns the staff id and role it carries.
func (s *Service) Verify(tokenString string) (id.StaffID, id.Role, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		return s.signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return id.StaffID{}, "", dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	staffID, err := id.ParseStaffID(claims.Subject)
	if err != nil {
		return id.StaffID{}, "", dErrors.New(dErrors.CodeUnauthorized, "invalid token subject")
	}
	role, err := id.ParseRole(claims.Role)
	if err != nil {
		return id.StaffID{}, "", dErrors.New(dErrors.CodeUnauthorized, "invalid token role")
	}
	return staffID, role, nil
}

// HashPassword produces a bcrypt hash for seeding staff accounts.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
