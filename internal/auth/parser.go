package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"guias-service/internal/model"
)

type Claims struct {
	SessionID uuid.UUID      `json:"sid"`
	UserID    uuid.UUID      `json:"sub"`
	Role      model.UserRole `json:"role"`
	GuideID   *uuid.UUID     `json:"guide_id,omitempty"`
	jwt.RegisteredClaims
}

// Principal maps the token claims onto the request identity the services
// scope by. Guide tokens carry their guide id; admin and coordinator tokens
// do not.
func (c *Claims) Principal() model.Principal {
	return model.Principal{
		UserID:    c.UserID,
		SessionID: c.SessionID,
		Role:      c.Role,
		GuideID:   c.GuideID,
	}
}

type Parser struct {
	secret []byte
}

func NewParser(secret string) *Parser {
	return &Parser{secret: []byte(secret)}
}

func (p *Parser) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	return claims, nil
}
