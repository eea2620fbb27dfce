package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

type Issuer struct {
	Secret []byte
	TTL    time.Duration
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Issuer{Secret: []byte(secret), TTL: ttl}
}

// Phone ikut masuk claims: pipeline checkout butuh nomor HP pembeli
// tanpa harus query users lagi.
func (i *Issuer) Sign(id Identity) (string, error) {
	claims := jwt.MapClaims{
		"id":    id.UserID,
		"email": id.Email,
		"name":  id.Name,
		"phone": id.Phone,
		"role":  string(id.Role),
		"exp":   time.Now().Add(i.TTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(i.Secret)
}

func (i *Issuer) Verify(token string) (Identity, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return i.Secret, nil
	})
	if err != nil || !parsed.Valid {
		return Identity{}, ErrInvalidToken
	}
	m, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	id := Identity{}
	id.UserID, _ = m["id"].(string)
	id.Email, _ = m["email"].(string)
	id.Name, _ = m["name"].(string)
	id.Phone, _ = m["phone"].(string)
	if r, ok := m["role"].(string); ok {
		id.Role = Role(r)
	}
	if id.UserID == "" {
		return Identity{}, ErrInvalidToken
	}
	return id, nil
}
