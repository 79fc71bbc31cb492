// Package host extracts the host-supplied identity handed to the process at
// startup: an HS256-signed token carrying a numeric id and an optional
// display name.
package host

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/minimart/storefront-sync/internal/core/ports"
)

// ErrNoToken signals that the host supplied no identity at all.
var ErrNoToken = errors.New("host: no identity token")

// FromToken parses and verifies the signed host token. The "uid" claim is
// required; "username" is optional.
func FromToken(token, secret string) (*ports.HostIdentity, error) {
	if token == "" {
		return nil, ErrNoToken
	}

	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("host: invalid identity token: %w", err)
	}
	if !tkn.Valid {
		return nil, errors.New("host: invalid identity token")
	}

	uid, ok := claims["uid"].(float64)
	if !ok {
		return nil, errors.New("host: token missing uid claim")
	}
	username, _ := claims["username"].(string)

	return &ports.HostIdentity{ID: int64(uid), Username: username}, nil
}
