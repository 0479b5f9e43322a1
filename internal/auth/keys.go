package auth

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"github.com/gorilla/securecookie"
	"golang.org/x/crypto/hkdf"
)

// Keys are the secrets for signing and encrypting cookies and for CSRF
// tokens.
type Keys struct {
	Hash  []byte // 64 bytes, HMAC-SHA256 of the cookie
	Block []byte // 32 bytes, AES-256 of the cookie
	CSRF  []byte // 32 bytes
}

// ErrNoSecret is returned when a production config has no session secret.
var ErrNoSecret = errors.New("auth: session secret is required in prod")

// DeriveKeys expands secret into independent keys with HKDF-SHA256. An
// empty secret outside prod yields random keys, which invalidates every
// cookie on restart.
func DeriveKeys(secret string, prod bool) (Keys, error) {
	if secret == "" {
		if prod {
			return Keys{}, ErrNoSecret
		}
		return Keys{
			Hash:  securecookie.GenerateRandomKey(64),
			Block: securecookie.GenerateRandomKey(32),
			CSRF:  securecookie.GenerateRandomKey(32),
		}, nil
	}

	var k Keys
	var err error
	if k.Hash, err = expand(secret, "cookie-hash", 64); err != nil {
		return Keys{}, err
	}
	if k.Block, err = expand(secret, "cookie-block", 32); err != nil {
		return Keys{}, err
	}
	if k.CSRF, err = expand(secret, "csrf", 32); err != nil {
		return Keys{}, err
	}
	return k, nil
}

func expand(secret, info string, n int) ([]byte, error) {
	h := hkdf.New(sha256.New, []byte(secret), nil, []byte(info))
	out := make([]byte, n)
	if _, err := io.ReadFull(h, out); err != nil {
		return nil, fmt.Errorf("auth: derive %s key: %w", info, err)
	}
	return out, nil
}
