package security

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// PasswordEncoder turns the password a client sent into the value that is stored.
type PasswordEncoder interface {
	Encode(plain string) (string, error)
	Name() string
}

// PlainText stores passwords exactly as provided.
type PlainText struct{}

func (PlainText) Encode(plain string) (string, error) { return plain, nil }

func (PlainText) Name() string { return "plain" }

type Bcrypt struct {
	Cost int
}

func (b Bcrypt) Encode(plain string) (string, error) {
	if len(plain) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	return HashPassword(plain, cost)
}

func (Bcrypt) Name() string { return "bcrypt" }

// NewEncoder resolves the PASSWORD_ENCODER setting.
func NewEncoder(name string) (PasswordEncoder, error) {
	switch name {
	case "", "plain":
		return PlainText{}, nil
	case "bcrypt":
		return Bcrypt{}, nil
	default:
		return nil, fmt.Errorf("unknown password encoder %q", name)
	}
}

// Hash password hashes a plain text password with bcrypt.
func HashPassword(plain string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}
