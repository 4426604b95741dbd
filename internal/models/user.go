package models

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// User is a local account. Third-party accounts hang off it as [Credential] values.
type User struct {
	id           string
	sequence     int
	email        string
	name         string
	passwordHash string
	createdAt    time.Time
	updatedAt    time.Time
	deletedAt    *time.Time
}

// NewUser creates a [User] with creation timestamps set to now.
func NewUser(sequence int, email, name string) *User {
	now := time.Now()
	return &User{
		sequence:  sequence,
		email:     strings.ToLower(strings.TrimSpace(email)),
		name:      name,
		createdAt: now,
		updatedAt: now,
	}
}

func (u *User) ID() string            { return u.id }
func (u *User) Sequence() int         { return u.sequence }
func (u *User) Email() string         { return u.email }
func (u *User) Name() string          { return u.name }
func (u *User) PasswordHash() string  { return u.passwordHash }
func (u *User) CreatedAt() time.Time  { return u.createdAt }
func (u *User) UpdatedAt() time.Time  { return u.updatedAt }
func (u *User) DeletedAt() *time.Time { return u.deletedAt }

func (u *User) SetID(id string)             { u.id = id }
func (u *User) SetSequence(seq int)         { u.sequence = seq }
func (u *User) SetName(name string)         { u.name = name }
func (u *User) SetPasswordHash(hash string) { u.passwordHash = hash }
func (u *User) SetCreatedAt(t time.Time)    { u.createdAt = t }
func (u *User) SetUpdatedAt(t time.Time)    { u.updatedAt = t }
func (u *User) SetDeletedAt(t *time.Time)   { u.deletedAt = t }

// Validate checks the email address and that a password hash has been set.
func (u *User) Validate() error {
	if u.email == "" {
		return fmt.Errorf("email is required")
	}
	if _, err := mail.ParseAddress(u.email); err != nil {
		return fmt.Errorf("invalid email %q: %w", u.email, err)
	}
	if u.passwordHash == "" {
		return fmt.Errorf("password hash is required")
	}
	return nil
}
