// Package models defines the client-side user records exchanged with the
// remote User Service.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// UserType is the two-tier role of a user.
type UserType string

const (
	TypeRegular UserType = "regular"
	TypeAdmin   UserType = "admin"
)

// ParseUserType maps any value other than "admin" to TypeRegular.
func ParseUserType(s string) UserType {
	if UserType(s) == TypeAdmin {
		return TypeAdmin
	}
	return TypeRegular
}

// Normalize returns t, or TypeRegular when t is empty or unknown.
func (t UserType) Normalize() UserType {
	return ParseUserType(string(t))
}

// UserID is the opaque, server-assigned identifier of a user. The server may
// send it as a JSON number or a string; it is always kept as text.
type UserID string

// ProtectedUserID is the record the server refuses to delete.
const ProtectedUserID UserID = "1"

func (id UserID) String() string { return string(id) }

// IsProtected reports whether id is the protected record.
func (id UserID) IsProtected() bool { return id == ProtectedUserID }

func (id *UserID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = UserID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("user id: %w", err)
	}
	*id = UserID(n.String())
	return nil
}

// MarshalJSON writes numeric ids as numbers so the round trip keeps the
// server's representation.
func (id UserID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// User is a user record as returned by the service. The password is
// write-only and never part of this type.
type User struct {
	ID    UserID   `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Type  UserType `json:"type,omitempty"`
}

// UserDraft carries the fields of a user to be created.
type UserDraft struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Type     UserType `json:"type"`
}
