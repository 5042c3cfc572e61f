package models

// UserUpdate is the input of an update call. It is either a FullUpdate,
// which leaves the stored password untouched, or a FullUpdateWithPassword.
// The set of implementations is closed.
type UserUpdate interface {
	Payload() UpdatePayload
	isUserUpdate()
}

// FullUpdate resends name, email and type.
type FullUpdate struct {
	Name  string
	Email string
	Type  UserType
}

// FullUpdateWithPassword additionally replaces the password.
type FullUpdateWithPassword struct {
	FullUpdate
	Password string
}

// UpdatePayload is the wire body of an update. Password is omitted from the
// JSON entirely when nil.
type UpdatePayload struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Type     UserType `json:"type"`
	Password *string  `json:"password,omitempty"`
}

func (u FullUpdate) Payload() UpdatePayload {
	return UpdatePayload{Name: u.Name, Email: u.Email, Type: u.Type.Normalize()}
}

func (u FullUpdateWithPassword) Payload() UpdatePayload {
	p := u.FullUpdate.Payload()
	pw := u.Password
	p.Password = &pw
	return p
}

func (FullUpdate) isUserUpdate()             {}
func (FullUpdateWithPassword) isUserUpdate() {}

// NewUserUpdate picks the variant: a password change is included only when
// newPassword is non-empty.
func NewUserUpdate(name, email string, t UserType, newPassword string) UserUpdate {
	base := FullUpdate{Name: name, Email: email, Type: t}
	if newPassword == "" {
		return base
	}
	return FullUpdateWithPassword{FullUpdate: base, Password: newPassword}
}
