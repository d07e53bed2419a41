package domain

import "strings"

// User is one member of the static roster. Users are immutable values;
// tasks embed a copy rather than referencing the roster entry.
type User struct {
	ID     string
	Name   string
	Avatar string
	Email  string
}

// NewUser validates a roster entry.
func NewUser(id, name, avatar, email string) (User, error) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	if id == "" {
		return User{}, ErrInvalidID
	}
	if name == "" {
		return User{}, ErrInvalidName
	}
	return User{
		ID:     id,
		Name:   name,
		Avatar: strings.TrimSpace(avatar),
		Email:  strings.TrimSpace(email),
	}, nil
}

// IsZero reports whether u is the "unassigned" value.
func (u User) IsZero() bool {
	return u == User{}
}
