package directory

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"

	"github.com/Hazem-GitHub/Luftborn-Task-Manager/internal/domain"
	"gopkg.in/yaml.v3"
)

// Roster is a static user directory loaded once at startup.
type Roster struct {
	users []domain.User
	byID  map[string]domain.User
}

type userRecord struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Avatar string `yaml:"avatar"`
	Email  string `yaml:"email"`
}

// New builds a roster from the given users. Later duplicates of an id
// win, matching the overlay behavior of Load.
func New(users []domain.User) *Roster {
	r := &Roster{byID: make(map[string]domain.User, len(users))}
	for _, user := range users {
		if _, ok := r.byID[user.ID]; ok {
			for i := range r.users {
				if r.users[i].ID == user.ID {
					r.users[i] = user
				}
			}
			r.byID[user.ID] = user
			continue
		}
		r.users = append(r.users, user)
		r.byID[user.ID] = user
	}
	return r
}

// Default returns the compiled-in roster used when no roster file exists.
func Default() *Roster {
	return New(defaultUsers())
}

// Load reads a YAML roster file. A missing file or an empty path falls
// back to the compiled-in defaults.
func Load(path string) (*Roster, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read roster %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML roster document.
func Parse(data []byte) (*Roster, error) {
	var records []userRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}
	users := make([]domain.User, 0, len(records))
	for i, rec := range records {
		user, err := domain.NewUser(rec.ID, rec.Name, rec.Avatar, rec.Email)
		if err != nil {
			return nil, fmt.Errorf("roster users[%d]: %w", i, err)
		}
		users = append(users, user)
	}
	return New(users), nil
}

// UserByID looks up a single user.
func (r *Roster) UserByID(id string) (domain.User, bool) {
	user, ok := r.byID[id]
	return user, ok
}

// Users returns the roster in file order.
func (r *Roster) Users() []domain.User {
	return slices.Clone(r.users)
}

func defaultUsers() []domain.User {
	return []domain.User{
		{ID: "u-amira", Name: "Amira Fahmy", Avatar: "AF", Email: "amira.fahmy@example.com"},
		{ID: "u-hazem", Name: "Hazem Saleh", Avatar: "HS", Email: "hazem.saleh@example.com"},
		{ID: "u-lina", Name: "Lina Osman", Avatar: "LO", Email: "lina.osman@example.com"},
		{ID: "u-tarek", Name: "Tarek Nour", Avatar: "TN", Email: "tarek.nour@example.com"},
	}
}
