package directory

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Hazem-GitHub/Luftborn-Task-Manager/internal/domain"
)

func TestParseRoster(t *testing.T) {
	data := []byte(`- id: u-1
  name: Maha Adel
  avatar: MA
  email: maha@example.com
- id: u-2
  name: Omar Riad
`)
	roster, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	users := roster.Users()
	if len(users) != 2 {
		t.Fatalf("Users() len = %d, want 2", len(users))
	}
	if users[0].ID != "u-1" || users[0].Avatar != "MA" {
		t.Fatalf("unexpected first user %+v", users[0])
	}
	user, ok := roster.UserByID("u-2")
	if !ok {
		t.Fatal("UserByID(u-2) not found")
	}
	if user.Name != "Omar Riad" {
		t.Fatalf("user name = %q", user.Name)
	}
	if _, ok := roster.UserByID("u-404"); ok {
		t.Fatal("UserByID(u-404) should miss")
	}
}

func TestParseRosterRejectsInvalidUser(t *testing.T) {
	_, err := Parse([]byte("- id: u-1\n  name: \"  \"\n"))
	if !errors.Is(err, domain.ErrInvalidName) {
		t.Fatalf("Parse() error = %v, want ErrInvalidName", err)
	}
}

func TestParseRosterLastDuplicateWins(t *testing.T) {
	data := []byte(`- id: u-1
  name: First
- id: u-1
  name: Second
`)
	roster, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := len(roster.Users()); got != 1 {
		t.Fatalf("Users() len = %d, want 1", got)
	}
	user, _ := roster.UserByID("u-1")
	if user.Name != "Second" {
		t.Fatalf("user name = %q, want Second", user.Name)
	}
}

func TestLoadMissingFileFallsBack(t *testing.T) {
	roster, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(roster.Users()) == 0 {
		t.Fatal("expected default roster")
	}
}

func TestLoadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.yaml")
	if err := os.WriteFile(path, []byte("- id: u-9\n  name: Nora\n"), 0o644); err != nil {
		t.Fatalf("write roster: %v", err)
	}
	roster, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, ok := roster.UserByID("u-9"); !ok {
		t.Fatal("UserByID(u-9) not found")
	}
}

func TestUsersCopyIsIndependent(t *testing.T) {
	roster := Default()
	users := roster.Users()
	users[0].Name = "mutated"
	if fresh := roster.Users(); fresh[0].Name == "mutated" {
		t.Fatal("Users() should return a copy")
	}
}
