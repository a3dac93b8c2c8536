package config

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bpbdbogor/portal/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore("") // in-memory
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAdminCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	admin := &model.Admin{
		Username:     "admin",
		PasswordHash: "$2a$10$notarealhashbutlongenoughtostore",
		Name:         "Administrator",
		IsActive:     true,
	}
	if err := s.CreateAdmin(ctx, admin); err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}
	if admin.ID == "" {
		t.Fatal("expected generated ID after create")
	}
	if admin.Role != model.DefaultRole {
		t.Errorf("role = %q, want %q", admin.Role, model.DefaultRole)
	}

	got, err := s.FindAdminByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("FindAdminByUsername: %v", err)
	}
	if got.ID != admin.ID {
		t.Errorf("got ID %q, want %q", got.ID, admin.ID)
	}
	if got.PasswordHash != admin.PasswordHash {
		t.Errorf("password hash not round-tripped")
	}
	if got.Name != "Administrator" {
		t.Errorf("got name %q, want %q", got.Name, "Administrator")
	}
	if !got.IsActive {
		t.Error("expected IsActive true")
	}

	list, err := s.ListAdmins(ctx)
	if err != nil {
		t.Fatalf("ListAdmins: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("got %d admins, want 1", len(list))
	}
}

func TestFindAdminByUsernameNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.FindAdminByUsername(context.Background(), "ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFindAdminByUsernameIsCaseSensitive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateAdmin(ctx, &model.Admin{Username: "admin", PasswordHash: "x"}); err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}

	_, err := s.FindAdminByUsername(ctx, "Admin")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for differently-cased username, got %v", err)
	}
}

func TestCreateAdminDuplicateUsername(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateAdmin(ctx, &model.Admin{Username: "admin", PasswordHash: "x"}); err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}
	err := s.CreateAdmin(ctx, &model.Admin{Username: "admin", PasswordHash: "y"})
	if !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.EnsureAdmin(ctx, &model.Admin{Username: "admin", PasswordHash: "first"})
	if err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	if !created {
		t.Error("expected first EnsureAdmin to create the record")
	}

	created, err = s.EnsureAdmin(ctx, &model.Admin{Username: "admin", PasswordHash: "second"})
	if err != nil {
		t.Fatalf("EnsureAdmin (second): %v", err)
	}
	if created {
		t.Error("expected second EnsureAdmin to be a no-op")
	}

	got, err := s.FindAdminByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("FindAdminByUsername: %v", err)
	}
	if got.PasswordHash != "first" {
		t.Errorf("existing record was overwritten: hash = %q", got.PasswordHash)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), DatabaseConfig{Driver: "oracle"})
	if err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestOpenRequiresDSNForServerDrivers(t *testing.T) {
	for _, driver := range []string{"postgres", "mysql", "mssql"} {
		t.Run(driver, func(t *testing.T) {
			_, err := Open(context.Background(), DatabaseConfig{Driver: driver})
			if err == nil {
				t.Fatalf("expected error when dsn is empty for %s", driver)
			}
		})
	}
}

func TestOpenFileBackedSQLite(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(context.Background(), DatabaseConfig{DataDir: dir})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if s.Driver() != "sqlite" {
		t.Errorf("driver = %q, want sqlite", s.Driver())
	}
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestNormalizeMySQLDSNForcesParseTime(t *testing.T) {
	dsn, err := normalizeMySQLDSN("portal:secret@tcp(localhost:3306)/portal")
	if err != nil {
		t.Fatalf("normalizeMySQLDSN: %v", err)
	}
	if want := "parseTime=true"; !strings.Contains(dsn, want) {
		t.Errorf("dsn %q does not contain %q", dsn, want)
	}
}

func TestAvailableDrivers(t *testing.T) {
	got := AvailableDrivers()
	want := []string{"mssql", "mysql", "postgres", "sqlite"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("drivers[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestMigrateIsRepeatable(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(context.Background()); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestMigrateReportsFailingStatement(t *testing.T) {
	s := newTestStore(t)
	s.dialect.Migrations = []string{"ALTER TABLE admins ADD COLUMN name TEXT"}

	err := s.migrate(context.Background())
	if err == nil {
		t.Fatal("expected a migration error")
	}
	if !strings.Contains(err.Error(), "migration failed") {
		t.Errorf("err = %v, want it to name the failing migration", err)
	}
}
