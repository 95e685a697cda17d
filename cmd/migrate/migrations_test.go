package main

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"bookshelf/db/migrations"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

func TestCollectMigrations_ParsesEmbeddedSet(t *testing.T) {
	goose.SetBaseFS(migrations.FS)
	t.Cleanup(func() { goose.SetBaseFS(nil) })

	got, err := goose.CollectMigrations(".", 0, goose.MaxVersion)
	if err != nil {
		t.Fatalf("expected migrations to parse, got error: %v", err)
	}
	if len(got) < 3 {
		t.Fatalf("expected users, books and readings migrations, got %d", len(got))
	}
}

func TestSQLMigrations_HaveGooseDirectives(t *testing.T) {
	entries, err := fs.ReadDir(migrations.FS, ".")
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		b, err := fs.ReadFile(migrations.FS, e.Name())
		if err != nil {
			t.Fatalf("ReadFile(%s): %v", e.Name(), err)
		}
		s := string(b)
		if !strings.Contains(s, "-- +goose Up") {
			t.Fatalf("%s missing '-- +goose Up'", e.Name())
		}
		if !strings.Contains(s, "-- +goose Down") {
			t.Fatalf("%s missing '-- +goose Down'", e.Name())
		}
	}
}

func TestRun_RejectsBadInvocations(t *testing.T) {
	t.Setenv("MIGRATIONS_DIR", "")
	t.Cleanup(func() { goose.SetBaseFS(nil) })

	if err := run(context.Background(), zap.NewNop(), "create", "add_tags"); err != errCreateNeedsDir {
		t.Fatalf("expected errCreateNeedsDir, got %v", err)
	}

	t.Setenv("MIGRATIONS_DIR", t.TempDir())
	if err := run(context.Background(), zap.NewNop(), "create", ""); err != errCreateNeedsName {
		t.Fatalf("expected errCreateNeedsName, got %v", err)
	}
}
