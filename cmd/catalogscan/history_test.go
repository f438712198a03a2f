package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/catalogscan/catalogscan/internal/database"
	"github.com/catalogscan/catalogscan/internal/model"
)

// seedHistory creates a history database with one finished run.
func seedHistory(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "history.db")
	db, err := database.Open(path, database.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	ctx := context.Background()
	start := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)
	if err := db.BeginRun(ctx, "run-1", start); err != nil {
		t.Fatal(err)
	}
	if err := db.RecordTerm(ctx, "run-1", model.TermResult{
		Term:       model.NewTerm(2025, model.Fall),
		Code:       "202508",
		Name:       "Fall 2025",
		Status:     model.TermComplete,
		Discovered: 12,
		Succeeded:  12,
		StartedAt:  start,
		Duration:   90 * time.Second,
	}); err != nil {
		t.Fatal(err)
	}
	if err := db.FinishRun(ctx, "run-1", start.Add(2*time.Minute), false); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestHistoryCmd(t *testing.T) {
	t.Parallel()

	t.Run("lists runs", func(t *testing.T) {
		t.Parallel()
		path := seedHistory(t)

		var out bytes.Buffer
		cmd := NewHistoryCmd()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"--db", path})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{"run-1", database.RunComplete} {
			if !strings.Contains(out.String(), want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, out.String())
			}
		}
	})

	t.Run("shows one run", func(t *testing.T) {
		t.Parallel()
		path := seedHistory(t)

		var out bytes.Buffer
		cmd := NewHistoryCmd()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"--db", path, "run-1"})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{"Fall 2025", "202508", "complete"} {
			if !strings.Contains(out.String(), want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, out.String())
			}
		}
	})

	t.Run("unknown run", func(t *testing.T) {
		t.Parallel()
		path := seedHistory(t)

		cmd := NewHistoryCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetArgs([]string{"--db", path, "nope"})
		if err := cmd.Execute(); !errors.Is(err, database.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("missing database", func(t *testing.T) {
		t.Parallel()
		cmd := NewHistoryCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetArgs([]string{"--db", filepath.Join(t.TempDir(), "none.db")})
		if err := cmd.Execute(); err == nil {
			t.Error("expected an error for a missing database")
		}
	})
}
