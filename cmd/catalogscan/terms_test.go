package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/catalogscan/catalogscan/internal/database"
	"github.com/catalogscan/catalogscan/internal/model"
)

func TestTermsCmd(t *testing.T) {
	t.Parallel()

	t.Run("explicit terms", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		cmd := NewTermsCmd()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"--terms", "2025/fall,2025/winter"})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for _, want := range []string{"202508", "Fall 2025", "202512", "Winter 2024-2025"} {
			if !strings.Contains(out.String(), want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, out.String())
			}
		}
	})

	t.Run("invalid term", func(t *testing.T) {
		t.Parallel()
		cmd := NewTermsCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetArgs([]string{"--terms", "2025/autumn"})
		if err := cmd.Execute(); err == nil {
			t.Error("expected an error for an unknown season")
		}
	})

	t.Run("zero count plans nothing", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		cmd := NewTermsCmd()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"--count", "0"})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out.String(), "No terms planned") {
			t.Errorf("unexpected output: %q", out.String())
		}
	})
}

func TestRenderPlanWithHistory(t *testing.T) {
	t.Parallel()

	db, err := database.Open(filepath.Join(t.TempDir(), "history.db"), database.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	ctx := context.Background()
	now := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)
	if err := db.BeginRun(ctx, "run-1", now); err != nil {
		t.Fatal(err)
	}
	fall := model.NewTerm(2025, model.Fall)
	if err := db.RecordTerm(ctx, "run-1", model.TermResult{
		Term: fall, Code: "202508", Name: "Fall 2025", Status: model.TermAborted, StartedAt: now,
	}); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	cmd := NewTermsCmd()
	cmd.SetOut(&out)
	plan := []model.Term{fall, model.NewTerm(2025, model.Summer)}
	if err := renderPlan(ctx, cmd, plan, db); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(out.String(), "\n")
	var fallLine, summerLine string
	for _, l := range lines {
		switch {
		case strings.Contains(l, "202508"):
			fallLine = l
		case strings.Contains(l, "202505"):
			summerLine = l
		}
	}
	if !strings.Contains(fallLine, string(model.TermAborted)) {
		t.Errorf("expected fall to show its last status, got %q", fallLine)
	}
	if strings.Contains(summerLine, string(model.TermAborted)) {
		t.Errorf("expected summer to have no status, got %q", summerLine)
	}
}
