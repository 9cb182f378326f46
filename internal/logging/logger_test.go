package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func reset(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		CloseAll()
		Initialize("", Options{})
	})
}

func TestDisabledByDefault(t *testing.T) {
	reset(t)
	if err := Initialize("", Options{}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if IsCategoryEnabled(CategoryCompile) {
		t.Error("categories should be disabled without debug mode")
	}
	// No-op loggers must be safe to use.
	Compile("dropped")
	Get(CategorySampler).Error("dropped")
}

func TestDebugModeRequiresDir(t *testing.T) {
	reset(t)
	if err := Initialize("", Options{Debug: true}); err == nil {
		t.Error("debug mode without a directory should fail")
	}
}

func TestWritesToCategoryFile(t *testing.T) {
	reset(t)
	dir := t.TempDir()
	if err := Initialize(dir, Options{Debug: true, Level: "debug"}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	Compile("compiled %d statement(s)", 2)
	CompileDebug("observed %s", "f(a)")
	CloseAll()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one log file, got %d", len(entries))
	}
	name := entries[0].Name()
	if !strings.HasSuffix(name, "_compile.log") {
		t.Errorf("unexpected log file name %q", name)
	}

	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	if !strings.Contains(content, "[INFO] compiled 2 statement(s)") {
		t.Errorf("missing info line in %q", content)
	}
	if !strings.Contains(content, "[DEBUG] observed f(a)") {
		t.Errorf("missing debug line in %q", content)
	}
}

func TestLevelFiltersDebug(t *testing.T) {
	reset(t)
	dir := t.TempDir()
	if err := Initialize(dir, Options{Debug: true, Level: "info"}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	SamplerDebug("should be filtered")
	Sampler("should appear")
	CloseAll()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one log file, got %d", len(entries))
	}
	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "filtered") {
		t.Error("debug line should be filtered at info level")
	}
	if !strings.Contains(string(data), "should appear") {
		t.Error("info line missing")
	}
}

func TestCategoryFilter(t *testing.T) {
	reset(t)
	dir := t.TempDir()
	err := Initialize(dir, Options{
		Debug:      true,
		Categories: map[string]bool{"world": false},
	})
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if IsCategoryEnabled(CategoryWorld) {
		t.Error("world category should be disabled")
	}
	if !IsCategoryEnabled(CategoryModel) {
		t.Error("unlisted categories should stay enabled")
	}

	World("dropped")
	CloseAll()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("disabled category should write nothing, found %v", entries)
	}
}
