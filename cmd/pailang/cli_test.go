package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pailang/internal/config"
)

func setupTestConfig(t *testing.T, backend string) {
	t.Helper()
	logger = zap.NewNop()
	cfg = config.Default()
	cfg.Registry.Backend = backend
	cfg.Registry.Path = filepath.Join(t.TempDir(), "registry.json")
	t.Cleanup(func() {
		cfg = nil
		logger = nil
	})
}

func TestCompileCmd_FlatDocument(t *testing.T) {
	setupTestConfig(t, config.BackendMemory)

	doc := filepath.Join(t.TempDir(), "doc.json")
	if err := os.WriteFile(doc, []byte(`{
		"entities": [
			{"type": "task_name", "value": "collect data"},
			{"type": "task_name", "value": "process data"}
		],
		"relationships": [
			{"type": "sequence", "source": "T01", "target": "T02"}
		]
	}`), 0644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	if err := runCompile(cmd, []string{doc}); err != nil {
		t.Fatalf("runCompile failed: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "T01>T02" {
		t.Errorf("compile output = %q, want %q", got, "T01>T02")
	}
}

func TestCompileCmd_CommandHierarchy(t *testing.T) {
	setupTestConfig(t, config.BackendMemory)

	doc := filepath.Join(t.TempDir(), "doc.json")
	if err := os.WriteFile(doc, []byte(`{
		"commands": [{
			"name": "BATCH_OPERATION",
			"parameters": {"BATCH": "nightly"},
			"children": [
				{"name": "EXECUTE_TASK", "parameters": {"TASK": "collect"}},
				{"name": "EXECUTE_TASK", "parameters": {"TASK": "process"}}
			]
		}]
	}`), 0644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	if err := runCompile(cmd, []string{doc}); err != nil {
		t.Fatalf("runCompile failed: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "T01>T02" {
		t.Errorf("compile output = %q, want %q", got, "T01>T02")
	}
}

func TestCompileCmd_Stdin(t *testing.T) {
	setupTestConfig(t, config.BackendMemory)

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader(`{"entities": [{"type": "condition", "value": "ready"}]}`))

	if err := runCompile(cmd, []string{"-"}); err != nil {
		t.Fatalf("runCompile failed: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "L01" {
		t.Errorf("compile output = %q, want %q", got, "L01")
	}
}

func TestCompileCmd_MalformedDocument(t *testing.T) {
	setupTestConfig(t, config.BackendMemory)

	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(`{"entities": [`))

	if err := runCompile(cmd, []string{"-"}); err == nil {
		t.Fatal("expected parse error for malformed document")
	}
}

func TestTokensPersistAcrossRuns(t *testing.T) {
	setupTestConfig(t, config.BackendJSON)

	// Each call opens a fresh registry over the same backing file, the way
	// separate CLI invocations do.
	mint := func() string {
		var out bytes.Buffer
		cmd := &cobra.Command{}
		cmd.SetOut(&out)
		if err := tokensGenerateCmd.RunE(cmd, []string{"process data", "task"}); err != nil {
			t.Fatalf("generate failed: %v", err)
		}
		return strings.TrimSpace(out.String())
	}

	first := mint()
	second := mint()
	if first != second {
		t.Errorf("identifier changed across runs: %q then %q", first, second)
	}
	if first != "T01" {
		t.Errorf("identifier = %q, want T01", first)
	}
}

func TestResolveCmd_NotFound(t *testing.T) {
	setupTestConfig(t, config.BackendMemory)

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	if err := tokensResolveCmd.RunE(cmd, []string{"Z99"}); err != nil {
		t.Fatalf("resolve returned error for unknown id: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "not found" {
		t.Errorf("resolve output = %q, want %q", got, "not found")
	}
}
