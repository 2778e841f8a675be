package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testConfigYAML = `
Experiment:
  epochs: 3
Population:
  topology: MooreTopology
  cell: Kerr07Cell
MooreTopology:
  size: 6
  periodic: true
Kerr07Cell:
  death_sensitive: 0.25
  death_resistant: 0.312
  death_producer: 0.333
  toxicity: 0.65
`

func writeTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "experiment.yml")
	if err := os.WriteFile(path, []byte(testConfigYAML), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestRunCommandMemoryStore(t *testing.T) {
	configPath := writeTestConfig(t)
	reportsDir := filepath.Join(t.TempDir(), "reports")
	args := []string{
		"run",
		"--store", "memory",
		"--config", configPath,
		"--seed", "11",
		"--epochs", "2",
		"--run-id", "cli-test",
		"--reports-dir", reportsDir,
	}
	if err := run(context.Background(), args); err != nil {
		t.Fatalf("run command: %v", err)
	}

	if _, err := os.Stat(filepath.Join(reportsDir, "cli-test", "census.csv")); err != nil {
		t.Fatalf("expected census report: %v", err)
	}
	if err := run(context.Background(), []string{"runs", "--reports-dir", reportsDir}); err != nil {
		t.Fatalf("runs command: %v", err)
	}
}

func TestRunCommandRequiresConfig(t *testing.T) {
	if err := run(context.Background(), []string{"run", "--store", "memory"}); err == nil {
		t.Fatal("expected missing config error")
	}
}

func TestInitCommandMemoryStore(t *testing.T) {
	if err := run(context.Background(), []string{"init", "--store", "memory"}); err != nil {
		t.Fatalf("init command: %v", err)
	}
}

func TestUnknownCommand(t *testing.T) {
	err := run(context.Background(), []string{"bogus"})
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestMissingCommand(t *testing.T) {
	err := run(context.Background(), nil)
	if err == nil || !strings.Contains(err.Error(), "usage:") {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestQueryCommandsRequireRunID(t *testing.T) {
	for _, cmd := range []string{"info", "counts", "transitions", "resources"} {
		if err := run(context.Background(), []string{cmd, "--store", "memory"}); err == nil {
			t.Fatalf("expected %s to require --run-id", cmd)
		}
	}
}
