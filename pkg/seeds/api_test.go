package seeds

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const kerr07ConfigYAML = `
Experiment:
  epochs: 5
Population:
  topology: MooreTopology
  cell: Kerr07Cell
MooreTopology:
  size: 8
  periodic: true
Kerr07Cell:
  death_sensitive: 0.25
  death_resistant: 0.312
  death_producer: 0.333
  toxicity: 0.65
Resource:glucose:
  type: SineResourceCell
  size: 3
  amplitude: 1.0
  period: 20
`

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "experiment.yml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(Options{StoreKind: "memory", ReportsDir: filepath.Join(t.TempDir(), "reports")})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
	})
	if err := client.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	return client
}

func TestClientRunPersistsEpochs(t *testing.T) {
	client := newTestClient(t)
	configPath := writeConfig(t, kerr07ConfigYAML)

	summary, err := client.Run(context.Background(), RunRequest{
		ConfigPath: configPath,
		Seed:       42,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.RunID == "" {
		t.Fatal("expected run id")
	}
	if summary.Epochs != 5 {
		t.Fatalf("expected 5 epochs, got %d", summary.Epochs)
	}
	if len(summary.Populations) != 1 {
		t.Fatalf("expected one population summary, got %d", len(summary.Populations))
	}
	total := 0
	for _, n := range summary.Populations[0].TypeCount {
		total += n
	}
	if total != 64 {
		t.Fatalf("expected census total 64, got %d", total)
	}
	if len(summary.Resources) != 1 || summary.Resources[0].Resource != "glucose" {
		t.Fatalf("unexpected resource stats: %+v", summary.Resources)
	}

	run, err := client.RunInfo(context.Background(), summary.RunID)
	if err != nil {
		t.Fatalf("run info: %v", err)
	}
	if run.Epochs != 5 || run.Seed != 42 {
		t.Fatalf("unexpected run metadata: %+v", run)
	}
	if run.StartedAt == "" || run.FinishedAt == "" {
		t.Fatalf("expected timestamps on run: %+v", run)
	}

	records, err := client.Epochs(context.Background(), EpochsRequest{RunID: summary.RunID})
	if err != nil {
		t.Fatalf("epochs: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("expected 5 epoch records, got %d", len(records))
	}
	for i, record := range records {
		if record.Epoch != i+1 {
			t.Fatalf("record %d has epoch %d", i, record.Epoch)
		}
		if len(record.Censuses) != 1 || len(record.Transitions) != 1 {
			t.Fatalf("unexpected record shape: %+v", record)
		}
		if len(record.Resources) != 1 {
			t.Fatalf("expected resource stats in record: %+v", record)
		}
	}

	limited, err := client.Epochs(context.Background(), EpochsRequest{RunID: summary.RunID, Limit: 2})
	if err != nil {
		t.Fatalf("limited epochs: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected 2 records with limit, got %d", len(limited))
	}

	for _, file := range []string{"run.json", "census.csv", "transitions.csv", "resources.csv"} {
		if _, err := os.Stat(filepath.Join(summary.ReportsDir, file)); err != nil {
			t.Fatalf("expected report file %s: %v", file, err)
		}
	}
	runs, err := client.Runs(context.Background(), RunsRequest{Limit: 5})
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if len(runs) != 1 || runs[0].RunID != summary.RunID {
		t.Fatalf("expected run in index: %+v", runs)
	}
}

func TestClientRunEpochOverrideAndRunID(t *testing.T) {
	client := newTestClient(t)
	configPath := writeConfig(t, kerr07ConfigYAML)

	summary, err := client.Run(context.Background(), RunRequest{
		ConfigPath: configPath,
		Seed:       7,
		Epochs:     2,
		RunID:      "override-run",
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.RunID != "override-run" {
		t.Fatalf("expected requested run id, got %s", summary.RunID)
	}
	if summary.Epochs != 2 {
		t.Fatalf("expected epoch override of 2, got %d", summary.Epochs)
	}
}

func TestClientRunsAreReproducible(t *testing.T) {
	client := newTestClient(t)
	configPath := writeConfig(t, kerr07ConfigYAML)

	first, err := client.Run(context.Background(), RunRequest{ConfigPath: configPath, Seed: 13, RunID: "run-a"})
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := client.Run(context.Background(), RunRequest{ConfigPath: configPath, Seed: 13, RunID: "run-b"})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	for i := range first.Populations[0].TypeCount {
		if first.Populations[0].TypeCount[i] != second.Populations[0].TypeCount[i] {
			t.Fatalf("seeded runs diverged: %v vs %v",
				first.Populations[0].TypeCount, second.Populations[0].TypeCount)
		}
	}
}

func TestClientRunValidatesRequest(t *testing.T) {
	client := newTestClient(t)

	if _, err := client.Run(context.Background(), RunRequest{}); err == nil {
		t.Fatal("expected config path validation error")
	}
	if _, err := client.Run(context.Background(), RunRequest{ConfigPath: "does-not-exist.yml"}); err == nil {
		t.Fatal("expected missing config error")
	}
}

func TestClientRunStopsOnCancelledContext(t *testing.T) {
	client := newTestClient(t)
	configPath := writeConfig(t, strings.Replace(kerr07ConfigYAML, "epochs: 5", "epochs: 0", 1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.Run(ctx, RunRequest{ConfigPath: configPath, Seed: 1}); err == nil {
		t.Fatal("expected context cancellation error")
	}
}

func TestClientQueriesRejectUnknownRun(t *testing.T) {
	client := newTestClient(t)

	if _, err := client.RunInfo(context.Background(), "missing"); err == nil {
		t.Fatal("expected unknown run error")
	}
	if _, err := client.Epochs(context.Background(), EpochsRequest{RunID: "missing"}); err == nil {
		t.Fatal("expected unknown run error")
	}
	if _, err := client.Epochs(context.Background(), EpochsRequest{}); err == nil {
		t.Fatal("expected run id validation error")
	}
}
