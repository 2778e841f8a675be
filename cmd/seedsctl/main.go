package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/briandconnelly/seeds/internal/storage"
	seedsapi "github.com/briandconnelly/seeds/pkg/seeds"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "run":
		return runRun(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "info":
		return runInfo(ctx, args[1:])
	case "counts":
		return runCounts(ctx, args[1:])
	case "transitions":
		return runTransitions(ctx, args[1:])
	case "resources":
		return runResources(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind := fs.String("store", "memory", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "seeds.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := storage.NewStore(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()

	if err := store.Init(ctx); err != nil {
		return err
	}
	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "experiment configuration YAML path")
	runID := fs.String("run-id", "", "explicit run id (optional)")
	seed := fs.Int64("seed", 1, "rng seed")
	epochs := fs.Int("epochs", 0, "epoch budget override (0 keeps the configured budget)")
	storeKind := fs.String("store", "memory", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "seeds.db", "sqlite database path")
	reportsDir := fs.String("reports-dir", "reports", "directory for per-run data files")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *configPath == "" {
		return errors.New("run requires --config")
	}

	client, err := seedsapi.New(seedsapi.Options{StoreKind: *storeKind, DBPath: *dbPath, ReportsDir: *reportsDir})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	summary, err := client.Run(ctx, seedsapi.RunRequest{
		ConfigPath: *configPath,
		Seed:       *seed,
		Epochs:     *epochs,
		RunID:      *runID,
	})
	if err != nil {
		return err
	}

	fmt.Printf("run completed run_id=%s seed=%d epochs=%d\n", summary.RunID, summary.Seed, summary.Epochs)
	for _, p := range summary.Populations {
		fmt.Printf("population=%s degenerate_updates=%d\n", p.Name, p.DegenerateUpdates)
		for i, name := range p.TypeNames {
			fmt.Printf("type=%s count=%d\n", name, p.TypeCount[i])
		}
	}
	for _, r := range summary.Resources {
		fmt.Printf("resource=%s mean=%.6f stddev=%.6f min=%.6f max=%.6f\n",
			r.Resource, r.Mean, r.StdDev, r.Min, r.Max)
	}
	fmt.Printf("reports_dir=%s\n", summary.ReportsDir)
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "max runs to list")
	jsonOut := fs.Bool("json", false, "emit runs list as JSON")
	reportsDir := fs.String("reports-dir", "reports", "directory for per-run data files")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	client, err := seedsapi.New(seedsapi.Options{StoreKind: "memory", ReportsDir: *reportsDir})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	entries, err := client.Runs(ctx, seedsapi.RunsRequest{Limit: *limit})
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("no runs found")
		return nil
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	for _, e := range entries {
		fmt.Printf("run_id=%s created_at=%s config=%s seed=%d epochs=%d\n",
			e.RunID, e.CreatedAtUTC, e.ConfigPath, e.Seed, e.Epochs)
	}
	return nil
}

func runInfo(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	jsonOut := fs.Bool("json", false, "emit run metadata as JSON")
	storeKind := fs.String("store", "memory", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "seeds.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return errors.New("info requires --run-id")
	}

	client, err := seedsapi.New(seedsapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	run, err := client.RunInfo(ctx, *runID)
	if err != nil {
		return err
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	}

	fmt.Printf("run_id=%s config=%s seed=%d epochs=%d started=%s finished=%s\n",
		run.ID, run.ConfigPath, run.Seed, run.Epochs, run.StartedAt, run.FinishedAt)
	return nil
}

func runCounts(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("counts", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	limit := fs.Int("limit", 0, "max epochs to print (<=0 for all)")
	jsonOut := fs.Bool("json", false, "emit censuses as JSON")
	storeKind := fs.String("store", "memory", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "seeds.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return errors.New("counts requires --run-id")
	}

	client, err := seedsapi.New(seedsapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	records, err := client.Epochs(ctx, seedsapi.EpochsRequest{RunID: *runID, Limit: *limit})
	if err != nil {
		return err
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	for _, record := range records {
		for _, census := range record.Censuses {
			fmt.Printf("epoch=%d population=%s counts=%v degenerate_updates=%d\n",
				census.Epoch, census.Population, census.TypeCount, census.DegenerateUpdates)
		}
	}
	return nil
}

func runTransitions(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("transitions", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	limit := fs.Int("limit", 0, "max epochs to print (<=0 for all)")
	jsonOut := fs.Bool("json", false, "emit transition matrices as JSON")
	storeKind := fs.String("store", "memory", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "seeds.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return errors.New("transitions requires --run-id")
	}

	client, err := seedsapi.New(seedsapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	records, err := client.Epochs(ctx, seedsapi.EpochsRequest{RunID: *runID, Limit: *limit})
	if err != nil {
		return err
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	for _, record := range records {
		for _, tr := range record.Transitions {
			fmt.Printf("epoch=%d population=%s\n", tr.Epoch, tr.Population)
			for from := 0; from < tr.Types; from++ {
				for to := 0; to < tr.Types; to++ {
					if n := tr.At(from, to); n > 0 {
						fmt.Printf("from=%d to=%d count=%d\n", from, to, n)
					}
				}
			}
		}
	}
	return nil
}

func runResources(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("resources", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	limit := fs.Int("limit", 0, "max epochs to print (<=0 for all)")
	jsonOut := fs.Bool("json", false, "emit resource stats as JSON")
	storeKind := fs.String("store", "memory", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "seeds.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return errors.New("resources requires --run-id")
	}

	client, err := seedsapi.New(seedsapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	records, err := client.Epochs(ctx, seedsapi.EpochsRequest{RunID: *runID, Limit: *limit})
	if err != nil {
		return err
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	for _, record := range records {
		for _, r := range record.Resources {
			fmt.Printf("epoch=%d resource=%s mean=%.6f stddev=%.6f min=%.6f max=%.6f\n",
				r.Epoch, r.Resource, r.Mean, r.StdDev, r.Min, r.Max)
		}
	}
	return nil
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: seedsctl <init|run|runs|info|counts|transitions|resources> [flags]", msg)
}
