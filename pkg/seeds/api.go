// Package seeds is the public surface of the simulation engine. A
// Client runs configured experiments and reads back the per-epoch
// records they persisted.
package seeds

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/briandconnelly/seeds/internal/config"
	"github.com/briandconnelly/seeds/internal/experiment"
	"github.com/briandconnelly/seeds/internal/model"
	"github.com/briandconnelly/seeds/internal/report"
	"github.com/briandconnelly/seeds/internal/storage"
)

const (
	defaultDBPath     = "seeds.db"
	defaultReportsDir = "reports"
)

type Options struct {
	StoreKind  string
	DBPath     string
	ReportsDir string
}

type Client struct {
	store      storage.Store
	reportsDir string
}

type RunRequest struct {
	ConfigPath string
	Seed       int64
	Epochs     int
	RunID      string
}

type PopulationSummary struct {
	Name              string
	TypeNames         []string
	TypeCount         []int
	DegenerateUpdates int
}

type RunSummary struct {
	RunID       string
	Seed        int64
	Epochs      int
	ReportsDir  string
	Populations []PopulationSummary
	Resources   []model.ResourceStats
}

type EpochsRequest struct {
	RunID string
	Limit int
}

type RunsRequest struct {
	Limit int
}

func New(opts Options) (*Client, error) {
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	reportsDir := opts.ReportsDir
	if reportsDir == "" {
		reportsDir = defaultReportsDir
	}

	store, err := storage.NewStore(opts.StoreKind, dbPath)
	if err != nil {
		return nil, err
	}
	return &Client{store: store, reportsDir: reportsDir}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.store.Init(ctx)
}

// Run executes one experiment to completion and persists a record per
// epoch. The run stops at the configured epoch budget (or the request
// override) or when the context is cancelled, whichever comes first.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if req.ConfigPath == "" {
		return RunSummary{}, errors.New("config path is required")
	}

	cfg, err := config.Load(req.ConfigPath)
	if err != nil {
		return RunSummary{}, err
	}
	if req.Epochs > 0 {
		cfg.Set("Experiment", "epochs", req.Epochs)
	}

	exp, err := experiment.New(cfg, req.Seed)
	if err != nil {
		return RunSummary{}, err
	}

	now := time.Now().UTC()
	runID := req.RunID
	if runID == "" {
		name := strings.TrimSuffix(filepath.Base(req.ConfigPath), filepath.Ext(req.ConfigPath))
		runID = fmt.Sprintf("%s-%d-%d", name, req.Seed, now.Unix())
	}

	run := model.Run{
		VersionedRecord: currentVersion(),
		ID:              runID,
		ConfigPath:      req.ConfigPath,
		Seed:            req.Seed,
		StartedAt:       now.Format(time.RFC3339Nano),
	}
	if err := c.store.SaveRun(ctx, run); err != nil {
		return RunSummary{}, err
	}

	for exp.Proceed() {
		select {
		case <-ctx.Done():
			return RunSummary{}, ctx.Err()
		default:
		}
		if err := exp.Update(); err != nil {
			return RunSummary{}, err
		}
		if err := c.store.AppendEpoch(ctx, epochRecord(exp, runID)); err != nil {
			return RunSummary{}, err
		}
	}

	run.Epochs = exp.Epoch()
	run.FinishedAt = time.Now().UTC().Format(time.RFC3339Nano)
	if err := c.store.SaveRun(ctx, run); err != nil {
		return RunSummary{}, err
	}

	records, _, err := c.store.GetEpochs(ctx, runID)
	if err != nil {
		return RunSummary{}, err
	}
	runDir, err := report.WriteRunReports(c.reportsDir, run, records)
	if err != nil {
		return RunSummary{}, err
	}
	if err := report.AppendRunIndex(c.reportsDir, report.RunIndexEntry{
		RunID:        runID,
		ConfigPath:   req.ConfigPath,
		Seed:         req.Seed,
		Epochs:       run.Epochs,
		CreatedAtUTC: now.Format(time.RFC3339Nano),
	}); err != nil {
		return RunSummary{}, err
	}

	summary := RunSummary{
		RunID:      runID,
		Seed:       req.Seed,
		Epochs:     exp.Epoch(),
		ReportsDir: filepath.Clean(runDir),
	}
	for _, p := range exp.Populations() {
		summary.Populations = append(summary.Populations, PopulationSummary{
			Name:              p.Name(),
			TypeNames:         append([]string(nil), p.TypeNames()...),
			TypeCount:         p.Census(),
			DegenerateUpdates: p.DegenerateUpdates(),
		})
	}
	_, _, summary.Resources = exp.EpochRecords(runID)
	return summary, nil
}

// Runs lists completed runs from the report index, newest first.
func (c *Client) Runs(_ context.Context, req RunsRequest) ([]report.RunIndexEntry, error) {
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}
	entries, err := report.ListRunIndex(c.reportsDir)
	if err != nil {
		return nil, err
	}
	if req.Limit > 0 && len(entries) > req.Limit {
		entries = entries[:req.Limit]
	}
	return entries, nil
}

// RunInfo returns the persisted metadata for one run.
func (c *Client) RunInfo(ctx context.Context, runID string) (model.Run, error) {
	if runID == "" {
		return model.Run{}, errors.New("run id is required")
	}
	run, ok, err := c.store.GetRun(ctx, runID)
	if err != nil {
		return model.Run{}, err
	}
	if !ok {
		return model.Run{}, fmt.Errorf("run not found: %s", runID)
	}
	return run, nil
}

// Epochs returns the persisted per-epoch records for a run, oldest
// first. A positive limit keeps only the first records.
func (c *Client) Epochs(ctx context.Context, req EpochsRequest) ([]model.EpochRecord, error) {
	if req.RunID == "" {
		return nil, errors.New("run id is required")
	}
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}

	records, ok, err := c.store.GetEpochs(ctx, req.RunID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no epochs recorded for run: %s", req.RunID)
	}
	if req.Limit > 0 && len(records) > req.Limit {
		records = records[:req.Limit]
	}
	return records, nil
}

func epochRecord(exp *experiment.Experiment, runID string) model.EpochRecord {
	censuses, transitions, resources := exp.EpochRecords(runID)
	version := currentVersion()
	for i := range censuses {
		censuses[i].VersionedRecord = version
	}
	for i := range transitions {
		transitions[i].VersionedRecord = version
	}
	for i := range resources {
		resources[i].VersionedRecord = version
	}
	return model.EpochRecord{
		VersionedRecord: version,
		RunID:           runID,
		Epoch:           exp.Epoch(),
		Censuses:        censuses,
		Transitions:     transitions,
		Resources:       resources,
	}
}

func currentVersion() model.VersionedRecord {
	return model.VersionedRecord{
		SchemaVersion: storage.CurrentSchemaVersion,
		CodecVersion:  storage.CurrentCodecVersion,
	}
}
