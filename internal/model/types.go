package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Run describes one simulation run: the configuration it was started
// from, the seed that makes it reproducible, and how far it got.
type Run struct {
	VersionedRecord
	ID         string `json:"id"`
	ConfigPath string `json:"config_path"`
	Seed       int64  `json:"seed"`
	Epochs     int    `json:"epochs"`
	StartedAt  string `json:"started_at"`
	FinishedAt string `json:"finished_at"`
}

// Census is a per-epoch snapshot of one population: how many cells of
// each type it holds and how many scheduled events targeted nodes that
// no longer exist.
type Census struct {
	VersionedRecord
	RunID             string `json:"run_id"`
	Population        string `json:"population"`
	Epoch             int    `json:"epoch"`
	TypeCount         []int  `json:"type_count"`
	DegenerateUpdates int    `json:"degenerate_updates"`
}

// Transitions records, for one population and epoch, how many cells
// changed from each type to each other. Counts is row-major with
// Counts[from*Types+to]; the diagonal holds cells that kept their type
// through an update.
type Transitions struct {
	VersionedRecord
	RunID      string `json:"run_id"`
	Population string `json:"population"`
	Epoch      int    `json:"epoch"`
	Types      int    `json:"types"`
	Counts     []int  `json:"counts"`
}

// At returns the number of from -> to transitions in the epoch.
func (t *Transitions) At(from, to int) int {
	return t.Counts[from*t.Types+to]
}

// EpochRecord bundles everything recorded at the end of one epoch: a
// census and transition matrix per population plus one stats row per
// resource.
type EpochRecord struct {
	VersionedRecord
	RunID       string          `json:"run_id"`
	Epoch       int             `json:"epoch"`
	Censuses    []Census        `json:"censuses"`
	Transitions []Transitions   `json:"transitions"`
	Resources   []ResourceStats `json:"resources"`
}

// ResourceStats summarizes the level distribution of one resource over
// its topology at the end of an epoch.
type ResourceStats struct {
	VersionedRecord
	RunID    string  `json:"run_id"`
	Resource string  `json:"resource"`
	Epoch    int     `json:"epoch"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
}
