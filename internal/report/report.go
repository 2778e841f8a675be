// Package report writes per-run data files: a JSON run summary plus CSV
// series for censuses, transitions, and resource stats, with a JSON index
// across runs. The CSV layout is one row per observation so the files
// load directly into analysis tools.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/briandconnelly/seeds/internal/model"
)

const runIndexFile = "run_index.json"

type RunIndexEntry struct {
	RunID        string `json:"run_id"`
	ConfigPath   string `json:"config_path"`
	Seed         int64  `json:"seed"`
	Epochs       int    `json:"epochs"`
	CreatedAtUTC string `json:"created_at_utc"`
}

// WriteRunReports writes the data files for one run under
// baseDir/<runID>/ and returns that directory.
func WriteRunReports(baseDir string, run model.Run, records []model.EpochRecord) (string, error) {
	if run.ID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, run.ID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "run.json"), run); err != nil {
		return "", err
	}
	if err := writeCensusCSV(filepath.Join(runDir, "census.csv"), records); err != nil {
		return "", err
	}
	if err := writeTransitionsCSV(filepath.Join(runDir, "transitions.csv"), records); err != nil {
		return "", err
	}
	if err := writeResourcesCSV(filepath.Join(runDir, "resources.csv"), records); err != nil {
		return "", err
	}
	return runDir, nil
}

// AppendRunIndex adds or replaces one entry in the cross-run index.
func AppendRunIndex(baseDir string, entry RunIndexEntry) error {
	if entry.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		return err
	}
	for i := range index {
		if index[i].RunID == entry.RunID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, runIndexFile), index)
		}
	}
	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, runIndexFile), index)
}

// ListRunIndex returns index entries newest first. A missing index reads
// as empty.
func ListRunIndex(baseDir string) ([]RunIndexEntry, error) {
	path := filepath.Join(baseDir, runIndexFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunIndexEntry{}, nil
		}
		return nil, err
	}

	var entries []RunIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	type indexedEntry struct {
		entry RunIndexEntry
		idx   int
	}
	indexed := make([]indexedEntry, len(entries))
	for i := range entries {
		indexed[i] = indexedEntry{entry: entries[i], idx: i}
	}
	sort.Slice(indexed, func(i, j int) bool {
		if indexed[i].entry.CreatedAtUTC == indexed[j].entry.CreatedAtUTC {
			// Prefer later appended entries for equal timestamps.
			return indexed[i].idx > indexed[j].idx
		}
		return indexed[i].entry.CreatedAtUTC > indexed[j].entry.CreatedAtUTC
	})

	sorted := make([]RunIndexEntry, 0, len(indexed))
	for _, item := range indexed {
		sorted = append(sorted, item.entry)
	}
	return sorted, nil
}

// CensusRow is one row of a run's census CSV.
type CensusRow struct {
	Epoch      int
	Population string
	Type       int
	Count      int
}

// ReadCensusSeries reads back the census CSV for a run.
func ReadCensusSeries(baseDir, runID string) ([]CensusRow, bool, error) {
	path := filepath.Join(baseDir, runID, "census.csv")
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return []CensusRow{}, true, nil
		}
		return nil, false, err
	}

	var rows []CensusRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, false, err
		}
		if len(record) < 4 {
			return nil, false, fmt.Errorf("census row must have at least 4 columns")
		}
		epoch, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, false, err
		}
		typ, err := strconv.Atoi(record[2])
		if err != nil {
			return nil, false, err
		}
		count, err := strconv.Atoi(record[3])
		if err != nil {
			return nil, false, err
		}
		rows = append(rows, CensusRow{Epoch: epoch, Population: record[1], Type: typ, Count: count})
	}
	return rows, true, nil
}

func writeCensusCSV(path string, records []model.EpochRecord) error {
	return writeCSV(path, []string{"epoch", "population", "type", "count"}, func(w *csv.Writer) error {
		for _, record := range records {
			for _, census := range record.Censuses {
				for typ, count := range census.TypeCount {
					row := []string{
						strconv.Itoa(census.Epoch),
						census.Population,
						strconv.Itoa(typ),
						strconv.Itoa(count),
					}
					if err := w.Write(row); err != nil {
						return err
					}
				}
			}
		}
		return nil
	})
}

func writeTransitionsCSV(path string, records []model.EpochRecord) error {
	return writeCSV(path, []string{"epoch", "population", "from", "to", "count"}, func(w *csv.Writer) error {
		for _, record := range records {
			for _, tr := range record.Transitions {
				for from := 0; from < tr.Types; from++ {
					for to := 0; to < tr.Types; to++ {
						n := tr.At(from, to)
						if n == 0 {
							continue
						}
						row := []string{
							strconv.Itoa(tr.Epoch),
							tr.Population,
							strconv.Itoa(from),
							strconv.Itoa(to),
							strconv.Itoa(n),
						}
						if err := w.Write(row); err != nil {
							return err
						}
					}
				}
			}
		}
		return nil
	})
}

func writeResourcesCSV(path string, records []model.EpochRecord) error {
	return writeCSV(path, []string{"epoch", "resource", "mean", "stddev", "min", "max"}, func(w *csv.Writer) error {
		for _, record := range records {
			for _, r := range record.Resources {
				row := []string{
					strconv.Itoa(r.Epoch),
					r.Resource,
					strconv.FormatFloat(r.Mean, 'f', -1, 64),
					strconv.FormatFloat(r.StdDev, 'f', -1, 64),
					strconv.FormatFloat(r.Min, 'f', -1, 64),
					strconv.FormatFloat(r.Max, 'f', -1, 64),
				}
				if err := w.Write(row); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func writeCSV(path string, header []string, body func(*csv.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		return err
	}
	if err := body(writer); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}
