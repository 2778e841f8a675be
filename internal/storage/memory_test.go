package storage

import (
	"context"
	"testing"

	"github.com/briandconnelly/seeds/internal/model"
)

func versioned() model.VersionedRecord {
	return model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion}
}

func sampleEpochRecord(runID string, epoch int) model.EpochRecord {
	return model.EpochRecord{
		VersionedRecord: versioned(),
		RunID:           runID,
		Epoch:           epoch,
		Censuses: []model.Census{{
			VersionedRecord: versioned(),
			RunID:           runID,
			Population:      "main",
			Epoch:           epoch,
			TypeCount:       []int{60, 25, 15},
		}},
		Transitions: []model.Transitions{{
			VersionedRecord: versioned(),
			RunID:           runID,
			Population:      "main",
			Epoch:           epoch,
			Types:           3,
			Counts:          []int{50, 6, 4, 3, 20, 2, 1, 2, 12},
		}},
		Resources: []model.ResourceStats{{
			VersionedRecord: versioned(),
			RunID:           runID,
			Resource:        "glucose",
			Epoch:           epoch,
			Mean:            0.5,
			Min:             0.1,
			Max:             0.9,
		}},
	}
}

func TestMemoryStoreRunRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	run := model.Run{
		VersionedRecord: versioned(),
		ID:              "run-1",
		ConfigPath:      "kerr07.yml",
		Seed:            42,
		Epochs:          100,
	}
	if err := store.SaveRun(ctx, run); err != nil {
		t.Fatalf("save run: %v", err)
	}

	loaded, ok, err := store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted run")
	}
	if loaded.Seed != run.Seed || loaded.ConfigPath != run.ConfigPath {
		t.Fatalf("unexpected run: %+v", loaded)
	}

	_, ok, err = store.GetRun(ctx, "missing")
	if err != nil {
		t.Fatalf("get missing run: %v", err)
	}
	if ok {
		t.Fatal("expected missing run")
	}
}

func TestMemoryStoreEpochsOrdered(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	for epoch := 0; epoch < 3; epoch++ {
		if err := store.AppendEpoch(ctx, sampleEpochRecord("run-1", epoch)); err != nil {
			t.Fatalf("append epoch %d: %v", epoch, err)
		}
	}

	records, ok, err := store.GetEpochs(ctx, "run-1")
	if err != nil {
		t.Fatalf("get epochs: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted epochs")
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for i, record := range records {
		if record.Epoch != i {
			t.Fatalf("record %d has epoch %d", i, record.Epoch)
		}
	}

	_, ok, err = store.GetEpochs(ctx, "missing")
	if err != nil {
		t.Fatalf("get missing epochs: %v", err)
	}
	if ok {
		t.Fatal("expected no epochs for unknown run")
	}
}

func TestMemoryStoreCopiesRecords(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	record := sampleEpochRecord("run-1", 0)
	if err := store.AppendEpoch(ctx, record); err != nil {
		t.Fatalf("append epoch: %v", err)
	}
	record.Censuses[0].TypeCount[0] = -1
	record.Transitions[0].Counts[0] = -1

	loaded, ok, err := store.GetEpochs(ctx, "run-1")
	if err != nil || !ok {
		t.Fatalf("get epochs: ok=%t err=%v", ok, err)
	}
	if loaded[0].Censuses[0].TypeCount[0] != 60 {
		t.Fatalf("stored census aliases caller slice: %+v", loaded[0].Censuses[0])
	}
	if loaded[0].Transitions[0].Counts[0] != 50 {
		t.Fatalf("stored transitions alias caller slice: %+v", loaded[0].Transitions[0])
	}

	loaded[0].Censuses[0].TypeCount[1] = -1
	again, _, err := store.GetEpochs(ctx, "run-1")
	if err != nil {
		t.Fatalf("get epochs again: %v", err)
	}
	if again[0].Censuses[0].TypeCount[1] != 25 {
		t.Fatalf("returned census aliases store state: %+v", again[0].Censuses[0])
	}
}
