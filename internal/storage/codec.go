package storage

import (
	"encoding/json"
	"errors"

	"github.com/briandconnelly/seeds/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeRun(r model.Run) ([]byte, error) {
	return json.Marshal(r)
}

func DecodeRun(data []byte) (model.Run, error) {
	var run model.Run
	if err := json.Unmarshal(data, &run); err != nil {
		return model.Run{}, err
	}
	if err := checkVersion(run.VersionedRecord); err != nil {
		return model.Run{}, err
	}
	return run, nil
}

func EncodeEpochRecord(r model.EpochRecord) ([]byte, error) {
	return json.Marshal(r)
}

func DecodeEpochRecord(data []byte) (model.EpochRecord, error) {
	var record model.EpochRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return model.EpochRecord{}, err
	}
	if err := checkVersion(record.VersionedRecord); err != nil {
		return model.EpochRecord{}, err
	}
	return record, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
