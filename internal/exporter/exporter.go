// Package exporter serializes device configuration snapshots for backup,
// transfer or comparison.
package exporter

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"easyconfd/internal/paramset"
)

// ExportVersion is the current snapshot format version. Import rejects
// anything else: foreign or stale snapshots must not be silently coerced.
const ExportVersion = "1.0"

// ErrUnsupportedVersion is returned when an imported snapshot carries a
// version other than ExportVersion.
var ErrUnsupportedVersion = errors.New("unsupported configuration version")

// Configuration is a serializable device configuration snapshot.
type Configuration struct {
	Version        string            `json:"version"`
	ExportedAt     string            `json:"exported_at"`
	DeviceAddress  string            `json:"device_address"`
	Model          string            `json:"model"`
	ChannelAddress string            `json:"channel_address"`
	ChannelType    string            `json:"channel_type"`
	ParamsetKey    string            `json:"paramset_key"`
	Values         paramset.ValueSet `json:"values"`
}

// Request carries the identifying fields of a snapshot being exported.
type Request struct {
	DeviceAddress  string
	Model          string
	ChannelAddress string
	ChannelType    string
	ParamsetKey    string
	Values         paramset.ValueSet
}

// Export serializes a configuration snapshot as indented JSON with
// version and timestamp metadata.
func Export(req Request) ([]byte, error) {
	cfg := Configuration{
		Version:        ExportVersion,
		ExportedAt:     time.Now().UTC().Format(time.RFC3339Nano),
		DeviceAddress:  req.DeviceAddress,
		Model:          req.Model,
		ChannelAddress: req.ChannelAddress,
		ChannelType:    req.ChannelType,
		ParamsetKey:    req.ParamsetKey,
		Values:         req.Values,
	}
	data, err := json.MarshalIndent(&cfg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal configuration: %w", err)
	}
	return data, nil
}

// Import parses a previously exported snapshot. It fails hard on
// malformed JSON and on any version other than ExportVersion.
func Import(data []byte) (*Configuration, error) {
	var cfg Configuration
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}
	if cfg.Version != ExportVersion {
		return nil, fmt.Errorf("%w: %q (expected %q)", ErrUnsupportedVersion, cfg.Version, ExportVersion)
	}
	if cfg.Values == nil {
		cfg.Values = paramset.ValueSet{}
	}
	return &cfg, nil
}
