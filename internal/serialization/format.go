// Package serialization implements the .ember checkpoint file format.
//
// Layout:
//
//	magic "EMBR" (4 bytes)
//	format version (uint32, little endian)
//	header length (uint64, little endian)
//	header JSON
//	tensor payload (float32 data, little endian, in header order)
//
// The header carries a hex SHA-256 checksum of the payload which is
// verified on read. Files are written to a temporary path and renamed
// into place, so a checkpoint write is atomic per epoch.
package serialization

import "time"

// Format constants.
const (
	MagicBytes    = "EMBR"
	FormatVersion = 1

	// MaxHeaderSize bounds the header JSON to keep a corrupted length
	// field from driving a huge allocation.
	MaxHeaderSize = 16 << 20
)

// Header is the JSON header of a .ember file.
type Header struct {
	FormatVersion int               `json:"format_version"`
	EmberVersion  string            `json:"ember_version"`
	CreatedAt     time.Time         `json:"created_at"`
	Checksum      string            `json:"checksum"` // hex SHA-256 of the payload
	Tensors       []TensorMeta      `json:"tensors"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	Checkpoint    *CheckpointMeta   `json:"checkpoint,omitempty"`
}

// CheckpointMeta carries training state so a run can resume from the
// epoch after the one recorded here.
type CheckpointMeta struct {
	Epoch   int                `json:"epoch"`
	Step    int64              `json:"step"`
	Loss    float64            `json:"loss"`
	Metrics map[string]float64 `json:"metrics,omitempty"`
}

// TensorMeta describes one tensor in the payload.
type TensorMeta struct {
	Name   string `json:"name"`
	Shape  []int  `json:"shape"`
	Offset int64  `json:"offset"` // bytes from the start of the payload
	Size   int64  `json:"size"`   // bytes
}
