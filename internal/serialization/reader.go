package serialization

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/pkg/errors"

	"github.com/ember-ml/ember/internal/tensor"
)

// ReadFile deserializes a .ember file into its header and state dict.
//
// Verifies the magic bytes, format version, tensor bounds, and payload
// checksum before returning any tensors.
func ReadFile(path string) (*Header, map[string]*tensor.Tensor, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "serialization: open %s", path)
	}
	defer file.Close()

	magic := make([]byte, len(MagicBytes))
	if _, err := io.ReadFull(file, magic); err != nil {
		return nil, nil, errors.Wrap(err, "serialization: read magic")
	}
	if string(magic) != MagicBytes {
		return nil, nil, ErrInvalidMagic
	}

	var version uint32
	if err := binary.Read(file, binary.LittleEndian, &version); err != nil {
		return nil, nil, errors.Wrap(err, "serialization: read version")
	}
	if version != FormatVersion {
		return nil, nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	var headerLen uint64
	if err := binary.Read(file, binary.LittleEndian, &headerLen); err != nil {
		return nil, nil, errors.Wrap(err, "serialization: read header length")
	}
	if headerLen > MaxHeaderSize {
		return nil, nil, ErrHeaderTooLarge
	}

	headerJSON := make([]byte, headerLen)
	if _, err := io.ReadFull(file, headerJSON); err != nil {
		return nil, nil, errors.Wrap(err, "serialization: read header")
	}
	var header Header
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, nil, errors.Wrap(err, "serialization: decode header")
	}

	payload, err := io.ReadAll(file)
	if err != nil {
		return nil, nil, errors.Wrap(err, "serialization: read payload")
	}

	sum := sha256.Sum256(payload)
	if hex.EncodeToString(sum[:]) != header.Checksum {
		return nil, nil, ErrChecksumMismatch
	}

	stateDict := make(map[string]*tensor.Tensor, len(header.Tensors))
	for _, meta := range header.Tensors {
		if meta.Offset < 0 || meta.Size < 0 {
			return nil, nil, &ValidationError{Tensor: meta.Name, Details: "negative offset or size", Err: ErrNegativeOffset}
		}
		end := meta.Offset + meta.Size
		if end > int64(len(payload)) {
			return nil, nil, &ValidationError{
				Tensor:  meta.Name,
				Details: fmt.Sprintf("extends to byte %d of a %d byte payload", end, len(payload)),
				Err:     ErrOutOfBounds,
			}
		}
		shape := tensor.Shape(meta.Shape)
		if int64(shape.NumElements()*4) != meta.Size {
			return nil, nil, &ValidationError{
				Tensor:  meta.Name,
				Details: fmt.Sprintf("shape %v does not match %d payload bytes", shape, meta.Size),
				Err:     ErrOutOfBounds,
			}
		}

		raw := payload[meta.Offset:end]
		data := make([]float32, shape.NumElements())
		for i := range data {
			data[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
		}
		t, err := tensor.FromSlice(data, shape)
		if err != nil {
			return nil, nil, &ValidationError{Tensor: meta.Name, Details: err.Error(), Err: ErrOutOfBounds}
		}
		stateDict[meta.Name] = t
	}

	return &header, stateDict, nil
}
