package serialization

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"math"
	"os"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/ember-ml/ember/internal/tensor"
)

const emberVersion = "0.1.0"

// WriteFile serializes a state dict to path in .ember format.
//
// The file is first written to path+".tmp" and renamed into place, so
// a reader never observes a partially written checkpoint. Tensors are
// written in sorted name order to keep the output deterministic.
func WriteFile(path string, stateDict map[string]*tensor.Tensor, ckpt *CheckpointMeta, metadata map[string]string) error {
	names := make([]string, 0, len(stateDict))
	for name := range stateDict {
		names = append(names, name)
	}
	sort.Strings(names)

	// Assemble the payload and tensor metadata.
	var payload bytes.Buffer
	metas := make([]TensorMeta, 0, len(names))
	for _, name := range names {
		t := stateDict[name]
		offset := int64(payload.Len())
		data := t.Data()
		buf := make([]byte, 4*len(data))
		for i, v := range data {
			binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
		}
		payload.Write(buf)

		metas = append(metas, TensorMeta{
			Name:   name,
			Shape:  []int(t.Shape().Clone()),
			Offset: offset,
			Size:   int64(len(buf)),
		})
	}

	sum := sha256.Sum256(payload.Bytes())
	header := Header{
		FormatVersion: FormatVersion,
		EmberVersion:  emberVersion,
		CreatedAt:     time.Now().UTC(),
		Checksum:      hex.EncodeToString(sum[:]),
		Tensors:       metas,
		Metadata:      metadata,
		Checkpoint:    ckpt,
	}
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return errors.Wrap(err, "serialization: marshal header")
	}

	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return errors.Wrapf(err, "serialization: create %s", tmp)
	}

	writeErr := func() error {
		if _, err := file.WriteString(MagicBytes); err != nil {
			return err
		}
		if err := binary.Write(file, binary.LittleEndian, uint32(FormatVersion)); err != nil {
			return err
		}
		if err := binary.Write(file, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
			return err
		}
		if _, err := file.Write(headerJSON); err != nil {
			return err
		}
		if _, err := file.Write(payload.Bytes()); err != nil {
			return err
		}
		return file.Sync()
	}()
	if closeErr := file.Close(); writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		os.Remove(tmp)
		return errors.Wrapf(writeErr, "serialization: write %s", tmp)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "serialization: rename %s", path)
	}
	return nil
}
