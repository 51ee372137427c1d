package dataset

import (
	"encoding/binary"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// IDX magic numbers for the MNIST distribution.
const (
	idxImagesMagic = 2051
	idxLabelsMagic = 2049
)

// MNIST file names as distributed at yann.lecun.com/exdb/mnist.
const (
	trainImagesFile = "train-images-idx3-ubyte"
	trainLabelsFile = "train-labels-idx1-ubyte"
	testImagesFile  = "t10k-images-idx3-ubyte"
	testLabelsFile  = "t10k-labels-idx1-ubyte"
)

// LoadMNIST loads the official MNIST IDX files from dataDir.
//
// When train is true the 60K training split is read, otherwise the
// 10K test split. maxSamples > 0 truncates the dataset, which keeps
// smoke runs fast. Pixels are normalized to [0, 1].
func LoadMNIST(dataDir string, train bool, maxSamples int) (*Dataset, error) {
	imageFile, labelFile := testImagesFile, testLabelsFile
	if train {
		imageFile, labelFile = trainImagesFile, trainLabelsFile
	}

	images, width, height, err := readIDXImages(filepath.Join(dataDir, imageFile))
	if err != nil {
		return nil, err
	}
	labels, err := readIDXLabels(filepath.Join(dataDir, labelFile))
	if err != nil {
		return nil, err
	}
	if len(images) != len(labels) {
		return nil, errors.Errorf("dataset: %d images but %d labels in %s", len(images), len(labels), dataDir)
	}

	n := len(images)
	if maxSamples > 0 && n > maxSamples {
		n = maxSamples
	}

	d := &Dataset{
		Images:  make([][]float32, n),
		Labels:  make([]int, n),
		Width:   width,
		Height:  height,
		Classes: 10,
	}
	for i := 0; i < n; i++ {
		img := make([]float32, len(images[i]))
		for j, px := range images[i] {
			img[j] = float32(px) / 255.0
		}
		d.Images[i] = img
		d.Labels[i] = int(labels[i])
	}
	return d, d.Validate()
}

// readIDXImages reads an IDX3 image file.
//
// Layout: magic 0x00000803, image count, rows, cols (all big-endian
// uint32), then unsigned pixel bytes.
func readIDXImages(filename string) (images [][]byte, width, height int, err error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, 0, 0, err
	}
	defer file.Close()

	var magic uint32
	if err := binary.Read(file, binary.BigEndian, &magic); err != nil {
		return nil, 0, 0, errors.Wrapf(err, "dataset: read magic from %s", filename)
	}
	if magic != idxImagesMagic {
		return nil, 0, 0, errors.Errorf("dataset: %s: invalid magic %d, want %d", filename, magic, idxImagesMagic)
	}

	var numImages, numRows, numCols uint32
	for _, p := range []*uint32{&numImages, &numRows, &numCols} {
		if err := binary.Read(file, binary.BigEndian, p); err != nil {
			return nil, 0, 0, errors.Wrapf(err, "dataset: read dimensions from %s", filename)
		}
	}

	imageSize := int(numRows * numCols)
	images = make([][]byte, numImages)
	for i := range images {
		images[i] = make([]byte, imageSize)
		if _, err := io.ReadFull(file, images[i]); err != nil {
			return nil, 0, 0, errors.Wrapf(err, "dataset: read image %d from %s", i, filename)
		}
	}
	return images, int(numCols), int(numRows), nil
}

// readIDXLabels reads an IDX1 label file.
//
// Layout: magic 0x00000801, label count (big-endian uint32), then
// unsigned label bytes.
func readIDXLabels(filename string) ([]byte, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var magic uint32
	if err := binary.Read(file, binary.BigEndian, &magic); err != nil {
		return nil, errors.Wrapf(err, "dataset: read magic from %s", filename)
	}
	if magic != idxLabelsMagic {
		return nil, errors.Errorf("dataset: %s: invalid magic %d, want %d", filename, magic, idxLabelsMagic)
	}

	var numLabels uint32
	if err := binary.Read(file, binary.BigEndian, &numLabels); err != nil {
		return nil, errors.Wrapf(err, "dataset: read count from %s", filename)
	}

	labels := make([]byte, numLabels)
	if _, err := io.ReadFull(file, labels); err != nil {
		return nil, errors.Wrapf(err, "dataset: read labels from %s", filename)
	}
	return labels, nil
}
