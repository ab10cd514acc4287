package dataset

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sbinet/npyio"
)

// CIFAR-100 binary record layout: coarse label, fine label, 3x32x32 pixels.
const (
	ImageSize     = 3 * 32 * 32
	recordSize    = 2 + ImageSize
	FineClasses   = 100
	CoarseClasses = 20
)

// LabelMode selects which of the two CIFAR-100 labels is used.
type LabelMode string

const (
	LabelFine   LabelMode = "fine"
	LabelCoarse LabelMode = "coarse"
)

// CIFAR100 reads the binary distribution of CIFAR-100 (train.bin, test.bin).
type CIFAR100 struct {
	Dir          string
	Mode         LabelMode
	SubtractMean bool
	MeanPath     string // float64 .npy of ImageSize values, CHW like the records
}

// NewCIFAR100 returns a provider reading dir.
func NewCIFAR100(dir string, mode LabelMode) *CIFAR100 {
	return &CIFAR100{Dir: dir, Mode: mode}
}

// Load reads both splits.
func (c *CIFAR100) Load() (*Data, error) {
	classes, err := c.classes()
	if err != nil {
		return nil, err
	}

	train, err := c.readFile(filepath.Join(c.Dir, "train.bin"))
	if err != nil {
		return nil, err
	}
	test, err := c.readFile(filepath.Join(c.Dir, "test.bin"))
	if err != nil {
		return nil, err
	}

	return &Data{Train: train, Test: test, Classes: classes}, nil
}

func (c *CIFAR100) classes() (int, error) {
	switch c.Mode {
	case LabelFine, "":
		return FineClasses, nil
	case LabelCoarse:
		return CoarseClasses, nil
	default:
		return 0, fmt.Errorf("label mode must be one of %q, %q, got %q", LabelFine, LabelCoarse, c.Mode)
	}
}

func (c *CIFAR100) readFile(path string) (Split, error) {
	f, err := os.Open(path)
	if err != nil {
		return Split{}, errors.Wrapf(err, "failed to open CIFAR-100 file %s", path)
	}
	defer f.Close()

	split, err := c.ReadRecords(bufio.NewReader(f))
	if err != nil {
		return Split{}, errors.Wrapf(err, "failed to read CIFAR-100 file %s", path)
	}
	return split, nil
}

// ReadRecords decodes consecutive binary records until EOF.
func (c *CIFAR100) ReadRecords(r io.Reader) (Split, error) {
	var (
		features [][]float32
		labels   []int
		record   = make([]byte, recordSize)
	)
	for {
		_, err := io.ReadFull(r, record)
		if err == io.EOF {
			break
		}
		if err != nil {
			return Split{}, errors.Wrapf(err, "truncated record %d", len(labels))
		}

		label := int(record[1])
		if c.Mode == LabelCoarse {
			label = int(record[0])
		}

		pixels := make([]float32, ImageSize)
		for i, b := range record[2:] {
			pixels[i] = float32(b)
		}
		features = append(features, pixels)
		labels = append(labels, label)
	}
	return NewSplit(features, labels), nil
}

// Preprocess scales pixels to [0, 1], or centres them on the mean image and
// divides by 128 when SubtractMean is set. The input is not modified.
func (c *CIFAR100) Preprocess(features [][]float32) ([][]float32, error) {
	var mean []float32
	if c.SubtractMean {
		m, err := loadMean(c.MeanPath)
		if err != nil {
			return nil, err
		}
		mean = m
	}

	out := make([][]float32, len(features))
	for i, x := range features {
		y := make([]float32, len(x))
		for j, v := range x {
			if mean != nil {
				y[j] = (v - mean[j]) / 128
			} else {
				y[j] = v / 255
			}
		}
		out[i] = y
	}
	return out, nil
}

func loadMean(path string) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open mean image %s", path)
	}
	defer f.Close()

	var raw []float64
	if err := npyio.Read(f, &raw); err != nil {
		return nil, errors.Wrapf(err, "failed to decode mean image %s", path)
	}
	if len(raw) != ImageSize {
		return nil, fmt.Errorf("mean image %s has %d values, expected %d", path, len(raw), ImageSize)
	}

	mean := make([]float32, len(raw))
	for i, v := range raw {
		mean[i] = float32(v)
	}
	return mean, nil
}
