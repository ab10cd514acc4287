package dataset

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sbinet/npyio"
)

func record(coarse, fine byte, fill byte) []byte {
	r := make([]byte, recordSize)
	r[0], r[1] = coarse, fine
	for i := 2; i < recordSize; i++ {
		r[i] = fill
	}
	return r
}

func writeBin(t *testing.T, path string, records ...[]byte) {
	t.Helper()
	if err := os.WriteFile(path, bytes.Join(records, nil), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func TestCIFAR100_Load(t *testing.T) {
	dir := t.TempDir()
	writeBin(t, filepath.Join(dir, "train.bin"), record(1, 10, 0), record(2, 20, 255))
	writeBin(t, filepath.Join(dir, "test.bin"), record(3, 30, 51))

	tests := []struct {
		mode    LabelMode
		classes int
		train   []int
	}{
		{LabelFine, FineClasses, []int{10, 20}},
		{LabelCoarse, CoarseClasses, []int{1, 2}},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			data, err := NewCIFAR100(dir, tt.mode).Load()
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if data.Classes != tt.classes {
				t.Errorf("Expected %d classes, got %d", tt.classes, data.Classes)
			}
			if len(data.Train.Labels) != 2 || data.Train.Labels[0] != tt.train[0] || data.Train.Labels[1] != tt.train[1] {
				t.Errorf("Expected train labels %v, got %v", tt.train, data.Train.Labels)
			}
			if data.Test.Len() != 1 || len(data.Test.Features[0]) != ImageSize {
				t.Errorf("Unexpected test split: %d samples", data.Test.Len())
			}
		})
	}
}

func TestCIFAR100_InvalidMode(t *testing.T) {
	if _, err := NewCIFAR100(t.TempDir(), "medium").Load(); err == nil {
		t.Error("Expected error for invalid label mode")
	}
}

func TestCIFAR100_TruncatedRecord(t *testing.T) {
	c := NewCIFAR100("", LabelFine)
	data := append(record(0, 1, 0), 1, 2, 3)

	if _, err := c.ReadRecords(bytes.NewReader(data)); err == nil {
		t.Error("Expected error for truncated record")
	}
}

func TestCIFAR100_MissingFile(t *testing.T) {
	if _, err := NewCIFAR100(t.TempDir(), LabelFine).Load(); err == nil {
		t.Error("Expected error for missing train.bin")
	}
}

func TestCIFAR100_Preprocess(t *testing.T) {
	c := NewCIFAR100("", LabelFine)
	in := [][]float32{{0, 255, 51}}

	out, err := c.Preprocess(in)
	if err != nil {
		t.Fatalf("Preprocess failed: %v", err)
	}
	if out[0][0] != 0 || out[0][1] != 1 || out[0][2] != 0.2 {
		t.Errorf("Unexpected scaling: %v", out[0])
	}
	if in[0][1] != 255 {
		t.Error("Preprocess must not modify its input")
	}
}

func TestCIFAR100_PreprocessSubtractMean(t *testing.T) {
	dir := t.TempDir()
	meanPath := filepath.Join(dir, "mean.npy")

	mean := make([]float64, ImageSize)
	for i := range mean {
		mean[i] = 128
	}
	f, err := os.Create(meanPath)
	if err != nil {
		t.Fatalf("Failed to create mean file: %v", err)
	}
	if err := npyio.Write(f, mean); err != nil {
		t.Fatalf("Failed to write mean file: %v", err)
	}
	f.Close()

	c := &CIFAR100{SubtractMean: true, MeanPath: meanPath}
	x := make([]float32, ImageSize)
	x[0] = 256

	out, err := c.Preprocess([][]float32{x})
	if err != nil {
		t.Fatalf("Preprocess failed: %v", err)
	}
	if out[0][0] != 1 || out[0][1] != -1 {
		t.Errorf("Expected [1 -1 ...], got %v", out[0][:2])
	}

	c.MeanPath = filepath.Join(dir, "missing.npy")
	if _, err := c.Preprocess([][]float32{x}); err == nil {
		t.Error("Expected error for missing mean file")
	}
}
