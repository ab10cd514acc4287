package dataset

// Data is a loaded dataset. Classes is the number of distinct labels the
// splits are drawn from.
type Data struct {
	Train   Split
	Test    Split
	Classes int
}

// Provider loads a dataset and normalizes its features.
type Provider interface {
	Load() (*Data, error)
	Preprocess(features [][]float32) ([][]float32, error)
}

// InMemory serves a dataset that is already in memory. Preprocess is the identity.
type InMemory struct {
	Data Data
}

// Load returns a copy of the stored dataset.
func (m *InMemory) Load() (*Data, error) {
	d := m.Data
	return &d, nil
}

// Preprocess returns features unchanged.
func (m *InMemory) Preprocess(features [][]float32) ([][]float32, error) {
	return features, nil
}
