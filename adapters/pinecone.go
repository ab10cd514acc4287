package adapters

import (
	"context"
	"fmt"
	"log"

	pc "github.com/FrenchMajesty/hierarchical-ensemble/clients/pinecone"
	"github.com/FrenchMajesty/hierarchical-ensemble/dataset"
	"github.com/FrenchMajesty/hierarchical-ensemble/internal/retry"
	"github.com/pinecone-io/go-pinecone/pinecone"
	"gonum.org/v1/gonum/mat"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	// DefaultFetchBatch is the number of ids requested per fetch call
	DefaultFetchBatch = 1000

	// DefaultUpsertBatch is the number of vectors written per upsert call
	DefaultUpsertBatch = 100
)

// PredictionIndex is the subset of index operations the prediction source needs
type PredictionIndex interface {
	Fetch(ctx context.Context, ids []string) (map[string]*pinecone.Vector, error)
	Upsert(ctx context.Context, vectors []*pinecone.Vector) error
	Close() error
}

// PineconePredictionSource serves per-sample probability vectors stored in a
// Pinecone namespace under the id "<model>#<sample index>".
type PineconePredictionSource struct {
	index       PredictionIndex
	retry       retry.Options
	fetchBatch  int
	upsertBatch int
}

// NewPineconePredictionSource connects to the index at host, reading
// PINECONE_API_KEY and PINECONE_HOST when no value is provided
func NewPineconePredictionSource(apiKey *string, host *string, namespace string) (*PineconePredictionSource, error) {
	key, err := loadEnvVar(apiKey, "PINECONE_API_KEY")
	if err != nil {
		return nil, err
	}

	h, err := loadEnvVar(host, "PINECONE_HOST")
	if err != nil {
		return nil, err
	}

	client, err := pc.NewPineconeService(*key)
	if err != nil {
		return nil, fmt.Errorf("failed to create pinecone service: %w", err)
	}

	index, err := client.ForIndex(*h, namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to pinecone index: %w", err)
	}

	return NewPineconePredictionSourceFromIndex(index), nil
}

// NewPineconePredictionSourceFromIndex wraps an existing index connection
func NewPineconePredictionSourceFromIndex(index PredictionIndex) *PineconePredictionSource {
	return &PineconePredictionSource{
		index: index,
		retry: retry.Options{
			Config:       retry.DefaultConfig(),
			ErrorChecker: isTransient,
			Logger:       log.Printf,
			Operation:    "pinecone",
		},
		fetchBatch:  DefaultFetchBatch,
		upsertBatch: DefaultUpsertBatch,
	}
}

// VectorID returns the id of one model's prediction for one sample
func VectorID(model string, index int) string {
	return fmt.Sprintf("%s#%d", model, index)
}

// Predict fetches the stored prediction of model for every sample of split
func (a *PineconePredictionSource) Predict(ctx context.Context, model string, split dataset.Split, classes int) (*mat.Dense, error) {
	if split.Len() == 0 {
		return nil, fmt.Errorf("no samples to fetch predictions for")
	}
	out := mat.NewDense(split.Len(), classes, nil)

	for start := 0; start < split.Len(); start += a.fetchBatch {
		end := min(start+a.fetchBatch, split.Len())

		ids := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			ids = append(ids, VectorID(model, split.SourceIndex(i)))
		}

		vectors, err := retry.Execute(ctx, a.retry, func(int) (map[string]*pinecone.Vector, error) {
			return a.index.Fetch(ctx, ids)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch predictions of %s: %w", model, err)
		}

		for i, id := range ids {
			v, ok := vectors[id]
			if !ok || v == nil {
				return nil, fmt.Errorf("prediction %s not found", id)
			}
			if len(v.Values) != classes {
				return nil, fmt.Errorf("prediction %s has %d values, expected %d classes", id, len(v.Values), classes)
			}
			row := out.RawRowView(start + i)
			for j, p := range v.Values {
				row[j] = float64(p)
			}
		}
	}
	return out, nil
}

// Publish stores pred, row i under sample index i, with the sample's label as metadata
func (a *PineconePredictionSource) Publish(ctx context.Context, model string, pred *mat.Dense, labels []int) error {
	rows, cols := pred.Dims()
	if rows != len(labels) {
		return fmt.Errorf("prediction has %d rows for %d labels", rows, len(labels))
	}

	for start := 0; start < rows; start += a.upsertBatch {
		end := min(start+a.upsertBatch, rows)

		vectors := make([]*pinecone.Vector, 0, end-start)
		for i := start; i < end; i++ {
			values := make([]float32, cols)
			for j, p := range pred.RawRowView(i) {
				values[j] = float32(p)
			}

			metadata, err := structpb.NewStruct(map[string]any{
				"model":  model,
				"sample": i,
				"label":  labels[i],
			})
			if err != nil {
				return err
			}

			vectors = append(vectors, &pinecone.Vector{
				Id:     VectorID(model, i),
				Values: values,
				Metadata: &pinecone.Metadata{
					Fields: metadata.Fields,
				},
			})
		}

		_, err := retry.Execute(ctx, a.retry, func(int) (struct{}, error) {
			return struct{}{}, a.index.Upsert(ctx, vectors)
		})
		if err != nil {
			return fmt.Errorf("failed to publish predictions of %s: %w", model, err)
		}
	}
	return nil
}

// Close releases the index connection
func (a *PineconePredictionSource) Close() error {
	return a.index.Close()
}

// isTransient reports whether a Pinecone error is worth retrying
func isTransient(err error) bool {
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted:
		return true
	default:
		return false
	}
}
