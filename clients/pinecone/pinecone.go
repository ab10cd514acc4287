package pinecone

import (
	"context"
	"fmt"

	"github.com/pinecone-io/go-pinecone/pinecone"
)

// Service wraps the official Pinecone client
type Service struct {
	client *pinecone.Client
}

// NewPineconeService creates a new Pinecone service instance using the official SDK
func NewPineconeService(apiKey string) (*Service, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("pinecone API key is empty")
	}

	client, err := pinecone.NewClient(pinecone.NewClientParams{
		ApiKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Pinecone client: %w", err)
	}

	return &Service{client: client}, nil
}

// ForIndex returns the operations for one namespace of the index served at host
func (s *Service) ForIndex(host string, namespace string) (*IndexOperations, error) {
	if host == "" {
		return nil, fmt.Errorf("pinecone index host is empty")
	}

	conn, err := s.client.Index(pinecone.NewIndexConnParams{
		Host:      host,
		Namespace: namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to pinecone index %s: %w", host, err)
	}

	return &IndexOperations{index: conn}, nil
}

// IndexOperations is a connection to a single index namespace
type IndexOperations struct {
	index *pinecone.IndexConnection
}

// Fetch returns the stored vectors for ids. Missing ids are absent from the map.
func (idx *IndexOperations) Fetch(ctx context.Context, ids []string) (map[string]*pinecone.Vector, error) {
	res, err := idx.index.FetchVectors(ctx, ids)
	if err != nil {
		return nil, err
	}
	return res.Vectors, nil
}

// Upsert stores vectors in the index
func (idx *IndexOperations) Upsert(ctx context.Context, vectors []*pinecone.Vector) error {
	_, err := idx.index.UpsertVectors(ctx, vectors)
	return err
}

// Close releases the index connection
func (idx *IndexOperations) Close() error {
	return idx.index.Close()
}
