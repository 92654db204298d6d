package embeddings

import (
	"context"
	"errors"
	"testing"
)

type listEmbedder struct {
	vectors [][]float32
	err     error
}

func (l *listEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.vectors, nil
}

func (l *listEmbedder) Dimensions() int { return 3 }
func (l *listEmbedder) Name() string    { return "list" }

func TestToChromemFunc(t *testing.T) {
	fn := ToChromemFunc(&listEmbedder{vectors: [][]float32{{1, 2, 3}}})

	vec, err := fn(context.Background(), "hello")
	if err != nil {
		t.Fatalf("embedding func: %v", err)
	}
	if len(vec) != 3 || vec[0] != 1 {
		t.Errorf("unexpected vector: %v", vec)
	}
}

func TestToChromemFuncError(t *testing.T) {
	fn := ToChromemFunc(&listEmbedder{err: errors.New("quota")})

	if _, err := fn(context.Background(), "hello"); err == nil {
		t.Fatal("expected error")
	}
}
