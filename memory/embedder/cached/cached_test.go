package cached

import (
	"context"
	"errors"
	"testing"
)

// countingEmbedder records how many times the model was invoked.
type countingEmbedder struct {
	calls int
	err   error
}

func (e *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return []float32{1, 0, 0}, nil
}

func (e *countingEmbedder) Dimensions() int { return 3 }

func TestCacheHit(t *testing.T) {
	inner := &countingEmbedder{}
	e, err := New(inner, 1<<20)
	if err != nil {
		t.Fatalf("create cache: %v", err)
	}
	defer e.Close()

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if _, err := e.Embed(ctx, "same text"); err != nil {
			t.Fatalf("embed: %v", err)
		}
	}

	if inner.calls != 1 {
		t.Errorf("model invoked %d times, want 1", inner.calls)
	}
}

func TestDistinctTextsMiss(t *testing.T) {
	inner := &countingEmbedder{}
	e, err := New(inner, 1<<20)
	if err != nil {
		t.Fatalf("create cache: %v", err)
	}
	defer e.Close()

	ctx := context.Background()
	e.Embed(ctx, "one")
	e.Embed(ctx, "two")

	if inner.calls != 2 {
		t.Errorf("model invoked %d times, want 2", inner.calls)
	}
}

func TestErrorsNotCached(t *testing.T) {
	inner := &countingEmbedder{err: errors.New("model down")}
	e, err := New(inner, 1<<20)
	if err != nil {
		t.Fatalf("create cache: %v", err)
	}
	defer e.Close()

	ctx := context.Background()
	if _, err := e.Embed(ctx, "x"); err == nil {
		t.Fatal("expected an error")
	}

	// Once the model recovers, the next call goes through.
	inner.err = nil
	vec, err := e.Embed(ctx, "x")
	if err != nil {
		t.Fatalf("embed after recovery: %v", err)
	}
	if len(vec) != 3 {
		t.Errorf("vector length = %d, want 3", len(vec))
	}
	if inner.calls != 2 {
		t.Errorf("model invoked %d times, want 2", inner.calls)
	}
}

func TestDimensionsDelegates(t *testing.T) {
	e, err := New(&countingEmbedder{}, 1<<20)
	if err != nil {
		t.Fatalf("create cache: %v", err)
	}
	defer e.Close()

	if e.Dimensions() != 3 {
		t.Errorf("Dimensions() = %d, want 3", e.Dimensions())
	}
}
