package embed

import (
	"context"
	"math"
	"reflect"
	"testing"
)

func TestLocalEmbedDeterministic(t *testing.T) {
	le := NewLocalEmbedder(64)
	first, err := le.Embed(context.Background(), "red jacket, brown hair, seen near the station")
	if err != nil {
		t.Fatalf("Embed returned error %v", err)
	}
	second, err := le.Embed(context.Background(), "red jacket, brown hair, seen near the station")
	if err != nil {
		t.Fatalf("Embed returned error %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("same text embedded to different vectors")
	}
	if len(first) != 64 {
		t.Errorf("dimension = %d; want 64", len(first))
	}
}

func TestLocalEmbedUnitLength(t *testing.T) {
	le := NewLocalEmbedder(32)
	vec, err := le.Embed(context.Background(), "tall male grey coat")
	if err != nil {
		t.Fatalf("Embed returned error %v", err)
	}
	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if math.Abs(math.Sqrt(norm)-1) > 1e-9 {
		t.Errorf("vector norm = %v; want 1", math.Sqrt(norm))
	}
}

func TestLocalDistanceBounds(t *testing.T) {
	le := NewLocalEmbedder(32)
	ctx := context.Background()

	a, _ := le.Embed(ctx, "red jacket brown hair")
	b, _ := le.Embed(ctx, "red jacket brown hair")
	c, _ := le.Embed(ctx, "blue van license plate")

	same, err := le.Distance(a, b)
	if err != nil {
		t.Fatalf("Distance returned error %v", err)
	}
	if math.Abs(same) > 1e-9 {
		t.Errorf("distance to self = %v; want 0", same)
	}

	other, err := le.Distance(a, c)
	if err != nil {
		t.Fatalf("Distance returned error %v", err)
	}
	if other < 0 || other > 2 {
		t.Errorf("distance %v outside [0,2]", other)
	}
	if other <= same {
		t.Error("unrelated text should be farther than identical text")
	}
}

func TestLocalDistanceDimensionMismatch(t *testing.T) {
	le := NewLocalEmbedder(32)
	if _, err := le.Distance([]float64{1, 0}, []float64{1, 0, 0}); err == nil {
		t.Error("expected error on dimension mismatch")
	}
}

func TestLocalEmbedEmptyText(t *testing.T) {
	le := NewLocalEmbedder(32)
	vec, err := le.Embed(context.Background(), "   ")
	if err != nil {
		t.Fatalf("Embed returned error %v", err)
	}
	for _, v := range vec {
		if v != 0 {
			t.Fatal("blank text should embed to the zero vector")
		}
	}
}
