package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yunchaoli/cablerig/pkg/rig"
	"github.com/yunchaoli/cablerig/pkg/scene"
)

func batchWithID(id string, created time.Time) *scene.Batch {
	return &scene.Batch{
		ID:        id,
		CreatedAt: created,
		Config:    rig.Config{NumAssemblies: 2},
		Layout:    rig.Layout{Kind: rig.LayoutRadial},
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) = %v, want ErrNotFound", err)
	}

	b := batchWithID("b1", time.Now())
	if err := s.Put(ctx, b); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get(ctx, "b1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != "b1" {
		t.Errorf("ID = %q, want b1", got.ID)
	}

	if err := s.Delete(ctx, "b1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "b1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreList(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	base := time.Now()
	for i, id := range []string{"old", "mid", "new"} {
		if err := s.Put(ctx, batchWithID(id, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	got, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].ID != "new" || got[2].ID != "old" {
		t.Errorf("ordering = [%s %s %s], want newest first", got[0].ID, got[1].ID, got[2].ID)
	}
	if got[0].NumAssemblies != 2 || got[0].Layout != "radial" {
		t.Errorf("summary = %+v", got[0])
	}

	limited, err := s.List(ctx, 2)
	if err != nil {
		t.Fatalf("List(2): %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("len = %d, want 2", len(limited))
	}
}
