// Package storetest holds behaviour tests shared by every store backend.
package storetest

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/matzehuels/kitchenplan/pkg/errors"
	"github.com/matzehuels/kitchenplan/pkg/kitchen"
	"github.com/matzehuels/kitchenplan/pkg/layout"
	"github.com/matzehuels/kitchenplan/pkg/store"
)

// Factory returns a fresh, empty store without a TTL. The suite closes it.
type Factory func(t *testing.T) store.Store

// Record returns a saveable record for the example kitchen.
func Record(kitchenID string) *store.Record {
	cfg := kitchen.Example()
	cfg.KitchenID = kitchenID
	return &store.Record{
		ID:     store.NewID(),
		Config: cfg,
		Modules: []layout.Module{{
			ID:         "b1",
			SpecID:     "b1",
			Kind:       layout.KindModule,
			Type:       kitchen.ModuleBase,
			LineID:     "back",
			Dimensions: layout.Size{Width: 60, Height: 76, Depth: 60},
			Children: []layout.Module{{
				ID:         "b1/countertop",
				Kind:       layout.KindCountertop,
				Dimensions: layout.Size{Width: 60, Height: 4, Depth: 60},
			}},
		}},
	}
}

// Run exercises the Store contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()
	ctx := context.Background()

	t.Run("SaveGet", func(t *testing.T) {
		s := open(t, newStore)
		rec := Record("roundtrip")
		if err := s.Save(ctx, rec); err != nil {
			t.Fatalf("Save: %v", err)
		}
		if rec.Timestamp.IsZero() {
			t.Error("Save did not stamp the record")
		}
		got, err := s.Get(ctx, rec.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.ID != rec.ID || got.Config.KitchenID != "roundtrip" {
			t.Errorf("Get = %s/%s", got.ID, got.Config.KitchenID)
		}
		if len(got.Config.LayoutLines) != len(rec.Config.LayoutLines) {
			t.Errorf("lines = %d, want %d", len(got.Config.LayoutLines), len(rec.Config.LayoutLines))
		}
		if len(got.Modules) != 1 || len(got.Modules[0].Children) != 1 {
			t.Fatalf("modules not stored verbatim: %+v", got.Modules)
		}
		if got.Modules[0].Children[0].ID != "b1/countertop" {
			t.Errorf("child id = %q", got.Modules[0].Children[0].ID)
		}
	})

	t.Run("LastWriteWins", func(t *testing.T) {
		s := open(t, newStore)
		rec := Record("first")
		if err := s.Save(ctx, rec); err != nil {
			t.Fatal(err)
		}
		rec.Config.KitchenID = "second"
		if err := s.Save(ctx, rec); err != nil {
			t.Fatal(err)
		}
		got, err := s.Get(ctx, rec.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Config.KitchenID != "second" {
			t.Errorf("KitchenID = %q, want second", got.Config.KitchenID)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		s := open(t, newStore)
		_, err := s.Get(ctx, store.NewID())
		if !stderrors.Is(err, store.ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
		if !errors.Is(err, errors.ErrCodeNotFound) {
			t.Errorf("code = %q, want NOT_FOUND", errors.GetCode(err))
		}
	})

	t.Run("InvalidID", func(t *testing.T) {
		s := open(t, newStore)
		if _, err := s.Get(ctx, "../etc/passwd"); !errors.Is(err, errors.ErrCodeInvalidID) {
			t.Errorf("Get err = %v, want INVALID_ID", err)
		}
		rec := Record("bad")
		rec.ID = "not-an-id"
		if err := s.Save(ctx, rec); !errors.Is(err, errors.ErrCodeInvalidID) {
			t.Errorf("Save err = %v, want INVALID_ID", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		s := open(t, newStore)
		rec := Record("gone")
		if err := s.Save(ctx, rec); err != nil {
			t.Fatal(err)
		}
		if err := s.Delete(ctx, rec.ID); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := s.Get(ctx, rec.ID); !store.IsNotFound(err) {
			t.Errorf("Get after Delete err = %v", err)
		}
		if err := s.Delete(ctx, rec.ID); err != nil {
			t.Errorf("second Delete: %v", err)
		}
	})

	t.Run("ListNewestFirst", func(t *testing.T) {
		s := open(t, newStore)
		base := time.Now().Add(-time.Hour).Truncate(time.Millisecond)
		var ids []string
		for i := 0; i < 3; i++ {
			rec := Record("k")
			rec.Timestamp = base.Add(time.Duration(i) * time.Minute)
			if err := s.Save(ctx, rec); err != nil {
				t.Fatal(err)
			}
			ids = append(ids, rec.ID)
		}
		got, err := s.List(ctx, 0)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("List len = %d, want 3", len(got))
		}
		for i, want := range []string{ids[2], ids[1], ids[0]} {
			if got[i].ID != want {
				t.Errorf("List[%d] = %s, want %s", i, got[i].ID, want)
			}
		}
		limited, err := s.List(ctx, 2)
		if err != nil {
			t.Fatal(err)
		}
		if len(limited) != 2 || limited[0].ID != ids[2] {
			t.Errorf("List(2) = %d records", len(limited))
		}
	})

	t.Run("ExpiredIsNotFound", func(t *testing.T) {
		s := open(t, newStore)
		rec := Record("stale")
		rec.Timestamp = time.Now().Add(-2 * time.Hour)
		rec.ExpiresAt = time.Now().Add(-time.Hour)
		if err := s.Save(ctx, rec); err != nil {
			t.Fatal(err)
		}
		if _, err := s.Get(ctx, rec.ID); !store.IsNotFound(err) {
			t.Errorf("Get expired err = %v, want not found", err)
		}
		if err := s.Cleanup(ctx); err != nil {
			t.Fatalf("Cleanup: %v", err)
		}
		recs, err := s.List(ctx, 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(recs) != 0 {
			t.Errorf("List after Cleanup = %d records", len(recs))
		}
	})
}

func open(t *testing.T, newStore Factory) store.Store {
	t.Helper()
	s := newStore(t)
	t.Cleanup(func() { _ = s.Close() })
	return s
}
