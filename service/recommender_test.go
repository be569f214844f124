package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rushteam/shoprec/catalog"
	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/filter"
	"github.com/rushteam/shoprec/history"
	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/rating"
	"github.com/rushteam/shoprec/store"
)

var fixedNow = time.Date(2024, 5, 17, 9, 30, 5, 0, time.Local)

func newFixture(t *testing.T, opts ...Option) *Recommender {
	t.Helper()
	idx, err := catalog.New([]core.Product{
		{ID: "P1", Name: "red shoe running", Category: "Footwear"},
		{ID: "P2", Name: "red shoe casual", Category: "Footwear"},
		{ID: "P3", Name: "blue laptop gaming", Category: "Laptops"},
	})
	if err != nil {
		t.Fatal(err)
	}
	ratings := rating.NewStore(idx)
	if err := ratings.Seed([]core.Rating{
		{UserID: "U1", ItemID: "P1", Score: 5},
		{UserID: "U1", ItemID: "P2", Score: 4},
		{UserID: "U2", ItemID: "P1", Score: 5},
		{UserID: "U2", ItemID: "P3", Score: 2},
	}); err != nil {
		t.Fatal(err)
	}
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	r, err := New(context.Background(), idx, ratings, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return r
}

func names(items []*core.Item) string { return strings.Join(core.Names(items), ",") }

func TestByItem(t *testing.T) {
	r := newFixture(t)
	ctx := context.Background()

	got, err := r.ByItem(ctx, "P1", 1)
	if err != nil {
		t.Fatalf("ByItem() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "P2" || got[0].Name != "red shoe casual" {
		t.Errorf("ByItem(P1, 1) = %v", names(got))
	}

	again, _ := r.ByItem(ctx, "P1", 1)
	if names(again) != names(got) {
		t.Errorf("ByItem not idempotent: %s vs %s", names(again), names(got))
	}

	if empty, err := r.ByItem(ctx, "P1", 0); err != nil || len(empty) != 0 {
		t.Errorf("ByItem(P1, 0) = %v, %v", empty, err)
	}
	if _, err := r.ByItem(ctx, "P9", 3); !core.IsNotFound(err) {
		t.Errorf("ByItem(P9) error = %v, want NotFound", err)
	}
}

func TestByUser(t *testing.T) {
	r := newFixture(t)
	ctx := context.Background()

	got, err := r.ByUser(ctx, "U1", 1)
	if err != nil {
		t.Fatalf("ByUser() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "P3" || got[0].Score != 2 {
		t.Errorf("ByUser(U1, 1) = %+v", got)
	}
	if _, err := r.ByUser(ctx, "U9", 3); !core.IsNotFound(err) {
		t.Errorf("ByUser(U9) error = %v, want NotFound", err)
	}
}

func TestIngestRatingVisibleToNextByUser(t *testing.T) {
	r := newFixture(t)
	ctx := context.Background()

	if err := r.IngestRating(ctx, "U1", "P3", 4); err != nil {
		t.Fatalf("IngestRating() error = %v", err)
	}
	got, err := r.ByUser(ctx, "U1", 3)
	if err != nil {
		t.Fatalf("ByUser() error = %v", err)
	}
	for _, it := range got {
		if it.ID == "P3" {
			t.Errorf("P3 still recommended after U1 rated it: %s", names(got))
		}
	}

	// 新用户写入后立即可查询
	if err := r.IngestRating(ctx, "U3", "P1", 5); err != nil {
		t.Fatal(err)
	}
	if _, err := r.ByUser(ctx, "U3", 3); err != nil {
		t.Errorf("ByUser(U3) after ingest error = %v", err)
	}
}

func TestIngestRatingRejected(t *testing.T) {
	r := newFixture(t)
	ctx := context.Background()
	before := r.ratings.Len()

	if err := r.IngestRating(ctx, "U1", "P3", 6); !core.IsInvalidRating(err) {
		t.Errorf("IngestRating(6) error = %v, want InvalidRating", err)
	}
	if err := r.IngestRating(ctx, "U1", "P9", 3); !core.IsNotFound(err) {
		t.Errorf("IngestRating(P9) error = %v, want NotFound", err)
	}
	if r.ratings.Len() != before {
		t.Errorf("store mutated: %d -> %d", before, r.ratings.Len())
	}
	got, _ := r.ByUser(ctx, "U1", 1)
	if len(got) != 1 || got[0].ID != "P3" {
		t.Errorf("ByUser(U1) after rejected ingest = %s", names(got))
	}
}

func TestHistoryRecorded(t *testing.T) {
	ms := store.NewMemoryStore()
	defer ms.Close()
	rec := history.NewStoreRecorder(ms, "")
	r := newFixture(t, WithHistory(rec))
	ctx := context.Background()

	_, _ = r.ByItem(ctx, "P1", 2)
	_, _ = r.ByUser(ctx, "U1", 1)
	_, _ = r.ByUser(ctx, "U9", 1) // 失败的查询不记录

	entries, err := r.History(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("History() = %d entries, want 2", len(entries))
	}
	want := []string{
		"[2024-05-17 09:30:05] Content: P1 -> red shoe casual, blue laptop gaming",
		"[2024-05-17 09:30:05] User: U1 -> blue laptop gaming",
	}
	for i, e := range entries {
		if e.String() != want[i] {
			t.Errorf("entry %d = %q, want %q", i, e.String(), want[i])
		}
	}
}

func TestPostProcess(t *testing.T) {
	post := &pipeline.Pipeline{Nodes: []pipeline.Node{
		&filter.FilterNode{Filters: []filter.Filter{&filter.CategoryFilter{Exclude: []string{"footwear"}}}},
	}}
	r := newFixture(t, WithPostProcess(post))

	got, err := r.ByItem(context.Background(), "P1", 2)
	if err != nil {
		t.Fatal(err)
	}
	if names(got) != "blue laptop gaming" {
		t.Errorf("ByItem with filter = %s", names(got))
	}
	if got[0].Meta[filter.MetaCategory] != "Laptops" {
		t.Errorf("meta not enriched: %+v", got[0].Meta)
	}
}

func TestTopRated(t *testing.T) {
	r := newFixture(t)
	got, err := r.TopRated(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	// P1 均分 5，P2 为 4
	if names(got) != "red shoe running,red shoe casual" {
		t.Errorf("TopRated(2) = %s", names(got))
	}
}

func TestConcurrentIngestAndQuery(t *testing.T) {
	r := newFixture(t, WithWorkers(2))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = r.IngestRating(ctx, "U2", "P2", float64(1+i%5))
		}()
		go func() {
			defer wg.Done()
			if _, err := r.ByUser(ctx, "U1", 3); err != nil {
				t.Errorf("ByUser() error = %v", err)
			}
			if _, err := r.ByItem(ctx, "P2", 3); err != nil {
				t.Errorf("ByItem() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if _, rated := r.ratings.Matrix().Get("U2", "P2"); !rated {
		t.Error("U2 rating of P2 missing after concurrent ingest")
	}
}

func TestNewErrors(t *testing.T) {
	ctx := context.Background()
	if _, err := New(ctx, nil, nil); !core.IsEmptyCatalog(err) {
		t.Errorf("New(nil catalog) error = %v", err)
	}
	idx, _ := catalog.New([]core.Product{{ID: "P1", Name: "x"}})
	if _, err := New(ctx, idx, rating.NewStore(idx)); !core.IsEmptyRatingStore(err) {
		t.Errorf("New(empty ratings) error = %v", err)
	}
}
