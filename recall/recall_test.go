package recall

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/rushteam/shoprec/catalog"
	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/rating"
)

func mustIndex(t *testing.T, products ...core.Product) *catalog.Index {
	t.Helper()
	idx, err := catalog.New(products)
	if err != nil {
		t.Fatalf("catalog.New() error = %v", err)
	}
	return idx
}

func shopIndex(t *testing.T) *catalog.Index {
	return mustIndex(t,
		core.Product{ID: "P1", Name: "red shoe running"},
		core.Product{ID: "P2", Name: "red shoe casual"},
		core.Product{ID: "P3", Name: "blue laptop gaming"},
	)
}

func mustMatrix(t *testing.T, idx *catalog.Index, ratings ...core.Rating) *rating.Matrix {
	t.Helper()
	s := rating.NewStore(idx)
	if err := s.Seed(ratings); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	return s.Matrix()
}

func ids(s []Scored) string {
	out := make([]string, len(s))
	for i, v := range s {
		out[i] = v.ID
	}
	return strings.Join(out, ",")
}

func TestContentSimilarTo(t *testing.T) {
	cs, err := NewContentSimilarity(context.Background(), shopIndex(t))
	if err != nil {
		t.Fatalf("NewContentSimilarity() error = %v", err)
	}

	tests := []struct {
		name string
		item string
		n    int
		want string
	}{
		{"shares vocabulary", "P1", 1, "P2"},
		{"n beyond size", "P1", 10, "P2,P3"},
		{"zero n", "P1", 0, ""},
		{"negative n", "P2", -1, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cs.SimilarTo(tt.item, tt.n)
			if err != nil {
				t.Fatalf("SimilarTo() error = %v", err)
			}
			if ids(got) != tt.want {
				t.Errorf("SimilarTo(%s, %d) = %s, want %s", tt.item, tt.n, ids(got), tt.want)
			}
		})
	}

	if _, err := cs.SimilarTo("P9", 3); !core.IsNotFound(err) {
		t.Errorf("SimilarTo(P9) error = %v, want NotFound", err)
	}
}

func TestContentSimilarityInvariants(t *testing.T) {
	idx := mustIndex(t,
		core.Product{ID: "A", Name: "wireless mouse", Category: "accessories", Brand: "Logi"},
		core.Product{ID: "B", Name: "wired mouse", Category: "accessories", Brand: "Logi"},
		core.Product{ID: "C", Name: "mechanical keyboard", Category: "accessories", Brand: "Keychron"},
		core.Product{ID: "D", Name: "gaming laptop", Category: "computers", Features: "rtx gpu"},
		core.Product{ID: "E", Name: "the", Features: "of and"},
	)
	cs, err := NewContentSimilarity(context.Background(), idx, WithWorkers(2))
	if err != nil {
		t.Fatalf("NewContentSimilarity() error = %v", err)
	}
	m := cs.Matrix()
	for i := 0; i < m.Size(); i++ {
		if m.At(i, i) != 1 {
			t.Errorf("diagonal %d = %v", i, m.At(i, i))
		}
		for j := 0; j < m.Size(); j++ {
			v := m.At(i, j)
			if v < 0 || v > 1 {
				t.Errorf("sim(%d,%d) = %v out of range", i, j, v)
			}
			if math.Abs(v-m.At(j, i)) > 1e-12 {
				t.Errorf("sim(%d,%d) = %v != sim(%d,%d) = %v", i, j, v, j, i, m.At(j, i))
			}
		}
	}
	for _, id := range idx.AllIDs() {
		got, _ := cs.SimilarTo(id, 2)
		if len(got) > 2 {
			t.Errorf("SimilarTo(%s, 2) returned %d items", id, len(got))
		}
		for _, s := range got {
			if s.ID == id {
				t.Errorf("SimilarTo(%s) includes itself", id)
			}
		}
	}
	// 全部是停用词的物品与其他物品相似度为 0
	if v, _ := cs.Similarity("E", "A"); v != 0 {
		t.Errorf("Similarity(E, A) = %v, want 0", v)
	}
	if _, err := cs.Similarity("A", "Z"); !core.IsNotFound(err) {
		t.Errorf("Similarity(A, Z) error = %v", err)
	}
}

func TestContentSimilarTieOrder(t *testing.T) {
	// P3 与 P2 文本相同，目录顺序为 P1, P3, P2
	idx := mustIndex(t,
		core.Product{ID: "P1", Name: "alpha beta"},
		core.Product{ID: "P3", Name: "alpha gamma"},
		core.Product{ID: "P2", Name: "alpha gamma"},
	)
	for i := 0; i < 3; i++ {
		cs, err := NewContentSimilarity(context.Background(), idx, WithWorkers(0))
		if err != nil {
			t.Fatal(err)
		}
		got, _ := cs.SimilarTo("P1", 2)
		if ids(got) != "P2,P3" {
			t.Fatalf("run %d: SimilarTo(P1) = %s, want P2,P3", i, ids(got))
		}
	}
}

func TestContentSimilarityCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewContentSimilarity(ctx, shopIndex(t)); err == nil {
		t.Error("expected error on canceled context")
	}
}

func TestUserBasedCFExample(t *testing.T) {
	idx := shopIndex(t)
	m := mustMatrix(t, idx,
		core.Rating{UserID: "U1", ItemID: "P1", Score: 5},
		core.Rating{UserID: "U1", ItemID: "P2", Score: 4},
		core.Rating{UserID: "U2", ItemID: "P1", Score: 5},
		core.Rating{UserID: "U2", ItemID: "P3", Score: 2},
	)
	cf, err := NewUserBasedCF(context.Background(), m)
	if err != nil {
		t.Fatalf("NewUserBasedCF() error = %v", err)
	}
	got, err := cf.RecommendFor("U1", 1)
	if err != nil {
		t.Fatalf("RecommendFor() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "P3" || got[0].Score != 2 {
		t.Errorf("RecommendFor(U1, 1) = %+v, want [P3 2]", got)
	}
	if _, err := cf.RecommendFor("U9", 1); !core.IsNotFound(err) {
		t.Errorf("RecommendFor(U9) error = %v, want NotFound", err)
	}
}

func TestUserBasedCFNeighbors(t *testing.T) {
	idx := shopIndex(t)
	m := mustMatrix(t, idx,
		core.Rating{UserID: "U1", ItemID: "P1", Score: 5},
		core.Rating{UserID: "U2", ItemID: "P1", Score: 5},
		core.Rating{UserID: "U2", ItemID: "P2", Score: 4},
		core.Rating{UserID: "U3", ItemID: "P1", Score: 4},
		core.Rating{UserID: "U3", ItemID: "P2", Score: 2},
		core.Rating{UserID: "U4", ItemID: "P3", Score: 5},
	)

	tests := []struct {
		name      string
		k         int
		neighbors string
		recs      string
	}{
		// cos(U1,U3) > cos(U1,U2) > cos(U1,U4) = 0
		{"k=2 skips unrated by neighbors", 2, "U3,U2", "P2"},
		{"k=3 includes zero-similarity neighbor", 3, "U3,U2,U4", "P3,P2"},
		{"k beyond users", 10, "U3,U2,U4", "P3,P2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cf, err := NewUserBasedCF(context.Background(), m, WithNeighbors(tt.k))
			if err != nil {
				t.Fatal(err)
			}
			nb, err := cf.Neighbors("U1")
			if err != nil {
				t.Fatal(err)
			}
			if ids(nb) != tt.neighbors {
				t.Errorf("Neighbors(U1) = %s, want %s", ids(nb), tt.neighbors)
			}
			recs, _ := cf.RecommendFor("U1", 5)
			if ids(recs) != tt.recs {
				t.Errorf("RecommendFor(U1) = %s, want %s", ids(recs), tt.recs)
			}
		})
	}
}

func TestUserBasedCFPredictionIsMean(t *testing.T) {
	idx := shopIndex(t)
	m := mustMatrix(t, idx,
		core.Rating{UserID: "U1", ItemID: "P1", Score: 5},
		core.Rating{UserID: "U2", ItemID: "P1", Score: 5},
		core.Rating{UserID: "U2", ItemID: "P2", Score: 4},
		core.Rating{UserID: "U3", ItemID: "P1", Score: 4},
		core.Rating{UserID: "U3", ItemID: "P2", Score: 2},
	)
	cf, _ := NewUserBasedCF(context.Background(), m, WithNeighbors(2))
	got, _ := cf.RecommendFor("U1", 3)
	if len(got) != 1 || got[0].Score != 3 {
		t.Errorf("RecommendFor(U1) = %+v, want [P2 3]", got)
	}
}

func TestUserBasedCFTieNeighbors(t *testing.T) {
	idx := shopIndex(t)
	m := mustMatrix(t, idx,
		core.Rating{UserID: "U1", ItemID: "P1", Score: 5},
		core.Rating{UserID: "U3", ItemID: "P1", Score: 4},
		core.Rating{UserID: "U2", ItemID: "P1", Score: 3},
	)
	cf, _ := NewUserBasedCF(context.Background(), m, WithNeighbors(1))
	nb, _ := cf.Neighbors("U1")
	if ids(nb) != "U2" {
		t.Errorf("Neighbors(U1) = %s, want U2", ids(nb))
	}
	// 同一用户不会成为自己的近邻
	nb, _ = cf.Neighbors("U2")
	if ids(nb) != "U1" {
		t.Errorf("Neighbors(U2) = %s, want U1", ids(nb))
	}
}

func TestUserBasedCFSymmetric(t *testing.T) {
	idx := shopIndex(t)
	m := mustMatrix(t, idx,
		core.Rating{UserID: "U1", ItemID: "P1", Score: 5},
		core.Rating{UserID: "U1", ItemID: "P3", Score: 1},
		core.Rating{UserID: "U2", ItemID: "P1", Score: 2},
		core.Rating{UserID: "U2", ItemID: "P2", Score: 4},
		core.Rating{UserID: "U3", ItemID: "P3", Score: 3},
	)
	cf, _ := NewUserBasedCF(context.Background(), m, WithWorkers(1))
	sim := cf.Similarity()
	for i := 0; i < sim.Size(); i++ {
		if sim.At(i, i) != 1 {
			t.Errorf("diagonal %d = %v", i, sim.At(i, i))
		}
		for j := 0; j < sim.Size(); j++ {
			if sim.At(i, j) != sim.At(j, i) {
				t.Errorf("sim(%d,%d) not symmetric", i, j)
			}
		}
	}
}

func TestUserBasedCFEmpty(t *testing.T) {
	if _, err := NewUserBasedCF(context.Background(), nil); !core.IsEmptyRatingStore(err) {
		t.Errorf("NewUserBasedCF(nil) error = %v", err)
	}
	empty := rating.NewStore(shopIndex(t)).Matrix()
	if _, err := NewUserBasedCF(context.Background(), empty); !core.IsEmptyRatingStore(err) {
		t.Errorf("NewUserBasedCF(empty) error = %v", err)
	}
	if _, err := NewContentSimilarity(context.Background(), nil); !core.IsEmptyCatalog(err) {
		t.Errorf("NewContentSimilarity(nil) error = %v", err)
	}
}

func TestSourcesRecall(t *testing.T) {
	ctx := context.Background()
	idx := shopIndex(t)
	cs, _ := NewContentSimilarity(ctx, idx)
	items, err := cs.Process(ctx, &core.RecommendContext{Scene: core.SceneItem, ItemID: "P1"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 || items[0].ID != "P2" || items[0].Name != "red shoe casual" {
		t.Errorf("content Process() = %+v", items[0])
	}
	if lbl := items[0].Labels[LabelRecallSource]; lbl.Value != "content" {
		t.Errorf("recall_source label = %+v", lbl)
	}

	store := rating.NewStore(idx)
	_ = store.Seed([]core.Rating{
		{UserID: "U1", ItemID: "P1", Score: 5},
		{UserID: "U2", ItemID: "P1", Score: 3},
		{UserID: "U2", ItemID: "P2", Score: 4},
	})
	top := &TopRated{Ratings: store}
	items, err = top.Recall(ctx, &core.RecommendContext{Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].ID != "P1" || items[0].Score != 4 {
		t.Errorf("TopRated.Recall() = %+v", items)
	}
}
