package catalog

import (
	"strings"
	"testing"

	"github.com/rushteam/shoprec/core"
)

func sampleProducts() []core.Product {
	return []core.Product{
		{ID: "P1", Name: "Trail Runner", Category: "shoes", Brand: "Acme", Features: "red running", Price: 59.9},
		{ID: "P2", Name: "City Walker", Category: "shoes", Brand: "Acme", Features: "red casual"},
		{ID: "P3", Name: "Gamer Pro 15", Category: "laptop", Brand: "Bolt", Features: "blue gaming"},
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		products []core.Product
		check    func(error) bool
	}{
		{"empty catalog", nil, core.IsEmptyCatalog},
		{"empty id", []core.Product{{ID: " "}}, core.IsInvalidInput},
		{"duplicate id", []core.Product{{ID: "P1"}, {ID: "P1"}}, core.IsInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.products)
			if err == nil || !tt.check(err) {
				t.Fatalf("New() error = %v", err)
			}
		})
	}
}

func TestIndexLookup(t *testing.T) {
	idx, err := New(sampleProducts())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	p, err := idx.Lookup("P3")
	if err != nil {
		t.Fatalf("Lookup(P3) error = %v", err)
	}
	if p.Name != "Gamer Pro 15" {
		t.Errorf("Lookup(P3).Name = %q", p.Name)
	}

	if _, err := idx.Lookup("P9"); !core.IsNotFound(err) {
		t.Errorf("Lookup(P9) error = %v, want NOT_FOUND", err)
	}
	if got := idx.Name("P9"); got != "P9" {
		t.Errorf("Name(P9) = %q, want id fallback", got)
	}
}

func TestIndexAllIDsStableOrder(t *testing.T) {
	idx, _ := New(sampleProducts())
	ids := idx.AllIDs()
	want := []string{"P1", "P2", "P3"}
	if strings.Join(ids, ",") != strings.Join(want, ",") {
		t.Fatalf("AllIDs() = %v, want %v", ids, want)
	}
	ids[0] = "mutated"
	if idx.AllIDs()[0] != "P1" {
		t.Error("AllIDs() must return a copy")
	}
}

func TestFingerprintMissingFields(t *testing.T) {
	idx, _ := New([]core.Product{{ID: "X", Name: "Lamp"}})
	fp, err := idx.Fingerprint("X")
	if err != nil {
		t.Fatalf("Fingerprint() error = %v", err)
	}
	if strings.TrimSpace(fp) != "Lamp" {
		t.Errorf("Fingerprint() = %q", fp)
	}
}

func TestIndexSearch(t *testing.T) {
	idx, _ := New(sampleProducts())
	got := idx.Search("WALK")
	if len(got) != 1 || got[0].ID != "P2" {
		t.Errorf("Search(WALK) = %+v", got)
	}
	if len(idx.Search("")) != 3 {
		t.Error("Search(\"\") should return the whole catalog")
	}
	if len(idx.Search("tablet")) != 0 {
		t.Error("Search(tablet) should be empty")
	}
}

func TestLoadCSV(t *testing.T) {
	data := "product_id,product_name,category,brand,features,price\n" +
		"P1,Trail Runner,shoes,Acme,\"red, running\",59.90\n" +
		"P2,City Walker,shoes,,,\n"
	idx, err := LoadCSV(strings.NewReader(data))
	if err != nil {
		t.Fatalf("LoadCSV() error = %v", err)
	}
	if idx.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", idx.Len())
	}
	p, _ := idx.Lookup("P1")
	if p.Features != "red, running" || p.Price != 59.90 {
		t.Errorf("P1 = %+v", p)
	}
	p2, _ := idx.Lookup("P2")
	if p2.Brand != "" || p2.Price != 0 {
		t.Errorf("P2 = %+v", p2)
	}
}

func TestLoadCSVHeaderBOM(t *testing.T) {
	idx, err := LoadCSV(strings.NewReader("\ufeffproduct_id,product_name\nP1,x\n"))
	if err != nil {
		t.Fatalf("LoadCSV() error = %v", err)
	}
	p, err := idx.Lookup("P1")
	if err != nil || p.Name != "x" {
		t.Errorf("Lookup(P1) = %+v, %v", p, err)
	}
}

func TestHeaderKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"product_id", "product_id"},
		{" Product_ID ", "product_id"},
		{"\ufeffUser_ID", "user_id"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := HeaderKey(tt.in); got != tt.want {
			t.Errorf("HeaderKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoadCSVErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"no id column", "name,price\nfoo,1\n"},
		{"bad price", "product_id,price\nP1,cheap\n"},
		{"header only", "product_id,product_name\n"},
		{"empty input", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadCSV(strings.NewReader(tt.data)); err == nil {
				t.Error("LoadCSV() expected error")
			}
		})
	}
}
