package repository

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
)

func TestDefaultProvinceCosts(t *testing.T) {
	costs := DefaultProvinceCosts()

	if len(costs) != 24 {
		t.Errorf("Expected 24 provinces, got %d", len(costs))
	}
	cost, ok := costs.Cost("Santa Fe")
	if !ok || !cost.Equal(decimal.NewFromInt(9000)) {
		t.Errorf("Santa Fe cost = %s, %v", cost, ok)
	}
	if _, ok := costs.Cost("Atlantis"); ok {
		t.Error("unexpected province in default table")
	}
}

func TestParseProvinceCosts_Merge(t *testing.T) {
	doc := []byte("provinces:\n  Santa Fe: 7500\n  Cordoba: 8200.505\n")

	costs, err := ParseProvinceCosts(doc, DefaultProvinceCosts())
	if err != nil {
		t.Fatalf("ParseProvinceCosts error: %v", err)
	}

	if c, _ := costs.Cost("Santa Fe"); !c.Equal(decimal.NewFromInt(7500)) {
		t.Errorf("Santa Fe = %s, want 7500", c)
	}
	if c, _ := costs.Cost("Cordoba"); !c.Equal(decimal.RequireFromString("8200.51")) {
		t.Errorf("Cordoba = %s, want 8200.51", c)
	}
	if c, _ := costs.Cost("Mendoza"); !c.Equal(decimal.NewFromInt(9000)) {
		t.Errorf("Mendoza = %s, want default 9000", c)
	}
}

func TestParseProvinceCosts_Replace(t *testing.T) {
	doc := []byte("replace: true\nprovinces:\n  Santa Fe: 2000\n")

	costs, err := ParseProvinceCosts(doc, DefaultProvinceCosts())
	if err != nil {
		t.Fatalf("ParseProvinceCosts error: %v", err)
	}
	if len(costs) != 1 {
		t.Errorf("Expected only the file entries, got %v", costs.Names())
	}
}

func TestParseProvinceCosts_Invalid(t *testing.T) {
	if _, err := ParseProvinceCosts([]byte("provinces: [oops"), nil); err == nil {
		t.Error("Expected parse error")
	}
	if _, err := ParseProvinceCosts([]byte("provinces:\n  Salta: -1\n"), nil); err == nil {
		t.Error("Expected negative cost error")
	}
}

func TestLoadProvinceCosts_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "provinces.yaml")
	if err := os.WriteFile(path, []byte("provinces:\n  Jujuy: 12000\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	costs, err := LoadProvinceCosts(path)
	if err != nil {
		t.Fatalf("LoadProvinceCosts error: %v", err)
	}
	if c, _ := costs.Cost("Jujuy"); !c.Equal(decimal.NewFromInt(12000)) {
		t.Errorf("Jujuy = %s, want 12000", c)
	}

	if _, err := LoadProvinceCosts(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}
