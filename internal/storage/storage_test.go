package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"folio_tracker/internal/models"
)

var startingCash = decimal.NewFromFloat(100.0)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestLoad_MissingFileBootstraps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.csv")

	state, err := Load(path, startingCash)
	if err != nil {
		t.Fatalf("Load of missing file should not error, got %v", err)
	}
	if len(state.Holdings) != 0 {
		t.Errorf("Expected empty portfolio, got %d holdings", len(state.Holdings))
	}
	if !state.Cash.Equal(startingCash) {
		t.Errorf("Expected bootstrap cash 100, got %s", state.Cash)
	}
}

func TestLoad_ExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portfolio.csv")
	content := "ticker,shares,stop_loss,buy_price,cost_basis,cash\n" +
		"ABEO,4,4.90,5.77,23.08,31.58\n" +
		"IINN,16,1.10,1.50,24.48,31.58\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	state, err := Load(path, startingCash)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(state.Holdings) != 2 {
		t.Fatalf("Expected 2 holdings, got %d", len(state.Holdings))
	}
	if !state.Cash.Equal(dec("31.58")) {
		t.Errorf("Expected cash 31.58, got %s", state.Cash)
	}
	h := state.Holdings[0]
	if h.Ticker != "ABEO" || !h.Shares.Equal(dec("4")) || !h.StopLoss.Equal(dec("4.90")) {
		t.Errorf("Unexpected first holding: %+v", h)
	}
}

func TestLoad_HeaderOrderAndExtraColumns(t *testing.T) {
	// Column order is not significant and unknown columns are ignored.
	path := filepath.Join(t.TempDir(), "portfolio.csv")
	content := "cash,note,buy_price,ticker,cost_basis,shares,stop_loss\n" +
		"31.58,hello,5.77,ABEO,23.08,4,4.90\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	state, err := Load(path, startingCash)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if state.Holdings[0].Ticker != "ABEO" || !state.Holdings[0].BuyPrice.Equal(dec("5.77")) {
		t.Errorf("Unexpected holding: %+v", state.Holdings[0])
	}
}

func TestLoad_MissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portfolio.csv")
	content := "ticker,shares,stop_loss,buy_price,cash\nABEO,4,4.90,5.77,31.58\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	_, err := Load(path, startingCash)
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("Expected ErrMissingColumn, got %v", err)
	}
}

func TestLoad_CashMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portfolio.csv")
	content := "ticker,shares,stop_loss,buy_price,cost_basis,cash\n" +
		"ABEO,4,4.90,5.77,23.08,31.58\n" +
		"IINN,16,1.10,1.50,24.48,99.99\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	_, err := Load(path, startingCash)
	if !errors.Is(err, ErrCashMismatch) {
		t.Fatalf("Expected ErrCashMismatch, got %v", err)
	}
}

func TestLoad_BadNumericField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portfolio.csv")
	content := "ticker,shares,stop_loss,buy_price,cost_basis,cash\n" +
		"ABEO,four,4.90,5.77,23.08,31.58\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	if _, err := Load(path, startingCash); err == nil {
		t.Fatal("Expected parse error for non-numeric shares, got nil")
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	// 1. Build a non-empty state
	path := filepath.Join(t.TempDir(), "portfolio.csv")
	state := models.PortfolioState{
		Cash: dec("50.25"),
		Holdings: []models.Holding{
			{Ticker: "ABEO", Shares: dec("4"), StopLoss: dec("4.90"), BuyPrice: dec("5.77"), CostBasis: dec("23.08")},
			{Ticker: "FRAC", Shares: dec("2.5"), StopLoss: dec("1.10"), BuyPrice: dec("1.50"), CostBasis: dec("3.75")},
		},
	}

	// 2. Save then load
	if err := Save(state, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path, startingCash)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// 3. Verify the round trip
	if !loaded.Cash.Equal(state.Cash) {
		t.Errorf("Cash mismatch: saved %s, loaded %s", state.Cash, loaded.Cash)
	}
	if len(loaded.Holdings) != len(state.Holdings) {
		t.Fatalf("Holding count mismatch: saved %d, loaded %d", len(state.Holdings), len(loaded.Holdings))
	}
	for i, want := range state.Holdings {
		got := loaded.Holdings[i]
		if got.Ticker != want.Ticker ||
			!got.Shares.Equal(want.Shares) ||
			!got.StopLoss.Equal(want.StopLoss) ||
			!got.BuyPrice.Equal(want.BuyPrice) ||
			!got.CostBasis.Equal(want.CostBasis) {
			t.Errorf("Holding %d mismatch: saved %+v, loaded %+v", i, want, got)
		}
	}

	// 4. Fractional shares survive the format
	if !loaded.Holdings[1].Shares.Equal(dec("2.5")) {
		t.Errorf("Fractional shares lost: %s", loaded.Holdings[1].Shares)
	}
}

func TestSave_OverwritesAtomically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portfolio.csv")
	first := models.PortfolioState{
		Cash: dec("10"),
		Holdings: []models.Holding{
			{Ticker: "OLD", Shares: dec("1"), StopLoss: dec("1"), BuyPrice: dec("2"), CostBasis: dec("2")},
		},
	}
	if err := Save(first, path); err != nil {
		t.Fatalf("First save failed: %v", err)
	}

	second := models.PortfolioState{
		Cash: dec("20"),
		Holdings: []models.Holding{
			{Ticker: "NEW", Shares: dec("3"), StopLoss: dec("1"), BuyPrice: dec("2"), CostBasis: dec("6")},
		},
	}
	if err := Save(second, path); err != nil {
		t.Fatalf("Second save failed: %v", err)
	}

	loaded, err := Load(path, startingCash)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded.Holdings) != 1 || loaded.Holdings[0].Ticker != "NEW" {
		t.Errorf("Expected only the new holding, got %+v", loaded.Holdings)
	}

	// No temp file left behind
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("Temp file left behind after save")
	}
}

func TestLoad_EmptyAndHeaderOnlyFilesBootstrap(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.csv")
	if err := os.WriteFile(empty, nil, 0644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}
	state, err := Load(empty, startingCash)
	if err != nil {
		t.Fatalf("Load of empty file failed: %v", err)
	}
	if len(state.Holdings) != 0 || !state.Cash.Equal(startingCash) {
		t.Errorf("Expected bootstrap state, got %+v", state)
	}

	headerOnly := filepath.Join(dir, "header.csv")
	if err := os.WriteFile(headerOnly, []byte("ticker,shares,stop_loss,buy_price,cost_basis,cash\n"), 0644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}
	state, err = Load(headerOnly, startingCash)
	if err != nil {
		t.Fatalf("Load of header-only file failed: %v", err)
	}
	if len(state.Holdings) != 0 || !state.Cash.Equal(startingCash) {
		t.Errorf("Expected bootstrap state, got %+v", state)
	}
}
