package service

import (
	"testing"

	"github.com/paywatch/paywatch-backend/internal/feed"
)

const (
	testWatchAddress = "TWatchedAddr"
	testTokenSymbol  = "USDT"
)

func strPtr(s string) *string {
	return &s
}

func rawRecord(value, to string, symbol string, decimals int32) *feed.RawRecord {
	return &feed.RawRecord{
		TransferID:     "tx-abc",
		From:           strPtr("TPayer"),
		To:             strPtr(to),
		Value:          strPtr(value),
		TokenInfo:      &feed.TokenInfo{Symbol: symbol, Decimals: decimals},
		BlockTimestamp: 1756700000000,
	}
}

func TestTransferFilter_Normalize_ScalesByTokenDecimals(t *testing.T) {
	filter := NewTransferFilter(testWatchAddress, testTokenSymbol)

	transfer := filter.Normalize(rawRecord("123456789", testWatchAddress, testTokenSymbol, 6))

	if transfer == nil {
		t.Fatal("expected a normalized transfer, got nil")
	}
	if got := transfer.Amount.String(); got != "123.456789" {
		t.Errorf("expected amount 123.456789, got %s", got)
	}
	if transfer.TransferID != "tx-abc" {
		t.Errorf("expected transfer id tx-abc, got %s", transfer.TransferID)
	}
	if transfer.FromAddress != "TPayer" {
		t.Errorf("expected payer address carried over, got %s", transfer.FromAddress)
	}
}

func TestTransferFilter_Normalize_DecimalsFromRecord(t *testing.T) {
	filter := NewTransferFilter(testWatchAddress, testTokenSymbol)

	// precision comes from the record's own metadata, not a fixed constant
	transfer := filter.Normalize(rawRecord("12345", testWatchAddress, testTokenSymbol, 2))

	if transfer == nil {
		t.Fatal("expected a normalized transfer, got nil")
	}
	if got := transfer.Amount.String(); got != "123.45" {
		t.Errorf("expected amount 123.45, got %s", got)
	}
}

func TestTransferFilter_Normalize_WrongDestination(t *testing.T) {
	filter := NewTransferFilter(testWatchAddress, testTokenSymbol)

	if transfer := filter.Normalize(rawRecord("1000000", "TSomeoneElse", testTokenSymbol, 6)); transfer != nil {
		t.Error("expected record for another destination to be discarded")
	}
}

func TestTransferFilter_Normalize_WrongSymbol(t *testing.T) {
	filter := NewTransferFilter(testWatchAddress, testTokenSymbol)

	if transfer := filter.Normalize(rawRecord("1000000", testWatchAddress, "USDC", 6)); transfer != nil {
		t.Error("expected record for another token to be discarded")
	}
}

func TestTransferFilter_Normalize_MissingFields(t *testing.T) {
	filter := NewTransferFilter(testWatchAddress, testTokenSymbol)

	tests := []struct {
		name   string
		mutate func(*feed.RawRecord)
	}{
		{"missing value", func(r *feed.RawRecord) { r.Value = nil }},
		{"missing to", func(r *feed.RawRecord) { r.To = nil }},
		{"missing token info", func(r *feed.RawRecord) { r.TokenInfo = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := rawRecord("1000000", testWatchAddress, testTokenSymbol, 6)
			tt.mutate(raw)
			if transfer := filter.Normalize(raw); transfer != nil {
				t.Error("expected malformed record to be discarded")
			}
		})
	}
}

func TestTransferFilter_Normalize_UnparsableValue(t *testing.T) {
	filter := NewTransferFilter(testWatchAddress, testTokenSymbol)

	if transfer := filter.Normalize(rawRecord("not-a-number", testWatchAddress, testTokenSymbol, 6)); transfer != nil {
		t.Error("expected record with unparsable value to be discarded")
	}
}

func TestTransferFilter_Normalize_MissingFromAllowed(t *testing.T) {
	filter := NewTransferFilter(testWatchAddress, testTokenSymbol)

	raw := rawRecord("1000000", testWatchAddress, testTokenSymbol, 6)
	raw.From = nil

	transfer := filter.Normalize(raw)
	if transfer == nil {
		t.Fatal("expected record without payer address to pass")
	}
	if transfer.FromAddress != "" {
		t.Errorf("expected empty payer address, got %s", transfer.FromAddress)
	}
}
