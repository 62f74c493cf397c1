package service

import (
	"github.com/paywatch/paywatch-backend/internal/domain"
	"github.com/paywatch/paywatch-backend/internal/feed"
	"github.com/shopspring/decimal"
)

// TransferFilter normalizes raw feed records into observed transfers and
// discards records irrelevant to this deployment: wrong asset, wrong
// destination, or a missing/unparsable amount.
type TransferFilter struct {
	watchAddress string
	tokenSymbol  string
}

// NewTransferFilter creates a filter for the watched address and token
func NewTransferFilter(watchAddress, tokenSymbol string) *TransferFilter {
	return &TransferFilter{
		watchAddress: watchAddress,
		tokenSymbol:  tokenSymbol,
	}
}

// Normalize converts a raw record into an ObservedTransfer, or returns nil
// when the record should be discarded. The raw integer value is scaled by
// the precision declared in the record's own token metadata, using exact
// decimal arithmetic so no digits are lost before matching.
func (f *TransferFilter) Normalize(raw *feed.RawRecord) *domain.ObservedTransfer {
	if raw.Value == nil || raw.To == nil || raw.TokenInfo == nil {
		return nil
	}
	if *raw.To != f.watchAddress {
		return nil
	}
	if raw.TokenInfo.Symbol != f.tokenSymbol {
		return nil
	}

	value, err := decimal.NewFromString(*raw.Value)
	if err != nil {
		return nil
	}

	transfer := &domain.ObservedTransfer{
		TransferID:  raw.TransferID,
		ToAddress:   *raw.To,
		Amount:      value.Shift(-raw.TokenInfo.Decimals),
		AssetSymbol: raw.TokenInfo.Symbol,
	}
	if raw.From != nil {
		transfer.FromAddress = *raw.From
	}
	return transfer
}
