package domain

import "github.com/shopspring/decimal"

// ObservedTransfer is the canonical form of one feed record after
// filtering: destination and asset already verified, amount scaled by the
// asset's declared precision.
type ObservedTransfer struct {
	TransferID  string
	FromAddress string
	ToAddress   string
	Amount      decimal.Decimal
	AssetSymbol string
}
