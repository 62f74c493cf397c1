package feed

// TokenInfo is the asset metadata attached to a raw feed record. Decimals
// is the precision the raw integer value is scaled by.
type TokenInfo struct {
	Symbol   string `json:"symbol"`
	Decimals int32  `json:"decimals"`
}

// RawRecord is one transfer record as returned by the feed. Every field
// except the transfer id is optional on the wire; the filter validates
// them explicitly rather than trusting the shape.
type RawRecord struct {
	TransferID     string     `json:"transaction_id"`
	From           *string    `json:"from"`
	To             *string    `json:"to"`
	Value          *string    `json:"value"`
	TokenInfo      *TokenInfo `json:"token_info"`
	BlockTimestamp int64      `json:"block_timestamp"`
}

// Page is one page of feed records in the feed's native newest-first
// order. Next is the continuation path for the following page, empty when
// the feed is exhausted.
type Page struct {
	Records []RawRecord
	Next    string
}

// pageResponse is the wire shape of a feed page.
type pageResponse struct {
	Data []RawRecord `json:"data"`
	Next *string     `json:"next"`
}
