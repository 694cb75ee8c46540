package model

// PriceFeed is an append-only record of one price computation.
type PriceFeed struct {
	VaultAddress   string `json:"vault_address"`
	Price          string `json:"price"`
	BlockNumber    uint64 `json:"block_number"`
	BlockTimestamp uint64 `json:"block_timestamp"`
}
