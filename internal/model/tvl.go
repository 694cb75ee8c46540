package model

// TvlSnapshot is an append-only record of one aggregate TVL computation.
type TvlSnapshot struct {
	TotalTvl       string `json:"total_tvl"`
	BlockNumber    uint64 `json:"block_number"`
	BlockTimestamp uint64 `json:"block_timestamp"`
}

// TotalTvlState is the singleton registry record behind the TVL aggregator.
// Vaults is append-only and may contain duplicates.
type TotalTvlState struct {
	ID             string   `json:"id"`
	Vaults         []string `json:"vaults"`
	LastUpdate     uint64   `json:"last_update"`
	Timestamp      uint64   `json:"timestamp"`
	CreatedAtBlock uint64   `json:"created_at_block"`
}
