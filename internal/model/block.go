package model

// BlockRef identifies the block a computation was triggered at.
type BlockRef struct {
	Number    uint64 `json:"number"`
	Timestamp uint64 `json:"timestamp"`
}
