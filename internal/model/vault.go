package model

// Vault is a tracked yield vault. Tvl holds the last computed locked value
// as a decimal string in the stable-unit denomination.
type Vault struct {
	Address    string `json:"address"`
	Underlying string `json:"underlying"`
	Tvl        string `json:"tvl"`
}
