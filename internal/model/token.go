package model

// Token captures ERC20 identity and cached metadata.
type Token struct {
	Address  string `json:"address"`
	Name     string `json:"name"`
	Decimals uint8  `json:"decimals"`
}
