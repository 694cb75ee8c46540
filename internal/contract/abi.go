package contract

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const erc20ABIJSON = `[
  {"inputs": [], "name": "decimals", "outputs": [{"type": "uint8"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "name", "outputs": [{"type": "string"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "symbol", "outputs": [{"type": "string"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "totalSupply", "outputs": [{"type": "uint256"}], "stateMutability": "view", "type": "function"}
]`

const factoryABIJSON = `[
  {
    "inputs": [
      {"internalType": "address", "name": "tokenA", "type": "address"},
      {"internalType": "address", "name": "tokenB", "type": "address"}
    ],
    "name": "getPool",
    "outputs": [{"internalType": "address", "name": "", "type": "address"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "address", "name": "tokenA", "type": "address"},
      {"internalType": "address", "name": "tokenB", "type": "address"}
    ],
    "name": "getPair",
    "outputs": [{"internalType": "address", "name": "", "type": "address"}],
    "stateMutability": "view",
    "type": "function"
  }
]`

const pairABIJSON = `[
  {
    "inputs": [],
    "name": "getReserves",
    "outputs": [
      {"internalType": "uint112", "name": "_reserve0", "type": "uint112"},
      {"internalType": "uint112", "name": "_reserve1", "type": "uint112"}
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [],
    "name": "token0",
    "outputs": [{"internalType": "address", "name": "", "type": "address"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [],
    "name": "token1",
    "outputs": [{"internalType": "address", "name": "", "type": "address"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [],
    "name": "totalSupply",
    "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "stateMutability": "view",
    "type": "function"
  }
]`

const weightedPoolABIJSON = `[
  {
    "inputs": [],
    "name": "getPoolId",
    "outputs": [{"internalType": "bytes32", "name": "", "type": "bytes32"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [],
    "name": "getVault",
    "outputs": [{"internalType": "address", "name": "", "type": "address"}],
    "stateMutability": "view",
    "type": "function"
  }
]`

const balancerVaultABIJSON = `[
  {
    "inputs": [{"internalType": "bytes32", "name": "poolId", "type": "bytes32"}],
    "name": "getPoolTokens",
    "outputs": [
      {"internalType": "address[]", "name": "tokens", "type": "address[]"},
      {"internalType": "uint256[]", "name": "balances", "type": "uint256[]"},
      {"internalType": "uint256", "name": "lastChangeBlock", "type": "uint256"}
    ],
    "stateMutability": "view",
    "type": "function"
  }
]`

const curveABIJSON = `[
  {
    "inputs": [],
    "name": "minter",
    "outputs": [{"internalType": "address", "name": "", "type": "address"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "uint256", "name": "i", "type": "uint256"}],
    "name": "coins",
    "outputs": [{"internalType": "address", "name": "", "type": "address"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "uint256", "name": "i", "type": "uint256"}],
    "name": "balances",
    "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "stateMutability": "view",
    "type": "function"
  }
]`

const velocoreABIJSON = `[
  {
    "inputs": [{"internalType": "address", "name": "pool", "type": "address"}],
    "name": "queryPool",
    "outputs": [
      {"internalType": "bytes32[]", "name": "listedTokens", "type": "bytes32[]"},
      {"internalType": "uint256[]", "name": "reserves", "type": "uint256[]"},
      {"internalType": "uint256[]", "name": "mintedLPTokens", "type": "uint256[]"}
    ],
    "stateMutability": "view",
    "type": "function"
  }
]`

var (
	parsedABIs map[string]abi.ABI
	parseOnce  sync.Once
	parseErr   error
)

func parsedABI(name string) (abi.ABI, error) {
	parseOnce.Do(func() {
		sources := map[string]string{
			"erc20":         erc20ABIJSON,
			"factory":       factoryABIJSON,
			"pair":          pairABIJSON,
			"weightedPool":  weightedPoolABIJSON,
			"balancerVault": balancerVaultABIJSON,
			"curve":         curveABIJSON,
			"velocore":      velocoreABIJSON,
		}
		parsedABIs = make(map[string]abi.ABI, len(sources))
		for key, src := range sources {
			parsed, err := abi.JSON(strings.NewReader(src))
			if err != nil {
				parseErr = err
				return
			}
			parsedABIs[key] = parsed
		}
	})
	if parseErr != nil {
		return abi.ABI{}, parseErr
	}
	return parsedABIs[name], nil
}
