package oracle

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

const erc1155BalanceOfABI = `[{
	"name": "balanceOf",
	"type": "function",
	"stateMutability": "view",
	"inputs": [
		{"name": "account", "type": "address"},
		{"name": "id", "type": "uint256"}
	],
	"outputs": [{"name": "", "type": "uint256"}]
}]`

// ContractCaller is the read-only slice of ethclient.Client the fetcher needs.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// RPCFetcher calls ERC-1155 balanceOf through eth_call at the latest block.
type RPCFetcher struct {
	caller ContractCaller
	abi    abi.ABI
	close  func()
}

// Dial connects to a JSON-RPC endpoint (http, ws or ipc).
func Dial(ctx context.Context, rpcURL string) (*RPCFetcher, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", rpcURL, err)
	}
	fetcher, err := NewRPCFetcher(client)
	if err != nil {
		client.Close()
		return nil, err
	}
	fetcher.close = client.Close
	return fetcher, nil
}

func NewRPCFetcher(caller ContractCaller) (*RPCFetcher, error) {
	parsed, err := abi.JSON(strings.NewReader(erc1155BalanceOfABI))
	if err != nil {
		return nil, err
	}
	return &RPCFetcher{caller: caller, abi: parsed}, nil
}

func (f *RPCFetcher) BalanceOf(ctx context.Context, contract, owner common.Address, tokenID *big.Int) (*big.Int, error) {
	data, err := f.abi.Pack("balanceOf", owner, tokenID)
	if err != nil {
		return nil, fmt.Errorf("pack balanceOf: %w", err)
	}
	out, err := f.caller.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: data}, nil)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty balanceOf response from %s", contract.Hex())
	}
	values, err := f.abi.Unpack("balanceOf", out)
	if err != nil {
		return nil, fmt.Errorf("unpack balanceOf: %w", err)
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("balanceOf returned %d values", len(values))
	}
	quantity, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("balanceOf returned %T", values[0])
	}
	return quantity, nil
}

func (f *RPCFetcher) Close() {
	if f.close != nil {
		f.close()
	}
}
