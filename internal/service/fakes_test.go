package service

import (
	"context"
	"math/big"
	"sync"
	"testing"

	"token-backend/internal/chain"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

var (
	tokenAddr = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	holder    = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	keyHex    = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	keyAddr   = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
)

// fakeNode is an in-memory token contract and node.
type fakeNode struct {
	mu       sync.Mutex
	abi      abi.ABI
	name     string
	supply   *big.Int
	balances map[common.Address]*big.Int
	minters  map[common.Address]bool
	native   *big.Int
	receipts map[common.Hash]*types.Receipt
	sent     []*types.Transaction
	revert   bool
	pending  bool
	callErr  error
}

func newFakeNode(t *testing.T) *fakeNode {
	t.Helper()
	a, err := chain.TokenABI()
	require.NoError(t, err)
	return &fakeNode{
		abi:      a,
		name:     "MyToken",
		supply:   new(big.Int),
		balances: map[common.Address]*big.Int{},
		minters:  map[common.Address]bool{},
		native:   big.NewInt(1e18),
		receipts: map[common.Hash]*types.Receipt{},
	}
}

func minterRole() [32]byte {
	var r [32]byte
	copy(r[:], common.FromHex("0x9f2df0fed2c77648de5860a4cc508cd0818c85b8b8a1ab4ceeef8d981c8956a6"))
	return r
}

func (f *fakeNode) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.callErr != nil {
		return nil, f.callErr
	}
	m, err := f.abi.MethodById(msg.Data[:4])
	if err != nil {
		return nil, err
	}
	args, err := m.Inputs.Unpack(msg.Data[4:])
	if err != nil {
		return nil, err
	}
	switch m.Name {
	case "name":
		return m.Outputs.Pack(f.name)
	case "totalSupply":
		return m.Outputs.Pack(f.supply)
	case "balanceOf":
		b, ok := f.balances[args[0].(common.Address)]
		if !ok {
			b = new(big.Int)
		}
		return m.Outputs.Pack(b)
	case "MINTER_ROLE":
		return m.Outputs.Pack(minterRole())
	case "hasRole":
		if args[0].([32]byte) != minterRole() {
			return m.Outputs.Pack(false)
		}
		return m.Outputs.Pack(f.minters[args[1].(common.Address)])
	}
	return nil, nil
}

func (f *fakeNode) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return []byte{0x60, 0x80}, nil
}

func (f *fakeNode) PendingCodeAt(context.Context, common.Address) ([]byte, error) {
	return []byte{0x60, 0x80}, nil
}

func (f *fakeNode) TransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.receipts[hash]
	if !ok {
		return nil, ethereum.NotFound
	}
	return r, nil
}

func (f *fakeNode) BalanceAt(context.Context, common.Address, *big.Int) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return new(big.Int).Set(f.native), nil
}

func (f *fakeNode) HeaderByNumber(context.Context, *big.Int) (*types.Header, error) {
	return &types.Header{Number: big.NewInt(10), BaseFee: big.NewInt(1_000_000_000)}, nil
}

func (f *fakeNode) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return uint64(len(f.sent)), nil
}

func (f *fakeNode) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(2_000_000_000), nil
}

func (f *fakeNode) SuggestGasTipCap(context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (f *fakeNode) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return 70_000, nil
}

// SendTransaction executes mint(to, amount) and mines it immediately.
func (f *fakeNode) SendTransaction(_ context.Context, tx *types.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, tx)

	status := types.ReceiptStatusSuccessful
	if f.revert {
		status = types.ReceiptStatusFailed
	} else {
		m, err := f.abi.MethodById(tx.Data()[:4])
		if err != nil {
			return err
		}
		args, err := m.Inputs.Unpack(tx.Data()[4:])
		if err != nil {
			return err
		}
		to, amount := args[0].(common.Address), args[1].(*big.Int)
		b, ok := f.balances[to]
		if !ok {
			b = new(big.Int)
		}
		f.balances[to] = new(big.Int).Add(b, amount)
		f.supply = new(big.Int).Add(f.supply, amount)
	}
	if f.pending {
		return nil
	}
	f.receipts[tx.Hash()] = &types.Receipt{
		Status:      status,
		TxHash:      tx.Hash(),
		BlockNumber: big.NewInt(int64(10 + len(f.sent))),
		GasUsed:     51_000,
	}
	return nil
}

func newTestService(t *testing.T, node *fakeNode, withSigner bool) *TokenService {
	t.Helper()
	opts := Options{
		ChainID:             11155111,
		Token:               tokenAddr,
		Backend:             node,
		ReceiptPollInterval: 1,
	}
	if withSigner {
		signer, err := chain.NewSigner(keyHex, big.NewInt(11155111))
		require.NoError(t, err)
		opts.Signer = signer
	}
	svc, err := NewTokenService(opts)
	require.NoError(t, err)
	return svc
}

type recordingHub struct {
	mu   sync.Mutex
	msgs [][]byte
}

func (h *recordingHub) Broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.msgs = append(h.msgs, msg)
}

func (h *recordingHub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.msgs)
}
