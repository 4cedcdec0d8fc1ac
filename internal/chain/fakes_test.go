package chain

import (
	"context"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

var (
	testTokenAddr = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	testHolder    = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	// hardhat account #0
	testKeyHex    = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testKeyAddr   = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
)

// fakeCaller answers eth_call by method selector.
type fakeCaller struct {
	abi     abi.ABI
	outputs map[string][]interface{}
	err     error
	noCode  bool
	calls   []ethereum.CallMsg
}

func (f *fakeCaller) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	if f.noCode {
		return nil, nil
	}
	return []byte{0x60, 0x80}, nil
}

func newFakeCaller(t *testing.T) *fakeCaller {
	t.Helper()
	a, err := TokenABI()
	require.NoError(t, err)
	return &fakeCaller{abi: a, outputs: map[string][]interface{}{}}
}

func (f *fakeCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	f.calls = append(f.calls, msg)
	if f.err != nil {
		return nil, f.err
	}
	m, err := f.abi.MethodById(msg.Data[:4])
	if err != nil {
		return nil, err
	}
	out, ok := f.outputs[m.Name]
	if !ok {
		return []byte{}, nil
	}
	return m.Outputs.Pack(out...)
}

type fakeTransactor struct {
	baseFee *big.Int
	nonce   uint64
	sent    []*types.Transaction
	sendErr error
}

func (f *fakeTransactor) HeaderByNumber(context.Context, *big.Int) (*types.Header, error) {
	return &types.Header{Number: big.NewInt(100), BaseFee: f.baseFee}, nil
}

func (f *fakeTransactor) PendingCodeAt(context.Context, common.Address) ([]byte, error) {
	return []byte{0x60, 0x80}, nil
}

func (f *fakeTransactor) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	return f.nonce, nil
}

func (f *fakeTransactor) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(3_000_000_000), nil
}

func (f *fakeTransactor) SuggestGasTipCap(context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (f *fakeTransactor) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return 60_000, nil
}

func (f *fakeTransactor) SendTransaction(_ context.Context, tx *types.Transaction) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, tx)
	return nil
}

// fakeLogReader serves a fixed head and records every requested range.
type fakeLogReader struct {
	mu     sync.Mutex
	head   uint64
	ranges [][2]uint64
	failAt uint64
}

func (f *fakeLogReader) BlockNumber(context.Context) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.head, nil
}

func (f *fakeLogReader) FilterLogs(_ context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	from, to := q.FromBlock.Uint64(), q.ToBlock.Uint64()
	if f.failAt != 0 && from <= f.failAt && f.failAt <= to {
		return nil, io.ErrUnexpectedEOF
	}
	f.ranges = append(f.ranges, [2]uint64{from, to})
	return []types.Log{{BlockNumber: from, Index: 0}}, nil
}

func (f *fakeLogReader) SetHead(head uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.head = head
}

func (f *fakeLogReader) SetFailAt(block uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failAt = block
}

func (f *fakeLogReader) Ranges() [][2]uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][2]uint64(nil), f.ranges...)
}

// rpcServer is a minimal json-rpc 2.0 node for ethclient.
func rpcServer(t *testing.T, handle func(method string, params []json.RawMessage) (interface{}, error)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage   `json:"id"`
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
		result, err := handle(req.Method, req.Params)
		if err != nil {
			resp["error"] = map[string]interface{}{"code": -32000, "message": err.Error()}
		} else {
			resp["result"] = result
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}
