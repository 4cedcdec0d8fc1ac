package chain

import (
	"context"
	"errors"
	"math/big"
	"time"

	"token-backend/log"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// ErrNoEndpoint is returned by every call of a client built without an rpc url.
var ErrNoEndpoint = errors.New("rpc endpoint url is not configured")

// ContractCaller executes read-only contract calls. CodeAt is consulted by
// bind when a call returns no data.
type ContractCaller interface {
	CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// ReceiptReader fetches transaction receipts.
type ReceiptReader interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// BalanceReader reads native balances.
type BalanceReader interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

// LogReader reads the chain head and historical logs.
type LogReader interface {
	BlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
}

// LogSubscriber streams new logs. Only websocket/ipc clients support it.
type LogSubscriber interface {
	SubscribeFilterLogs(ctx context.Context, q ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error)
}

// Transactor is what bind needs to build and submit a transaction.
type Transactor interface {
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	PendingCodeAt(ctx context.Context, account common.Address) ([]byte, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// Backend is the full client surface used by the service. *ethclient.Client
// implements it and is safe for concurrent use.
type Backend interface {
	ContractCaller
	ReceiptReader
	BalanceReader
	LogReader
	Transactor
	Close()
}

// Dial 连接 rpc 节点。http 连接是惰性的，节点不可达时在调用时报错；
// url 为空时同样返回可用的 client，所有调用返回 ErrNoEndpoint。
func Dial(ctx context.Context, url string) (Backend, error) {
	if url == "" {
		log.Logger.Warn("rpc endpoint url is empty, chain calls will fail")
		return offlineBackend{}, nil
	}
	c, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// MustDial 自动重连，直到连接成功或 ctx 结束；用于 websocket 订阅
func MustDial(ctx context.Context, url string, retry time.Duration) (*ethclient.Client, error) {
	for {
		c, err := ethclient.DialContext(ctx, url)
		if err == nil {
			return c, nil
		}
		log.Logger.Sugar().Warnf("dial %s failed, retry in %s: %v", url, retry, err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retry):
		}
	}
}

type offlineBackend struct{}

func (offlineBackend) CallContract(context.Context, ethereum.CallMsg, *big.Int) ([]byte, error) {
	return nil, ErrNoEndpoint
}

func (offlineBackend) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return nil, ErrNoEndpoint
}

func (offlineBackend) PendingCodeAt(context.Context, common.Address) ([]byte, error) {
	return nil, ErrNoEndpoint
}

func (offlineBackend) TransactionReceipt(context.Context, common.Hash) (*types.Receipt, error) {
	return nil, ErrNoEndpoint
}

func (offlineBackend) BalanceAt(context.Context, common.Address, *big.Int) (*big.Int, error) {
	return nil, ErrNoEndpoint
}

func (offlineBackend) BlockNumber(context.Context) (uint64, error) {
	return 0, ErrNoEndpoint
}

func (offlineBackend) FilterLogs(context.Context, ethereum.FilterQuery) ([]types.Log, error) {
	return nil, ErrNoEndpoint
}

func (offlineBackend) HeaderByNumber(context.Context, *big.Int) (*types.Header, error) {
	return nil, ErrNoEndpoint
}

func (offlineBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	return 0, ErrNoEndpoint
}

func (offlineBackend) SuggestGasPrice(context.Context) (*big.Int, error) {
	return nil, ErrNoEndpoint
}

func (offlineBackend) SuggestGasTipCap(context.Context) (*big.Int, error) {
	return nil, ErrNoEndpoint
}

func (offlineBackend) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return 0, ErrNoEndpoint
}

func (offlineBackend) SendTransaction(context.Context, *types.Transaction) error {
	return ErrNoEndpoint
}

func (offlineBackend) Close() {}
