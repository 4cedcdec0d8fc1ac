package service

import (
	"context"
	"math/big"
	"strings"
	"time"

	"token-backend/internal/chain"
	"token-backend/internal/metrics"
	"token-backend/internal/repo"
	"token-backend/log"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const hello = "Hello World!"

// MintAmount is the raw amount minted per request (1 wei of the token).
var MintAmount = big.NewInt(1)

// ChainBackend is what the service needs from the node. *ethclient.Client
// implements it.
type ChainBackend interface {
	chain.ContractCaller
	chain.ReceiptReader
	chain.BalanceReader
	chain.Transactor
}

// MintResult 返回给调用方的 mint 结果
type MintResult struct {
	Hash    common.Hash    `json:"hash"`
	Receipt *types.Receipt `json:"receipt"`
}

type Options struct {
	ChainID int64
	Token   common.Address
	Backend ChainBackend
	// Signer is nil in read-only mode.
	Signer              *chain.Signer
	Mints               repo.MintStore
	Metrics             *metrics.Metrics
	ReceiptPollInterval time.Duration
}

// TokenService 代币合约的读写门面，每个方法对应一到两次链上调用
type TokenService struct {
	chainID      int64
	token        *chain.Token
	reader       ChainBackend
	signer       *chain.Signer
	mints        repo.MintStore
	metrics      *metrics.Metrics
	pollInterval time.Duration
}

func NewTokenService(opts Options) (*TokenService, error) {
	token, err := chain.NewToken(opts.Token, opts.Backend, opts.Backend)
	if err != nil {
		return nil, err
	}
	mints := opts.Mints
	if mints == nil {
		mints = repo.NewMemoryMintStore()
	}
	return &TokenService{
		chainID:      opts.ChainID,
		token:        token,
		reader:       opts.Backend,
		signer:       opts.Signer,
		mints:        mints,
		metrics:      opts.Metrics,
		pollInterval: opts.ReceiptPollInterval,
	}, nil
}

func (s *TokenService) GetHello() string {
	return hello
}

// ReadOnly reports whether the service runs without a signer.
func (s *TokenService) ReadOnly() bool {
	return s.signer == nil
}

func (s *TokenService) ContractAddress() common.Address {
	return s.token.Address()
}

func (s *TokenService) GetTokenName(ctx context.Context) (string, error) {
	start := time.Now()
	name, err := s.token.Name(ctx)
	s.metrics.ObserveChainCall("name", start, err)
	return name, err
}

// GetTotalSupply returns the total supply in token units.
func (s *TokenService) GetTotalSupply(ctx context.Context) (string, error) {
	start := time.Now()
	supply, err := s.token.TotalSupply(ctx)
	s.metrics.ObserveChainCall("totalSupply", start, err)
	if err != nil {
		return "", err
	}
	return chain.FormatEther(supply), nil
}

// GetTokenBalance returns the balance of address in token units.
func (s *TokenService) GetTokenBalance(ctx context.Context, address common.Address) (string, error) {
	start := time.Now()
	balance, err := s.token.BalanceOf(ctx, address)
	s.metrics.ObserveChainCall("balanceOf", start, err)
	if err != nil {
		return "", err
	}
	return chain.FormatEther(balance), nil
}

// CheckMinterRole 先取 MINTER_ROLE 哈希，再查 hasRole
func (s *TokenService) CheckMinterRole(ctx context.Context, address common.Address) (bool, error) {
	start := time.Now()
	role, err := s.token.MinterRole(ctx)
	s.metrics.ObserveChainCall("MINTER_ROLE", start, err)
	if err != nil {
		return false, err
	}

	start = time.Now()
	ok, err := s.token.HasRole(ctx, role, address)
	s.metrics.ObserveChainCall("hasRole", start, err)
	return ok, err
}

func (s *TokenService) GetServerWalletAddress() (common.Address, error) {
	if s.signer == nil {
		return common.Address{}, ErrNotImplemented
	}
	return s.signer.Address(), nil
}

// GetTransactionReceipt returns the node's error unchanged when the
// transaction is unknown or pending.
func (s *TokenService) GetTransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	start := time.Now()
	receipt, err := s.reader.TransactionReceipt(ctx, hash)
	s.metrics.ObserveChainCall("getTransactionReceipt", start, err)
	return receipt, err
}

// MintTokens 发送 mint(address, 1) 并等待交易上链。
// 等待只受 ctx 限制；并发请求不做去重。
func (s *TokenService) MintTokens(ctx context.Context, to common.Address) (*MintResult, error) {
	if s.signer == nil {
		return nil, ErrNotImplemented
	}
	log.Logger.Sugar().Infof("Minting tokens to %s", to.Hex())

	start := time.Now()
	tx, err := s.token.Mint(ctx, s.signer, to, MintAmount)
	s.metrics.ObserveChainCall("mint", start, err)
	if err != nil {
		s.metrics.IncMint(metrics.MintError)
		return nil, err
	}
	s.metrics.IncMint(metrics.MintSubmitted)
	log.Logger.Sugar().Infof("Hash: %s", tx.Hash().Hex())

	s.saveMint(ctx, &repo.MintRecord{
		ChainId:   s.chainID,
		Recipient: strings.ToLower(to.Hex()),
		Amount:    MintAmount.String(),
		TxHash:    tx.Hash().Hex(),
		Status:    repo.MintStatusPending,
	})

	start = time.Now()
	receipt, err := chain.WaitMined(ctx, s.reader, tx.Hash(), s.pollInterval)
	s.metrics.ObserveChainCall("waitForTransactionReceipt", start, err)
	if err != nil {
		return nil, err
	}

	status, result := repo.MintStatusSuccess, metrics.MintSuccess
	if receipt.Status != types.ReceiptStatusSuccessful {
		status, result = repo.MintStatusFailed, metrics.MintReverted
	}
	s.metrics.IncMint(result)
	s.updateMint(ctx, tx.Hash(), status, receipt)
	log.Logger.Sugar().Infof("Receipt: tx %s status %d gas %d", tx.Hash().Hex(), receipt.Status, receipt.GasUsed)

	return &MintResult{Hash: tx.Hash(), Receipt: receipt}, nil
}

// ListMints returns recorded mints, newest first.
func (s *TokenService) ListMints(ctx context.Context, recipient string, limit int) ([]repo.MintRecord, error) {
	return s.mints.ListMints(ctx, recipient, limit)
}

// SignerBalance returns the native balance of the server wallet.
func (s *TokenService) SignerBalance(ctx context.Context) (*big.Int, error) {
	if s.signer == nil {
		return nil, ErrNotImplemented
	}
	start := time.Now()
	balance, err := s.reader.BalanceAt(ctx, s.signer.Address(), nil)
	s.metrics.ObserveChainCall("getBalance", start, err)
	return balance, err
}

// mint 记录只做尽力保存，失败只打日志，不影响 mint 结果
func (s *TokenService) saveMint(ctx context.Context, r *repo.MintRecord) {
	ctx, cancel := storeContext(ctx)
	defer cancel()
	if err := s.mints.SaveMint(ctx, r); err != nil {
		log.Logger.Sugar().Error("save mint record failed: ", err)
	}
}

func (s *TokenService) updateMint(ctx context.Context, hash common.Hash, status string, receipt *types.Receipt) {
	ctx, cancel := storeContext(ctx)
	defer cancel()
	var block uint64
	if receipt.BlockNumber != nil {
		block = receipt.BlockNumber.Uint64()
	}
	if err := s.mints.UpdateMint(ctx, hash.Hex(), status, block, receipt.GasUsed); err != nil {
		log.Logger.Sugar().Error("update mint record failed: ", err)
	}
}

func storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
}
