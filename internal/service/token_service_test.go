package service

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"

	"token-backend/internal/repo"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_Reads(t *testing.T) {
	node := newFakeNode(t)
	node.supply, _ = new(big.Int).SetString("2500000000000000000", 10)
	node.balances[holder] = big.NewInt(1)
	node.minters[keyAddr] = true
	svc := newTestService(t, node, false)
	ctx := context.Background()

	assert.Equal(t, "Hello World!", svc.GetHello())
	assert.Equal(t, tokenAddr, svc.ContractAddress())

	name, err := svc.GetTokenName(ctx)
	require.NoError(t, err)
	assert.Equal(t, "MyToken", name)

	supply, err := svc.GetTotalSupply(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2.5", supply)

	balance, err := svc.GetTokenBalance(ctx, holder)
	require.NoError(t, err)
	assert.Equal(t, "0.000000000000000001", balance)

	balance, err = svc.GetTokenBalance(ctx, common.Address{})
	require.NoError(t, err)
	assert.Equal(t, "0", balance)

	ok, err := svc.CheckMinterRole(ctx, keyAddr)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.CheckMinterRole(ctx, holder)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTokenService_ChainErrorUnchanged(t *testing.T) {
	node := newFakeNode(t)
	node.callErr = errors.New("execution reverted")
	svc := newTestService(t, node, false)

	_, err := svc.GetTokenName(context.Background())
	assert.EqualError(t, err, "execution reverted")
	_, err = svc.CheckMinterRole(context.Background(), holder)
	assert.EqualError(t, err, "execution reverted")

	_, err = svc.GetTransactionReceipt(context.Background(), common.HexToHash("0x662019ce"))
	assert.ErrorIs(t, err, ethereum.NotFound)
}

func TestTokenService_ReadOnly(t *testing.T) {
	svc := newTestService(t, newFakeNode(t), false)
	assert.True(t, svc.ReadOnly())

	_, err := svc.MintTokens(context.Background(), holder)
	assert.ErrorIs(t, err, ErrNotImplemented)
	assert.EqualError(t, err, "Method not implemented.")

	_, err = svc.GetServerWalletAddress()
	assert.ErrorIs(t, err, ErrNotImplemented)
}

func TestTokenService_Mint(t *testing.T) {
	node := newFakeNode(t)
	svc := newTestService(t, node, true)
	ctx := context.Background()

	addr, err := svc.GetServerWalletAddress()
	require.NoError(t, err)
	assert.Equal(t, keyAddr, addr)

	before, err := svc.GetTotalSupply(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0", before)

	res, err := svc.MintTokens(ctx, holder)
	require.NoError(t, err)
	require.Len(t, node.sent, 1)
	assert.Equal(t, node.sent[0].Hash(), res.Hash)
	assert.Equal(t, types.ReceiptStatusSuccessful, res.Receipt.Status)

	after, err := svc.GetTotalSupply(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0.000000000000000001", after)

	got, err := svc.GetTransactionReceipt(ctx, res.Hash)
	require.NoError(t, err)
	assert.Equal(t, res.Hash, got.TxHash)

	list, err := svc.ListMints(ctx, holder.Hex(), 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, strings.ToLower(holder.Hex()), list[0].Recipient)
	assert.Equal(t, res.Hash.Hex(), list[0].TxHash)
	assert.Equal(t, repo.MintStatusSuccess, list[0].Status)
	assert.Equal(t, uint64(51_000), list[0].GasUsed)
}

func TestTokenService_MintReverted(t *testing.T) {
	node := newFakeNode(t)
	node.revert = true
	svc := newTestService(t, node, true)

	res, err := svc.MintTokens(context.Background(), holder)
	require.NoError(t, err)
	assert.Equal(t, types.ReceiptStatusFailed, res.Receipt.Status)

	list, err := svc.ListMints(context.Background(), "", 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, repo.MintStatusFailed, list[0].Status)
}

type failingStore struct{ repo.MintStore }

func (failingStore) SaveMint(context.Context, *repo.MintRecord) error {
	return errors.New("db down")
}

func (failingStore) UpdateMint(context.Context, string, string, uint64, uint64) error {
	return errors.New("db down")
}

func TestTokenService_MintStoreFailureIgnored(t *testing.T) {
	node := newFakeNode(t)
	svc := newTestService(t, node, true)
	svc.mints = failingStore{}

	res, err := svc.MintTokens(context.Background(), holder)
	require.NoError(t, err)
	assert.NotEqual(t, common.Hash{}, res.Hash)
}

func TestTokenService_MintContextCancelled(t *testing.T) {
	node := newFakeNode(t)
	node.pending = true
	svc := newTestService(t, node, true)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.MintTokens(ctx, holder)
	assert.ErrorIs(t, err, context.Canceled)

	// submitted but never confirmed
	list, err := svc.ListMints(context.Background(), "", 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, repo.MintStatusPending, list[0].Status)
}
