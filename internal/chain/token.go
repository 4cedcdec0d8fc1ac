package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Token binds the token ABI to one contract address.
type Token struct {
	address  common.Address
	contract *bind.BoundContract
}

// NewToken binds the token at address. transactor may be nil when the
// token is only read.
func NewToken(address common.Address, caller ContractCaller, transactor Transactor) (*Token, error) {
	parsed, err := TokenABI()
	if err != nil {
		return nil, fmt.Errorf("parse token abi: %w", err)
	}
	var tr bind.ContractTransactor
	if transactor != nil {
		tr = transactor
	}
	return &Token{
		address:  address,
		contract: bind.NewBoundContract(address, parsed, caller, tr, nil),
	}, nil
}

func (t *Token) Address() common.Address {
	return t.address
}

// call runs method(args) against latest; errors from the node and the
// abi decoder are returned as is.
func (t *Token) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	var out []interface{}
	if err := t.contract.Call(&bind.CallOpts{Context: ctx}, &out, method, args...); err != nil {
		return nil, err
	}
	return out, nil
}

func (t *Token) Name(ctx context.Context) (string, error) {
	out, err := t.call(ctx, "name")
	if err != nil {
		return "", err
	}
	return single[string](out, "name")
}

func (t *Token) TotalSupply(ctx context.Context) (*big.Int, error) {
	out, err := t.call(ctx, "totalSupply")
	if err != nil {
		return nil, err
	}
	return single[*big.Int](out, "totalSupply")
}

func (t *Token) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	out, err := t.call(ctx, "balanceOf", owner)
	if err != nil {
		return nil, err
	}
	return single[*big.Int](out, "balanceOf")
}

// MinterRole returns the keccak hash identifying the minter role.
func (t *Token) MinterRole(ctx context.Context) ([32]byte, error) {
	out, err := t.call(ctx, "MINTER_ROLE")
	if err != nil {
		return [32]byte{}, err
	}
	return single[[32]byte](out, "MINTER_ROLE")
}

func (t *Token) HasRole(ctx context.Context, role [32]byte, account common.Address) (bool, error) {
	out, err := t.call(ctx, "hasRole", role, account)
	if err != nil {
		return false, err
	}
	return single[bool](out, "hasRole")
}

// Mint sends mint(to, amount) signed by s. Nonce, fees and gas come from the
// node: EIP-1559 when the head carries a base fee, legacy otherwise.
func (t *Token) Mint(ctx context.Context, s *Signer, to common.Address, amount *big.Int) (*types.Transaction, error) {
	return t.contract.Transact(s.TransactOpts(ctx), "mint", to, amount)
}

func single[T any](out []interface{}, method string) (T, error) {
	var zero T
	if len(out) != 1 {
		return zero, fmt.Errorf("%s: expected 1 output, got %d", method, len(out))
	}
	v, ok := out[0].(T)
	if !ok {
		return zero, fmt.Errorf("%s: unexpected output type %T", method, out[0])
	}
	return v, nil
}

