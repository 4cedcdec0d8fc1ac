package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	ErrMissingPrivateKey = errors.New("PRIVATE_KEY environment variable is not set")
	ErrInvalidPrivateKey = errors.New("PRIVATE_KEY is not a valid hex secp256k1 key")
)

// ParsePrivateKey accepts a hex key with or without the 0x prefix.
func ParsePrivateKey(hexkey string) (*ecdsa.PrivateKey, error) {
	hexkey = strings.TrimSpace(hexkey)
	if hexkey == "" {
		return nil, ErrMissingPrivateKey
	}
	hexkey = strings.TrimPrefix(strings.TrimPrefix(hexkey, "0x"), "0X")
	key, err := crypto.HexToECDSA(hexkey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}
	return key, nil
}

// Signer holds the keyed transactor of the server wallet on one chain.
type Signer struct {
	opts    *bind.TransactOpts
	chainID *big.Int
}

func NewSigner(hexkey string, chainID *big.Int) (*Signer, error) {
	key, err := ParsePrivateKey(hexkey)
	if err != nil {
		return nil, err
	}
	opts, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, err
	}
	return &Signer{opts: opts, chainID: new(big.Int).Set(chainID)}, nil
}

// Address is the account the signer sends from.
func (s *Signer) Address() common.Address {
	return s.opts.From
}

func (s *Signer) ChainID() *big.Int {
	return new(big.Int).Set(s.chainID)
}

// TransactOpts returns a copy bound to ctx, so concurrent mints never share
// one context.
func (s *Signer) TransactOpts(ctx context.Context) *bind.TransactOpts {
	opts := *s.opts
	opts.Context = ctx
	return &opts
}
