package chain

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

//go:embed abi/MyToken.json
var tokenABIJSON []byte

const TransferEvent = "Transfer"

// Transfer is a decoded ERC-20 Transfer log.
type Transfer struct {
	From        common.Address
	To          common.Address
	Value       *big.Int
	TxHash      common.Hash
	LogIndex    uint
	BlockNumber uint64
}

// IsMint reports whether the transfer created new tokens.
func (t *Transfer) IsMint() bool {
	return t.From == (common.Address{})
}

// LoadABI 解析 ABI json
func LoadABI(r io.Reader) (abi.ABI, error) {
	return abi.JSON(r)
}

// TokenABI returns the embedded token ABI.
func TokenABI() (abi.ABI, error) {
	return LoadABI(bytes.NewReader(tokenABIJSON))
}

// EventID 获取事件 topic
func EventID(a abi.ABI, name string) (common.Hash, error) {
	ev, ok := a.Events[name]
	if !ok {
		return common.Hash{}, fmt.Errorf("event %s not found in abi", name)
	}
	return ev.ID, nil
}

// DecodeTransfer decodes a Transfer log. from/to are indexed and live in the
// topics, the value is in data.
func DecodeTransfer(a abi.ABI, l types.Log) (*Transfer, error) {
	id, err := EventID(a, TransferEvent)
	if err != nil {
		return nil, err
	}
	if len(l.Topics) != 3 || l.Topics[0] != id {
		return nil, fmt.Errorf("log %s:%d is not a Transfer event", l.TxHash.Hex(), l.Index)
	}

	var body struct {
		Value *big.Int
	}
	if err := a.UnpackIntoInterface(&body, TransferEvent, l.Data); err != nil {
		return nil, fmt.Errorf("decode Transfer data: %w", err)
	}

	return &Transfer{
		From:        common.BytesToAddress(l.Topics[1].Bytes()),
		To:          common.BytesToAddress(l.Topics[2].Bytes()),
		Value:       body.Value,
		TxHash:      l.TxHash,
		LogIndex:    l.Index,
		BlockNumber: l.BlockNumber,
	}, nil
}
