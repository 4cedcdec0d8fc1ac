package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
)

const DefaultScanBatchSize = 2000

// ScanHistory 扫历史区块 [from, to]，按 batch 分段请求 eth_getLogs，
// 日志按区块顺序写入 out。返回下一个待扫描的区块号：出错时为出错分段的起点。
func ScanHistory(
	ctx context.Context,
	r LogReader,
	q ethereum.FilterQuery,
	from, to, batch uint64,
	out chan<- types.Log,
) (uint64, error) {
	if from > to {
		return from, fmt.Errorf("invalid scan range %d > %d", from, to)
	}
	if batch == 0 {
		batch = DefaultScanBatchSize
	}

	next := from
	for next <= to {
		end := next + batch - 1
		if end > to || end < next {
			end = to
		}

		q.FromBlock = new(big.Int).SetUint64(next)
		q.ToBlock = new(big.Int).SetUint64(end)

		logs, err := r.FilterLogs(ctx, q)
		if err != nil {
			return next, err
		}
		for _, l := range logs {
			select {
			case out <- l:
			case <-ctx.Done():
				return next, ctx.Err()
			}
		}

		if end == to {
			return to + 1, nil
		}
		next = end + 1
	}
	return next, nil
}
