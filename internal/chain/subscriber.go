package chain

import (
	"context"
	"time"

	"token-backend/log"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
)

// SubscribeLoop 实时订阅（自动重连），直到 ctx 结束
func SubscribeLoop(
	ctx context.Context,
	s LogSubscriber,
	q ethereum.FilterQuery,
	out chan<- types.Log,
	retry time.Duration,
) {
	if retry <= 0 {
		retry = time.Second
	}

	for ctx.Err() == nil {
		ch := make(chan types.Log, 128)
		sub, err := s.SubscribeFilterLogs(ctx, q, ch)
		if err != nil {
			log.Logger.Sugar().Warn("subscribe logs failed: ", err)
			if !sleepCtx(ctx, retry) {
				return
			}
			continue
		}

		err = forward(ctx, sub, ch, out)
		sub.Unsubscribe()
		if ctx.Err() == nil {
			log.Logger.Sugar().Warn("log subscription dropped: ", err)
			sleepCtx(ctx, retry)
		}
	}
}

// forward copies logs until the subscription fails or ctx ends.
func forward(ctx context.Context, sub ethereum.Subscription, in <-chan types.Log, out chan<- types.Log) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-sub.Err():
			return err
		case v := <-in:
			select {
			case out <- v:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
