package worker

import (
	"sync"

	"token-backend/log"

	"github.com/ethereum/go-ethereum/core/types"
)

// Start worker池处理日志。jobs 关闭后所有 worker 退出，返回的 WaitGroup 随之完成。
// handler 的 panic 只影响当前日志。
func Start(n int, jobs <-chan types.Log, handler func(types.Log)) *sync.WaitGroup {
	if n <= 0 {
		n = 1
	}
	wg := &sync.WaitGroup{}
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				handle(handler, j)
			}
		}()
	}
	return wg
}

func handle(handler func(types.Log), l types.Log) {
	defer func() {
		if r := recover(); r != nil {
			log.Logger.Sugar().Errorf("handle log %s:%d panic: %v", l.TxHash.Hex(), l.Index, r)
		}
	}()
	handler(l)
}
