package stats

import (
	"sync"

	"github.com/axiomhq/hyperloglog"
	"github.com/ethereum/go-ethereum/common"
)

// Snapshot is served by the mint-stats endpoint.
type Snapshot struct {
	MintsObserved    uint64 `json:"mints_observed"`
	UniqueRecipients uint64 `json:"unique_recipients"`
}

// Recipients 统计观察到的 mint 次数和去重接收地址数（HyperLogLog 估算）
type Recipients struct {
	mu     sync.Mutex
	sketch *hyperloglog.Sketch
	mints  uint64
}

func NewRecipients() *Recipients {
	return &Recipients{sketch: hyperloglog.New14()}
}

func (r *Recipients) Observe(to common.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sketch.Insert(to.Bytes())
	r.mints++
}

func (r *Recipients) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Snapshot{
		MintsObserved:    r.mints,
		UniqueRecipients: r.sketch.Estimate(),
	}
}
