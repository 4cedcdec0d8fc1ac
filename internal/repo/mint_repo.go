package repo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"
)

const (
	MintStatusPending = "pending"
	MintStatusSuccess = "success"
	MintStatusFailed  = "failed"
)

// DefaultMintListLimit caps ListMints when no limit is given.
const DefaultMintListLimit = 50

// MintRecord 一次 mint 提交记录
type MintRecord struct {
	Id          uint64    `json:"-" gorm:"column:id;primaryKey;autoIncrement"`
	ChainId     int64     `json:"chain_id" gorm:"column:chain_id"`
	Recipient   string    `json:"recipient" gorm:"column:recipient;size:42;index"`
	Amount      string    `json:"amount" gorm:"column:amount;size:78"`
	TxHash      string    `json:"tx_hash" gorm:"column:tx_hash;size:66;uniqueIndex"`
	Status      string    `json:"status" gorm:"column:status;size:16"`
	BlockNumber uint64    `json:"block_number" gorm:"column:block_number"`
	GasUsed     uint64    `json:"gas_used" gorm:"column:gas_used"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (MintRecord) TableName() string {
	return "mint_records"
}

// MintStore persists mint submissions and their outcome.
type MintStore interface {
	SaveMint(ctx context.Context, r *MintRecord) error
	// UpdateMint sets the outcome of the mint identified by txHash.
	UpdateMint(ctx context.Context, txHash, status string, block, gasUsed uint64) error
	// ListMints returns the newest records first, filtered by recipient when set.
	ListMints(ctx context.Context, recipient string, limit int) ([]MintRecord, error)
}

func normLimit(limit int) int {
	if limit <= 0 || limit > DefaultMintListLimit {
		return DefaultMintListLimit
	}
	return limit
}

// InitTable 自动同步表结构
func InitTable(gdb *gorm.DB) error {
	return gdb.AutoMigrate(&MintRecord{})
}

type GormMintStore struct {
	db *gorm.DB
}

func NewGormMintStore(gdb *gorm.DB) *GormMintStore {
	return &GormMintStore{db: gdb}
}

func (s *GormMintStore) SaveMint(ctx context.Context, r *MintRecord) error {
	return s.db.WithContext(ctx).Create(r).Error
}

func (s *GormMintStore) UpdateMint(ctx context.Context, txHash, status string, block, gasUsed uint64) error {
	return s.db.WithContext(ctx).Model(&MintRecord{}).
		Where("tx_hash = ?", txHash).
		Updates(map[string]interface{}{
			"status":       status,
			"block_number": block,
			"gas_used":     gasUsed,
		}).Error
}

func (s *GormMintStore) ListMints(ctx context.Context, recipient string, limit int) ([]MintRecord, error) {
	var list []MintRecord
	q := s.db.WithContext(ctx).Model(&MintRecord{})
	if recipient != "" {
		q = q.Where("recipient = ?", strings.ToLower(recipient))
	}
	err := q.Order("id desc").Limit(normLimit(limit)).Find(&list).Error
	return list, err
}

// MemoryMintStore 未配置数据库时使用，进程退出即丢失
type MemoryMintStore struct {
	mu      sync.RWMutex
	records []MintRecord
	now     func() time.Time
}

func NewMemoryMintStore() *MemoryMintStore {
	return &MemoryMintStore{now: time.Now}
}

func (s *MemoryMintStore) SaveMint(_ context.Context, r *MintRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.Id = uint64(len(s.records) + 1)
	r.CreatedAt = s.now()
	r.UpdatedAt = r.CreatedAt
	s.records = append(s.records, *r)
	return nil
}

func (s *MemoryMintStore) UpdateMint(_ context.Context, txHash, status string, block, gasUsed uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].TxHash == txHash {
			s.records[i].Status = status
			s.records[i].BlockNumber = block
			s.records[i].GasUsed = gasUsed
			s.records[i].UpdatedAt = s.now()
		}
	}
	return nil
}

func (s *MemoryMintStore) ListMints(_ context.Context, recipient string, limit int) ([]MintRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recipient = strings.ToLower(recipient)
	list := make([]MintRecord, 0)
	for _, r := range s.records {
		if recipient == "" || r.Recipient == recipient {
			list = append(list, r)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Id > list[j].Id })
	if n := normLimit(limit); len(list) > n {
		list = list[:n]
	}
	return list, nil
}
