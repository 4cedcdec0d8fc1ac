package service

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"token-backend/config"
	"token-backend/internal/chain"
	"token-backend/internal/metrics"
	"token-backend/log"
	"token-backend/utils"

	"github.com/shopspring/decimal"
)

// BalanceMonitor 检查服务钱包的 gas 余额，低于阈值时告警
type BalanceMonitor struct {
	svc       *TokenService
	threshold *big.Int
	email     config.EmailConfig
	metrics   *metrics.Metrics
	timeout   time.Duration
	send      func(conf config.EmailConfig, subject string, data []byte, html bool) error
}

func NewBalanceMonitor(svc *TokenService, threshold string, email config.EmailConfig, m *metrics.Metrics) (*BalanceMonitor, error) {
	minBalance, err := chain.ParseEther(threshold)
	if err != nil {
		return nil, fmt.Errorf("invalid min gas balance %q: %w", threshold, err)
	}
	return &BalanceMonitor{
		svc:       svc,
		threshold: minBalance,
		email:     email,
		metrics:   m,
		timeout:   30 * time.Second,
		send:      utils.SendEmail,
	}, nil
}

// Check returns the current balance and whether it is below the threshold.
func (b *BalanceMonitor) Check(ctx context.Context) (bool, *big.Int, error) {
	balance, err := b.svc.SignerBalance(ctx)
	if err != nil {
		return false, nil, err
	}
	ether, _ := decimal.NewFromBigInt(balance, -chain.TokenDecimals).Float64()
	b.metrics.SetSignerBalance(ether)
	return balance.Cmp(b.threshold) < 0, balance, nil
}

// Monitor is the scheduled job; errors are logged.
func (b *BalanceMonitor) Monitor() {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	low, balance, err := b.Check(ctx)
	if err != nil {
		log.Logger.Sugar().Error("balance monitor: ", err)
		return
	}
	address, _ := b.svc.GetServerWalletAddress()
	if !low {
		log.Logger.Sugar().Debugf("balance monitor: %s has %s", address.Hex(), chain.FormatEther(balance))
		return
	}

	log.Logger.Sugar().Warnf("balance monitor: %s has %s, below %s", address.Hex(), chain.FormatEther(balance), chain.FormatEther(b.threshold))
	if !utils.EmailConfigured(b.email) {
		return
	}
	body := fmt.Sprintf("Server wallet %s on chain %d has %s native balance, below the alert threshold %s. Mints will fail once it runs out of gas.",
		address.Hex(), b.svc.chainID, chain.FormatEther(balance), chain.FormatEther(b.threshold))
	if err := b.send(b.email, "", []byte(body), false); err != nil {
		log.Logger.Sugar().Error("send balance alert email failed: ", err)
	}
}
