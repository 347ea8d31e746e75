package session

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// AccountChange reports that the wallet's active account moved.
type AccountChange struct {
	From  common.Address
	To    common.Address // zero when the wallet disconnected
	State State          // session state after the change was applied
}

// WatchAccounts polls eth_accounts every interval and applies account
// changes to the session, rebinding the contract handle as configured.
// Each applied change is sent on the returned channel, which is closed when
// ctx is done. Polling errors are skipped.
func (s *Session) WatchAccounts(ctx context.Context, interval time.Duration) <-chan AccountChange {
	if interval <= 0 {
		interval = s.cfg.PollInterval
	}
	out := make(chan AccountChange)
	go func() {
		defer close(out)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			c, err := s.client()
			if err != nil {
				continue
			}
			accounts, err := c.Accounts(ctx)
			if err != nil {
				continue
			}
			var next common.Address
			if len(accounts) > 0 {
				next = accounts[0]
			}
			prev, _ := s.Account()
			if next == prev {
				continue
			}
			s.SetAccount(next)

			select {
			case out <- AccountChange{From: prev, To: next, State: s.State()}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
