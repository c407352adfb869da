package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/tranvictor/kiosk/common"
)

const (
	DefaultPollInterval = 2 * time.Second
	// DefaultLostAfter is how long a hash no node has ever seen is polled
	// before it is reported lost.
	DefaultLostAfter = 2 * time.Minute
)

type TxInfoReader interface {
	TxInfoFromHash(ctx context.Context, hash string) (common.TxInfo, error)
}

type TxMonitor struct {
	reader       TxInfoReader
	pollInterval time.Duration
	lostAfter    time.Duration
}

func NewTxMonitor(r TxInfoReader, pollInterval, lostAfter time.Duration) *TxMonitor {
	return &TxMonitor{
		reader:       r,
		pollInterval: pollInterval,
		lostAfter:    lostAfter,
	}
}

func (m *TxMonitor) periodicCheck(ctx context.Context, hash string, info chan<- common.TxInfo) {
	defer close(info)
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()
	startTime := time.Now()
	isOnNode := false
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			txinfo, _ := m.reader.TxInfoFromHash(ctx, hash)
			switch txinfo.Status {
			case common.TxStatusError:
				continue
			case common.TxStatusNotFound:
				if t.Sub(startTime) > m.lostAfter && !isOnNode {
					info <- common.TxInfo{Status: common.TxStatusLost}
					return
				}
			case common.TxStatusPending:
				isOnNode = true
			case common.TxStatusDone, common.TxStatusReverted:
				info <- txinfo
				return
			}
		}
	}
}

// MakeWaitChannel returns a channel that receives the final TxInfo of
// hash, or is closed without a value when ctx ends first.
func (m *TxMonitor) MakeWaitChannel(ctx context.Context, hash string) <-chan common.TxInfo {
	result := make(chan common.TxInfo, 1)
	go m.periodicCheck(ctx, hash, result)
	return result
}

// BlockingWait waits until hash is done, reverted or lost.
func (m *TxMonitor) BlockingWait(ctx context.Context, hash string) (common.TxInfo, error) {
	info, ok := <-m.MakeWaitChannel(ctx, hash)
	if !ok {
		return common.TxInfo{Status: common.TxStatusPending}, ctx.Err()
	}
	return info, nil
}

// BlockingWaitForMultipleTxs waits for all hashes at once. Hashes still
// pending when ctx ends are missing from the result.
func (m *TxMonitor) BlockingWaitForMultipleTxs(ctx context.Context, hashes ...string) map[string]common.TxInfo {
	resultMap := sync.Map{}
	wg := sync.WaitGroup{}
	for _, hash := range hashes {
		wg.Add(1)
		go func(hash string) {
			defer wg.Done()
			if info, ok := <-m.MakeWaitChannel(ctx, hash); ok {
				resultMap.Store(hash, info)
			}
		}(hash)
	}
	wg.Wait()
	result := map[string]common.TxInfo{}
	resultMap.Range(func(key, value interface{}) bool {
		result[key.(string)] = value.(common.TxInfo)
		return true
	})
	return result
}
