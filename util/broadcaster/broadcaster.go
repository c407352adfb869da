package broadcaster

import (
	"context"
	"fmt"
	"sync"

	"github.com/tranvictor/kiosk/common"
	"github.com/tranvictor/kiosk/util/reader"
)

// Broadcaster takes a signed tx and try to submit it to all
// nodes that it manages as fast as possible. It returns the tx hash and
// a bool indicating that the tx is accepted by at least 1 node.
type Broadcaster struct {
	nodes map[string]reader.AptosNode
}

func (b *Broadcaster) GetNodes() map[string]reader.AptosNode {
	return b.nodes
}

func (b *Broadcaster) BroadcastTx(ctx context.Context, tx *common.SignedTransaction) (string, bool, error) {
	if len(b.nodes) == 0 {
		return "", false, reader.ErrNoNodes
	}
	names := make([]string, 0, len(b.nodes))
	tasks := make([]func(context.Context) error, 0, len(b.nodes))
	var (
		mu   sync.Mutex
		hash string
	)
	for name, node := range b.nodes {
		names = append(names, name)
		tasks = append(tasks, func(ctx context.Context) error {
			pending, err := node.SubmitTransaction(ctx, tx)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			if hash == "" {
				hash = pending.Hash
			}
			return nil
		})
	}
	errs, failed := common.RunParallel(ctx, tasks...)
	if failed == len(tasks) {
		failures := map[string]error{}
		for i, err := range errs {
			failures[names[i]] = err
		}
		return "", false, fmt.Errorf("couldn't submit tx to any node: %w", makeError(failures))
	}
	return hash, true, nil
}

func NewBroadcaster(nodes map[string]reader.AptosNode) *Broadcaster {
	return &Broadcaster{nodes: nodes}
}
