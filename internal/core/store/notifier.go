package store

import (
	"context"
	"sync"

	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/pkg/common"

	"go.uber.org/zap"
)

type lister func(ctx context.Context, collection string) ([]Document, error)

// notifier fans collection snapshots out to listeners. Deliveries for one
// collection are serialised so a listener never sees an older set after a newer one.
type notifier struct {
	list lister

	mu        sync.Mutex
	next      int
	listeners map[string]map[int]Listener
	delivery  map[string]*sync.Mutex
}

func newNotifier(list lister) *notifier {
	return &notifier{
		list:      list,
		listeners: make(map[string]map[int]Listener),
		delivery:  make(map[string]*sync.Mutex),
	}
}

func (n *notifier) deliveryLock(collection string) *sync.Mutex {
	n.mu.Lock()
	defer n.mu.Unlock()
	lock, ok := n.delivery[collection]
	if !ok {
		lock = &sync.Mutex{}
		n.delivery[collection] = lock
	}
	return lock
}

func (n *notifier) subscribe(ctx context.Context, collection string, fn Listener) (Unsubscribe, error) {
	lock := n.deliveryLock(collection)
	lock.Lock()
	defer lock.Unlock()

	docs, err := n.list(ctx, collection)
	if err != nil {
		return nil, err
	}

	n.mu.Lock()
	id := n.next
	n.next++
	if n.listeners[collection] == nil {
		n.listeners[collection] = make(map[int]Listener)
	}
	n.listeners[collection][id] = fn
	n.mu.Unlock()

	fn(docs)

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.listeners[collection], id)
			n.mu.Unlock()
		})
	}, nil
}

func (n *notifier) snapshotListeners(collection string) []Listener {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Listener, 0, len(n.listeners[collection]))
	for _, fn := range n.listeners[collection] {
		out = append(out, fn)
	}
	return out
}

// notify re-reads collection and pushes it to every listener. The write has
// already committed, so the refresh ignores cancellation of the writer's ctx.
func (n *notifier) notify(ctx context.Context, collection string) {
	if len(n.snapshotListeners(collection)) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)

	lock := n.deliveryLock(collection)
	lock.Lock()
	defer lock.Unlock()

	docs, err := n.list(ctx, collection)
	if err != nil {
		common.LogWarn("live query refresh failed",
			zap.String("collection", collection),
			zap.Error(err),
		)
		return
	}
	for _, fn := range n.snapshotListeners(collection) {
		fn(docs)
	}
}

func (n *notifier) clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = make(map[string]map[int]Listener)
}
