package radio

import (
	"sync"
	"sync/atomic"
)

// Delivers completions to the registered handler from one goroutine, in order.
// At most one RxDone is pending at a time; more frames are signalled again after ReadData.
type notifier struct {
	mutex     sync.Mutex
	handler   func(Completion)
	events    chan Completion
	rxPending atomic.Bool
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

func newNotifier() (n *notifier) {
	n = &notifier{
		events: make(chan Completion, 4),
		done:   make(chan struct{}),
	}
	n.wg.Add(1)
	go n.run()
	return
}

func (n *notifier) setHandler(handler func(Completion)) {
	n.mutex.Lock()
	n.handler = handler
	n.mutex.Unlock()
}

func (n *notifier) txDone() {
	select {
	case n.events <- TxDone:
	case <-n.done:
	}
}

func (n *notifier) rxDone() {
	if !n.rxPending.CompareAndSwap(false, true) {
		return
	}
	select {
	case n.events <- RxDone:
	case <-n.done:
	}
}

func (n *notifier) run() {
	defer n.wg.Done()
	for {
		select {
		case <-n.done:
			return
		case event := <-n.events:
			if event == RxDone {
				n.rxPending.Store(false)
			}
			n.mutex.Lock()
			handler := n.handler
			n.mutex.Unlock()
			if handler != nil {
				handler(event)
			}
		}
	}
}

// Must not be called from inside the handler
func (n *notifier) close() {
	n.closeOnce.Do(func() {
		close(n.done)
		n.wg.Wait()
	})
}
