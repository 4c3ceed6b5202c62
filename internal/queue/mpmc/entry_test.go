package mpmc

import (
	"context"
	"loracom/internal/global"
	"runtime"
	"sync"
	"testing"
	"time"
)

func intPtr(v int) *int { return &v }

func TestQueue_PushPopScenarios(t *testing.T) {
	type op struct {
		push *int // nil means pop
		want *int
	}

	tests := []struct {
		name     string
		capacity int
		ops      []op
	}{
		{
			name:     "SinglePushPop",
			capacity: 32,
			ops: []op{
				{push: intPtr(10)},
				{want: intPtr(10)},
			},
		},
		{
			name:     "DeepWrap",
			capacity: 4,
			ops: []op{
				{push: intPtr(0)},
				{push: intPtr(1)},
				{push: intPtr(2)},
				{push: intPtr(3)},
				{want: intPtr(0)},
				{want: intPtr(1)},
				{push: intPtr(100)},
				{push: intPtr(200)},
				{want: intPtr(2)},
				{want: intPtr(3)},
				{want: intPtr(100)},
				{want: intPtr(200)},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := New[int]([]string{global.NSTest}, tt.capacity, 0)
			if err != nil {
				t.Fatalf("expected no error in creating queue, but got '%v'", err)
			}

			for i, op := range tt.ops {
				if op.push != nil {
					if !q.Push(*op.push) {
						t.Fatalf("op %d: push(%d) failed", i, *op.push)
					}
					continue
				}
				got, ok := q.Pop(context.Background())
				if !ok {
					t.Fatalf("op %d: pop failed", i)
				}
				if got != *op.want {
					t.Fatalf("op %d: want %d, got %d", i, *op.want, got)
				}
			}
			if q.Len() != 0 {
				t.Errorf("expected empty queue at end, depth %d", q.Len())
			}
		})
	}
}

func TestNew_Capacity(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		expectCap int
		expectErr bool
	}{
		{"power of two kept", 8, 8, false},
		{"rounded up", 5, 8, false},
		{"minimum", 2, 2, false},
		{"too small", 1, 0, true},
		{"zero", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := New[int](nil, tt.requested, 0)
			if tt.expectErr {
				if err == nil {
					t.Fatalf("expected error, got queue of size %d", q.Size)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if q.Size != tt.expectCap {
				t.Errorf("expected capacity %d, got %d", tt.expectCap, q.Size)
			}
			if q.Namespace[len(q.Namespace)-1] != global.NSQueue {
				t.Errorf("expected queue namespace suffix, got %v", q.Namespace)
			}
		})
	}
}

func TestClampCapacity(t *testing.T) {
	// Items larger than any host's memory share collapse to the minimum
	if got := clampCapacity(1024, 1<<62); got != 2 {
		t.Errorf("expected clamp to 2, got %d", got)
	}
	if got := clampCapacity(64, 0); got != 64 {
		t.Errorf("expected no clamp without item size, got %d", got)
	}
	if got := clampCapacity(64, 1); got != 64 {
		t.Errorf("expected tiny items unclamped, got %d", got)
	}
}

func TestPush_Full(t *testing.T) {
	q, err := New[int](nil, 2, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q.Push(1)
	q.Push(2)
	if q.Push(3) {
		t.Fatalf("expected push into full queue to fail")
	}
	if q.Metrics.PushFull.Load() != 1 {
		t.Errorf("expected one full push recorded, got %d", q.Metrics.PushFull.Load())
	}
	if _, ok := q.TryPop(); !ok {
		t.Fatalf("expected pop to succeed")
	}
	if !q.Push(3) {
		t.Fatalf("expected push after space freed to succeed")
	}
}

func TestPop_ContextCancel(t *testing.T) {
	q, err := New[int](nil, 4, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, ok := q.Pop(ctx)
	if ok {
		t.Fatalf("expected pop on empty queue to fail on cancel")
	}
	if time.Since(start) < 15*time.Millisecond {
		t.Errorf("pop returned before context deadline")
	}
	if _, ok := q.TryPop(); ok {
		t.Errorf("expected TryPop on empty queue to fail")
	}
}

func TestPop_WakesOnPush(t *testing.T) {
	q, err := New[string](nil, 4, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result := make(chan string, 1)
	go func() {
		value, _ := q.Pop(context.Background())
		result <- value
	}()

	time.Sleep(10 * time.Millisecond)
	q.Push("3 1")

	select {
	case got := <-result:
		if got != "3 1" {
			t.Errorf("expected pushed value, got %q", got)
		}
	case <-time.After(time.Second):
		t.Fatalf("blocked consumer was never woken")
	}
}

func TestQueue_Concurrency(t *testing.T) {
	tests := []struct {
		name      string
		capacity  int
		producers int
		consumers int
		perWorker int
	}{
		{"SingleEach", 8, 1, 1, 500},
		{"HighContention", 16, 6, 6, 1000},
		{"FewConsumers", 64, 8, 2, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := New[int](nil, tt.capacity, 0)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			total := tt.producers * tt.perWorker
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			var produced sync.WaitGroup
			for p := 0; p < tt.producers; p++ {
				produced.Add(1)
				go func() {
					defer produced.Done()
					for j := 0; j < tt.perWorker; j++ {
						for !q.Push(j) {
							runtime.Gosched()
						}
					}
				}()
			}

			var mutex sync.Mutex
			consumed := 0
			var consumers sync.WaitGroup
			for c := 0; c < tt.consumers; c++ {
				consumers.Add(1)
				go func() {
					defer consumers.Done()
					for {
						mutex.Lock()
						if consumed >= total {
							mutex.Unlock()
							return
						}
						mutex.Unlock()

						popCtx, popCancel := context.WithTimeout(ctx, 50*time.Millisecond)
						_, ok := q.Pop(popCtx)
						popCancel()
						if ok {
							mutex.Lock()
							consumed++
							mutex.Unlock()
						} else if ctx.Err() != nil {
							return
						}
					}
				}()
			}

			produced.Wait()
			consumers.Wait()

			if consumed != total {
				t.Fatalf("expected %d items consumed, got %d", total, consumed)
			}
			if q.Len() != 0 {
				t.Errorf("expected drained queue, depth %d", q.Len())
			}
		})
	}
}

func TestCollectMetrics(t *testing.T) {
	q, err := New[int]([]string{global.NSNode, global.NSInbox}, 4, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 6; i++ {
		q.Push(i)
	}
	q.TryPop()

	values := make(map[string]uint64)
	for _, metric := range q.CollectMetrics(time.Second) {
		values[metric.Name] = metric.Value.Raw.(uint64)
		if metric.Namespace[0] != global.NSNode {
			t.Errorf("unexpected namespace %v", metric.Namespace)
		}
	}

	expect := map[string]uint64{
		"depth":         3,
		"capacity":      4,
		"push_attempts": 6,
		"push_full":     2,
		"pop_success":   1,
	}
	for name, want := range expect {
		if values[name] != want {
			t.Errorf("%s: expected %d, got %d", name, want, values[name])
		}
	}

	// Counters reset each collection
	for _, metric := range q.CollectMetrics(time.Second) {
		if metric.Name == "push_attempts" && metric.Value.Raw.(uint64) != 0 {
			t.Errorf("expected counter reset, got %v", metric.Value.Raw)
		}
	}
}
