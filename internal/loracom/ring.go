package loracom

// Fixed capacity FIFO of outbound messages.
// Resolved entries keep their slot until every entry ahead of them has resolved.
type sendRing struct {
	slots    []QueuedMessage
	resolved []bool
	head     int
	tail     int
	count    int
}

func newSendRing(capacity int) (ring sendRing) {
	ring = sendRing{
		slots:    make([]QueuedMessage, capacity),
		resolved: make([]bool, capacity),
	}
	return
}

func (ring *sendRing) full() (full bool) {
	full = ring.count == len(ring.slots)
	return
}

func (ring *sendRing) push(entry QueuedMessage) {
	ring.slots[ring.tail] = entry
	ring.resolved[ring.tail] = false
	ring.tail = (ring.tail + 1) % len(ring.slots)
	ring.count++
}

// Slot index of the i-th live entry counting from head
func (ring *sendRing) slot(i int) (index int) {
	index = (ring.head + i) % len(ring.slots)
	return
}

// Slot index of the unresolved entry with seq, or -1
func (ring *sendRing) find(seq uint8) (index int) {
	for i := 0; i < ring.count; i++ {
		index = ring.slot(i)
		if !ring.resolved[index] && ring.slots[index].Msg.SequenceID == seq {
			return
		}
	}
	index = -1
	return
}

// Advances head over the resolved prefix
func (ring *sendRing) compact() (reclaimed int) {
	for ring.count > 0 && ring.resolved[ring.head] {
		ring.slots[ring.head] = QueuedMessage{}
		ring.resolved[ring.head] = false
		ring.head = (ring.head + 1) % len(ring.slots)
		ring.count--
		reclaimed++
	}
	return
}

// Unresolved entries in queue order
func (ring *sendRing) pending() (entries []QueuedMessage) {
	for i := 0; i < ring.count; i++ {
		index := ring.slot(i)
		if ring.resolved[index] {
			continue
		}
		entries = append(entries, ring.slots[index])
	}
	return
}

// Most recent terminal outcomes. A full ring overwrites its oldest entry.
type doneRing struct {
	slots []QueuedMessage
	next  int
	count int
}

func newDoneRing(capacity int) (ring doneRing) {
	ring = doneRing{slots: make([]QueuedMessage, capacity)}
	return
}

func (ring *doneRing) push(entry QueuedMessage) {
	ring.slots[ring.next] = entry
	ring.next = (ring.next + 1) % len(ring.slots)
	if ring.count < len(ring.slots) {
		ring.count++
	}
}

// Newest entry with seq
func (ring *doneRing) find(seq uint8) (entry QueuedMessage, found bool) {
	size := len(ring.slots)
	for i := 1; i <= ring.count; i++ {
		candidate := ring.slots[(ring.next-i+size)%size]
		if candidate.Msg.SequenceID == seq {
			entry = candidate
			found = true
			return
		}
	}
	return
}

// Entries oldest first
func (ring *doneRing) entries() (entries []QueuedMessage) {
	size := len(ring.slots)
	entries = make([]QueuedMessage, 0, ring.count)
	for i := ring.count; i >= 1; i-- {
		entries = append(entries, ring.slots[(ring.next-i+size)%size])
	}
	return
}
