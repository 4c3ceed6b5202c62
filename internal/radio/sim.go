package radio

import (
	"fmt"
	"sync"
)

// In-memory shared channel connecting simulated radios.
// Every frame one node transmits is offered to every other node.
type Medium struct {
	mutex sync.Mutex
	nodes []*Sim
	sent  [][]byte
	loss  func(from, to *Sim, frame []byte) bool
}

// Simulated radio attached to a Medium
type Sim struct {
	halfDuplex

	Name         string
	medium       *Medium
	rssi         int  // reported to peers receiving from this node
	autoComplete bool // post TxDone as soon as the frame is on the medium

	simMutex  sync.Mutex
	failStart int
	txLog     [][]byte
}

func NewMedium() (medium *Medium) {
	medium = &Medium{}
	return
}

// Attaches a new radio. With autoComplete off, tests release each transmission with CompleteTx.
func (medium *Medium) Attach(name string, family Family, rssi int, autoComplete bool) (sim *Sim, err error) {
	sim = &Sim{
		Name:         name,
		medium:       medium,
		rssi:         rssi,
		autoComplete: autoComplete,
	}
	err = sim.initCore(family)
	if err != nil {
		sim = nil
		err = fmt.Errorf("failed to attach %s: %w", name, err)
		return
	}

	medium.mutex.Lock()
	medium.nodes = append(medium.nodes, sim)
	medium.mutex.Unlock()
	return
}

// Decides per receiver whether a frame is lost. Nil means lossless.
func (medium *Medium) SetLoss(loss func(from, to *Sim, frame []byte) bool) {
	medium.mutex.Lock()
	medium.loss = loss
	medium.mutex.Unlock()
}

// Copy of every frame transmitted on the medium, in order
func (medium *Medium) Sent() (frames [][]byte) {
	medium.mutex.Lock()
	defer medium.mutex.Unlock()
	frames = make([][]byte, len(medium.sent))
	for i, frame := range medium.sent {
		frames[i] = append([]byte(nil), frame...)
	}
	return
}

func (medium *Medium) broadcast(from *Sim, frame []byte) {
	medium.mutex.Lock()
	medium.sent = append(medium.sent, append([]byte(nil), frame...))
	peers := make([]*Sim, 0, len(medium.nodes))
	for _, node := range medium.nodes {
		if node == from {
			continue
		}
		if medium.loss != nil && medium.loss(from, node, frame) {
			continue
		}
		peers = append(peers, node)
	}
	medium.mutex.Unlock()

	for _, peer := range peers {
		peer.deliver(frame, from.rssi)
	}
}

func (medium *Medium) detach(sim *Sim) {
	medium.mutex.Lock()
	defer medium.mutex.Unlock()
	for i, node := range medium.nodes {
		if node == sim {
			medium.nodes = append(medium.nodes[:i], medium.nodes[i+1:]...)
			return
		}
	}
}

func (sim *Sim) StartTransmit(frame []byte) (err error) {
	wasReceiving, err := sim.beginTx(frame)
	if err != nil {
		return
	}

	sim.simMutex.Lock()
	if sim.failStart > 0 {
		sim.failStart--
		sim.simMutex.Unlock()
		sim.abortTx(wasReceiving)
		err = fmt.Errorf("simulated transmit start failure on %s", sim.Name)
		return
	}
	sim.txLog = append(sim.txLog, append([]byte(nil), frame...))
	sim.simMutex.Unlock()

	sim.medium.broadcast(sim, frame)

	if sim.autoComplete {
		sim.notify.txDone()
	}
	return
}

// Releases a pending transmission. Reports false when nothing was transmitting.
func (sim *Sim) CompleteTx() (completed bool) {
	if !sim.isTransmitting() {
		return
	}
	sim.notify.txDone()
	completed = true
	return
}

// Hands a frame directly to this radio as if received with the given RSSI
func (sim *Sim) Inject(frame []byte, rssi int) (accepted bool) {
	accepted = sim.deliver(frame, rssi)
	return
}

// Makes the next count StartTransmit calls fail
func (sim *Sim) FailNextTransmits(count int) {
	sim.simMutex.Lock()
	sim.failStart = count
	sim.simMutex.Unlock()
}

// Frames this radio started transmitting
func (sim *Sim) Transmitted() (frames [][]byte) {
	sim.simMutex.Lock()
	defer sim.simMutex.Unlock()
	frames = make([][]byte, len(sim.txLog))
	for i, frame := range sim.txLog {
		frames[i] = append([]byte(nil), frame...)
	}
	return
}

func (sim *Sim) Transmitting() (transmitting bool) {
	transmitting = sim.isTransmitting()
	return
}

func (sim *Sim) Close() (err error) {
	if sim.closeCore() {
		sim.medium.detach(sim)
	}
	return
}
