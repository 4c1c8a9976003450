package core

import (
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"synnergy-network/internal/consensus/mst"
	"synnergy-network/internal/consensus/model"
)

const mstProtocolID = "synnergy-mst/1"

type mstStateWire struct {
	Batches []model.Batch `json:"batches"`
}

// MstTransport adapts PeerManager into mst.PeerTransport, gossiping state
// diffs over a dedicated pubsub topic the way Replicator gossips block
// inventory on protocolID.
type MstTransport struct {
	pm  PeerManager
	log *logrus.Logger
}

// NewMstTransport wires the MST processor's outbound gossip onto pm.
func NewMstTransport(pm PeerManager, log *logrus.Logger) *MstTransport {
	return &MstTransport{pm: pm, log: log}
}

// SendState implements mst.PeerTransport.
func (t *MstTransport) SendState(peer string, diff *mst.State) bool {
	payload, err := json.Marshal(mstStateWire{Batches: diff.Batches()})
	if err != nil {
		t.log.WithFields(logrus.Fields{"peer": peer, "error": err}).Warn("mst transport: encode diff failed")
		return false
	}
	if err := t.pm.SendAsync(peer, mstProtocolID, 0, payload); err != nil {
		t.log.WithFields(logrus.Fields{"peer": peer, "error": err}).Debug("mst transport: send failed")
		return false
	}
	return true
}

// DecodeState decodes a peer's inbound MST wire message into batches.
func DecodeState(payload []byte) ([]model.Batch, error) {
	var wire mstStateWire
	if err := json.Unmarshal(payload, &wire); err != nil {
		return nil, err
	}
	return wire.Batches, nil
}

// PeerSampleStrategy implements mst.PropagationStrategy by sampling n
// peers from the PeerManager at every tick, mirroring Replicator's fanout
// sampling for block inventory.
type PeerSampleStrategy struct {
	pm PeerManager
	n  int
}

// NewPeerSampleStrategy builds a propagation strategy sampling up to n
// peers per tick.
func NewPeerSampleStrategy(pm PeerManager, n int) *PeerSampleStrategy {
	return &PeerSampleStrategy{pm: pm, n: n}
}

// EmitPeerSet implements mst.PropagationStrategy.
func (s *PeerSampleStrategy) EmitPeerSet() []string { return s.pm.Sample(s.n) }

// WallClock implements mst.TimeProvider with the system clock.
type WallClock struct{}

// NowMillis implements mst.TimeProvider.
func (WallClock) NowMillis() uint64 { return uint64(time.Now().UnixMilli()) }

// RunMstListener wires the processor's inbound path to the peer manager's
// subscription channel until the channel closes. Callers run it in its
// own goroutine, mirroring Replicator.readLoop.
func RunMstListener(pm PeerManager, processor *mst.Processor) {
	sub := pm.Subscribe(mstProtocolID)
	for msg := range sub {
		batches, err := DecodeState(msg.Payload)
		if err != nil {
			continue
		}
		processor.OnNewState(msg.PeerID, batches)
	}
}
