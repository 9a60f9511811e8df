package burstnet

// packet.go holds the Packet structure passed between nodes and the
// factory that builds sequence-numbered packets for the bursty source

import (
	"fmt"
)

// A Packet is the unit of traffic the simulation moves between nodes.
// HopCount is incremented by each forwarding node; CreationTime is
// virtual time at build, read at delivery for the end-to-end delay
type Packet struct {
	Name         string
	ByteLength   int
	SrcAddr      int
	DestAddr     int
	HopCount     int
	CreationTime float64
	MsgID        int
}

// packetFactory builds the packets a bursty source emits.  The
// sequence counter increments monotonically and never resets during a
// run, and the destination of each packet is drawn uniformly from the
// configured address pool
type packetFactory struct {
	srcAddr  int
	destPool []int
	pktLen   *durationSampler
	counter  int
	rng      randStream
}

// createPacketFactory is a constructor.  An empty destination pool is
// a configuration error the rest of the run cannot absorb
func createPacketFactory(srcAddr int, destPool []int, pktLen *durationSampler, rng randStream) *packetFactory {
	if len(destPool) == 0 {
		panic(fmt.Errorf("empty destination pool for source %d", srcAddr))
	}

	pf := new(packetFactory)
	pf.srcAddr = srcAddr
	pf.destPool = destPool
	pf.pktLen = pktLen
	pf.rng = rng
	return pf
}

// build creates the next packet, stamped with the current virtual
// time.  No side effect beyond advancing the sequence counter
func (pf *packetFactory) build(now float64) *Packet {
	destAddr := pf.destPool[pf.rng.RandInt(0, len(pf.destPool)-1)]

	pk := new(Packet)
	pk.Name = fmt.Sprintf("pk-%d-to-%d-#%d", pf.srcAddr, destAddr, pf.counter)
	pk.ByteLength = int(pf.pktLen.draw(pf.rng))
	pk.SrcAddr = pf.srcAddr
	pk.DestAddr = destAddr
	pk.CreationTime = now
	pk.MsgID = nxtID()
	pf.counter += 1

	return pk
}
