package burstnet

// routing.go implements static routing on a node: a route table built
// once at setup from a topology snapshot, and the forwarding of
// arriving packets by that table.  Two computation modes exist.  In
// distributed mode every node computes its own table.  In centralized
// mode only the designated root computes; it serializes its entries
// into a route listing and broadcasts that listing once over every
// egress link as an administrative message

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/iti/evt/evtm"
)

// the address of the node that computes routes in centralized mode
const centralRootAddr = 0

// A RouteUpdate is the administrative message broadcast by the root
// in centralized mode.  Routes holds "dest:egress" pairs separated by
// commas.  Receivers record its passage and discard it; nothing in
// this scope populates a table from it
type RouteUpdate struct {
	Routes string
}

// A RouterNode is the forwarding element of one node.  The route
// table maps a destination address to the egress index the packet
// leaves through; an address absent from the table is unreachable
type RouterNode struct {
	name      string
	id        int
	nodeID    int
	myAddress int

	centralRouting bool
	rtable         map[int]int
	egress         []egressLink

	numForwarded int
	numDropped   int

	sched eventScheduler
	stats *StatManager
	trace *TraceManager

	// local delivery output, pointed at the node's application
	local func(*Packet)
}

// createRouterNode is a constructor.  The route table is empty until
// buildRouteTable runs during experiment assembly
func createRouterNode(name string, id, nodeID, addr int, central bool,
	egress []egressLink, sched eventScheduler, stats *StatManager, trace *TraceManager) *RouterNode {

	rtr := new(RouterNode)
	rtr.name = name
	rtr.id = id
	rtr.nodeID = nodeID
	rtr.myAddress = addr
	rtr.centralRouting = central
	rtr.rtable = make(map[int]int)
	rtr.egress = egress
	rtr.sched = sched
	rtr.stats = stats
	rtr.trace = trace

	return rtr
}

// routeEntries computes this node's (destination address, egress
// index) pairs over the snapshot: for every other node in the graph a
// minimum-hop path is searched, unreachable destinations are skipped,
// and the egress is the link leaving this node on the path's first hop
func (rtr *RouterNode) routeEntries(topo *Topology, addrOfID map[int]int) map[int]int {
	entries := make(map[int]int)

	for _, dstID := range topo.nodes() {
		if dstID == rtr.nodeID {
			continue
		}

		hopID, found := topo.firstHop(rtr.nodeID, dstID)
		if !found {
			// no path to this destination; leave it unreachable
			continue
		}

		port, found := topo.egressTo(rtr.nodeID, hopID)
		if !found {
			panic(fmt.Errorf("node %s has no egress toward first hop %d", rtr.name, hopID))
		}

		entries[addrOfID[dstID]] = port
	}

	return entries
}

// buildRouteTable runs the setup computation for this node.  In
// distributed mode (or for a centralized non-root) the node's own
// table is filled; the centralized root additionally serializes its
// entries and broadcasts them on every egress link
func (rtr *RouterNode) buildRouteTable(topo *Topology, addrOfID map[int]int) {
	if rtr.centralRouting && rtr.myAddress != centralRootAddr {
		// a centralized non-root computes nothing for itself
		return
	}

	entries := rtr.routeEntries(topo, addrOfID)
	rtr.rtable = entries

	for destAddr, port := range entries {
		rtr.trace.AddTrace(rtr.sched.now(), rtr.id, 0, "route",
			fmt.Sprintf("towards address %d egress index is %d", destAddr, port))
	}

	if rtr.centralRouting {
		update := &RouteUpdate{Routes: serializeRoutes(entries)}
		for _, link := range rtr.egress {
			rtr.sendOnLink(update, link.port)
		}
	}
}

// serializeRoutes renders route entries as "dest:egress" pairs joined
// by commas, in increasing destination order
func serializeRoutes(entries map[int]int) string {
	destAddrs := make([]int, 0, len(entries))
	for destAddr := range entries {
		destAddrs = append(destAddrs, destAddr)
	}
	sort.Ints(destAddrs)

	pairs := make([]string, 0, len(destAddrs))
	for _, destAddr := range destAddrs {
		pairs = append(pairs, strconv.Itoa(destAddr)+":"+strconv.Itoa(entries[destAddr]))
	}

	return strings.Join(pairs, ",")
}

// routerArrival is the event handler for everything arriving at a
// router over a link: packets in transit and administrative messages
func routerArrival(evtMgr *evtm.EventManager, context any, data any) any {
	rtr := context.(*RouterNode)

	switch msg := data.(type) {
	case *Packet:
		rtr.processPacket(msg)
	case *RouteUpdate:
		rtr.processRouteUpdate(msg)
	default:
		panic(fmt.Errorf("router %s received unrecognized message %T", rtr.name, msg))
	}

	return nil
}

// processPacket applies the forwarding decision to one packet.  Local
// delivery wins over any table entry for this node's own address; an
// address absent from the table drops the packet with a metric carrying
// its byte length; otherwise the hop count is incremented and the
// packet leaves through the table's egress index
func (rtr *RouterNode) processPacket(pk *Packet) {
	now := rtr.sched.now()

	if pk.DestAddr == rtr.myAddress {
		rtr.trace.AddTrace(now, rtr.id, pk.MsgID, "deliver", pk.Name)
		rtr.stats.Measure(now, statOutputIf, -1.0)
		rtr.local(pk)
		return
	}

	port, present := rtr.rtable[pk.DestAddr]
	if !present {
		rtr.trace.AddTrace(now, rtr.id, pk.MsgID, "drop",
			fmt.Sprintf("address %d unreachable, discarding %s", pk.DestAddr, pk.Name))
		rtr.stats.Measure(now, statDrop, float64(pk.ByteLength))
		rtr.numDropped += 1
		return
	}

	pk.HopCount += 1
	rtr.numForwarded += 1
	rtr.trace.AddTrace(now, rtr.id, pk.MsgID, "forward",
		fmt.Sprintf("%s on egress index %d", pk.Name, port))
	rtr.stats.Measure(now, statOutputIf, float64(port))

	rtr.sendOnLink(pk, port)
}

// processRouteUpdate records the arrival of the centralized root's
// broadcast.  Consumption of the listing by peers is outside this
// scope, so the message is discarded after tracing
func (rtr *RouterNode) processRouteUpdate(msg *RouteUpdate) {
	rtr.trace.AddTrace(rtr.sched.now(), rtr.id, 0, "routeUpdate", msg.Routes)
}

// sendOnLink schedules the arrival of a message at the router on the
// far side of the egress link with the given index.  Ownership of the
// message transfers with the call
func (rtr *RouterNode) sendOnLink(msg any, port int) {
	if port < 0 || port >= len(rtr.egress) {
		panic(fmt.Errorf("router %s has no egress index %d", rtr.name, port))
	}

	link := rtr.egress[port]
	peer, present := routerByID[link.peerID]
	if !present {
		panic(fmt.Errorf("router %s egress %d points at unknown node %d", rtr.name, port, link.peerID))
	}

	rtr.sched.schedule(peer, msg, routerArrival, link.latency)
}

// Status returns a one line human-readable summary
func (rtr *RouterNode) Status() string {
	return fmt.Sprintf("%s routes:%d forwarded:%d dropped:%d",
		rtr.name, len(rtr.rtable), rtr.numForwarded, rtr.numDropped)
}
