// Package burstnet simulates bursty traffic sources over a statically
// routed packet network inside a discrete event simulation.  Each
// simulated node couples a bursty application, which alternates
// between sleeping and bursting phases and emits packets while
// bursting, with a router that forwards packets by a table computed
// once at setup from shortest paths over the topology.
package burstnet

// burstnet.go has the code that assembles the system data structures
// for an experiment: reading the input files, creating the nodes and
// their applications and routers, wiring the links, building the
// route tables and scheduling the start of every source

import (
	"fmt"
	"path"
	"sort"

	"github.com/iti/evt/evtm"
	"github.com/iti/rngstream"
)

// metric series names recognized by the statistics sink
const (
	statEndToEndDelay = "endToEndDelay"
	statHopCount      = "hopCount"
	statSourceAddress = "sourceAddress"
	statDrop          = "drop"
	statOutputIf      = "outputIf"
)

// A Node is one simulated network node: identity, the application
// and router that live on it, its egress links in port order, and its
// private random number stream
type Node struct {
	name   string
	id     int
	addr   int
	ntype  string
	egress []egressLink
	app    *BurstApp
	rtr    *RouterNode
	rng    *rngstream.RngStream
}

// global variables for finding things given an id, or a name
var nodeByID map[int]*Node
var nodeByName map[string]*Node
var routerByID map[int]*RouterNode
var appByName map[string]*BurstApp

// addrOfNodeID maps a node id to the address packets are routed by
var addrOfNodeID map[int]int

// utility for generating unique integer ids on demand
var numIDs int = 0

// nxtID creates an id unique among the objects created within the module
func nxtID() int {
	numIDs += 1
	return numIDs
}

// GetExperimentCfgs accepts a map that binds the pre-defined keys
// "topo" and "app" to input file names, reads both files, and returns
// the deserialized configurations.  Serialization format is chosen by
// file extension.  Any failure is fatal
func GetExperimentCfgs(syn map[string]string) (*TopoCfg, *AppCfg) {
	var errs []error

	ext := path.Ext(syn["topo"])
	useYAML := (ext == ".yaml") || (ext == ".yml")

	tc, err := ReadTopoCfg(syn["topo"], useYAML, nil)
	errs = append(errs, err)

	ext = path.Ext(syn["app"])
	useYAML = (ext == ".yaml") || (ext == ".yml")

	ac, err := ReadAppCfg(syn["app"], useYAML, nil)
	errs = append(errs, err)

	err = ReportErrs(errs)
	if err != nil {
		panic(err)
	}

	return tc, ac
}

// BuildExperiment is called from the module that creates and runs a
// simulation.  Its inputs identify the names of the input files,
// which it uses to assemble and initialize the experiment, leaving
// the start of every source scheduled on the event manager
func BuildExperiment(syn map[string]string, evtMgr *evtm.EventManager,
	traceMgr *TraceManager, statMgr *StatManager) {

	tc, ac := GetExperimentCfgs(syn)
	if tc == nil || ac == nil {
		panic("empty configuration")
	}

	sched := createKernelScheduler(evtMgr)
	assembleExperiment(tc, ac, sched, traceMgr, statMgr)
}

// assembleExperiment builds the run-time representation of an
// experiment on the given scheduler: nodes and links from the
// topology configuration, an application and router per node from the
// app configuration, route tables from a topology snapshot, and one
// phase-boundary event per source at the current instant
func assembleExperiment(tc *TopoCfg, ac *AppCfg, sched eventScheduler,
	traceMgr *TraceManager, statMgr *StatManager) {

	err := tc.validate()
	if err != nil {
		panic(err)
	}

	// initialize the maps used for object lookup
	nodeByID = make(map[int]*Node)
	nodeByName = make(map[string]*Node)
	routerByID = make(map[int]*RouterNode)
	appByName = make(map[string]*BurstApp)
	addrOfNodeID = make(map[int]int)

	// create the run-time representation of every node
	for _, nd := range tc.Nodes {
		node := new(Node)
		node.name = nd.Name
		node.id = nxtID()
		node.addr = nd.Addr
		node.ntype = nd.Type
		node.egress = make([]egressLink, 0)
		node.rng = rngstream.New(nd.Name)

		nodeByID[node.id] = node
		nodeByName[node.name] = node
		addrOfNodeID[node.id] = node.addr

		traceMgr.AddName(node.id, node.name, "node")
	}

	// wire the links into per-node egress lists
	for _, ld := range tc.Links {
		nodeA := nodeByName[ld.NodeA]
		nodeB := nodeByName[ld.NodeB]
		nodeA.egress = append(nodeA.egress,
			egressLink{port: ld.PortA, peerID: nodeB.id, latency: ld.Latency})
		nodeB.egress = append(nodeB.egress,
			egressLink{port: ld.PortB, peerID: nodeA.id, latency: ld.Latency})
	}

	// order each egress list by port and insist the ports are
	// contiguous from zero, so that an egress index is a list position
	for _, node := range nodeByID {
		sort.Slice(node.egress, func(i, j int) bool {
			return node.egress[i].port < node.egress[j].port
		})
		for idx, link := range node.egress {
			if link.port != idx {
				panic(fmt.Errorf("node %s egress ports not contiguous at %d", node.name, link.port))
			}
		}
	}

	// create the application and router living on each node, in
	// node declaration order so ids are reproducible
	for _, nd := range tc.Nodes {
		node := nodeByName[nd.Name]

		ad, present := ac.descForNode(node.name)
		if !present {
			panic(fmt.Errorf("no application configuration applies to node %s", node.name))
		}

		appID := nxtID()
		traceMgr.AddName(appID, node.name+".app", "app")
		node.app = createBurstApp(node.name, appID, node.addr, ad, node.rng, sched, statMgr, traceMgr)

		rtrID := nxtID()
		traceMgr.AddName(rtrID, node.name+".rtr", "router")
		node.rtr = createRouterNode(node.name, rtrID, node.id, node.addr,
			ad.CentralRouting, node.egress, sched, statMgr, traceMgr)

		routerByID[node.id] = node.rtr
		appByName[node.name] = node.app

		// the application's egress reaches its own router; the
		// router's local delivery output reaches the application
		app, rtr := node.app, node.rtr
		app.out = func(pk *Packet) {
			sched.schedule(rtr, pk, routerArrival, 0.0)
		}
		rtr.local = func(pk *Packet) {
			sched.schedule(app, pk, burstAppArrival, 0.0)
		}
	}

	// snapshot the topology once per structural type present and
	// run the static route computation of every router over it
	snapshots := make(map[string]*Topology)
	for _, nd := range tc.Nodes {
		node := nodeByName[nd.Name]
		topo, present := snapshots[node.ntype]
		if !present {
			topo = SnapshotTopology(node.ntype)
			snapshots[node.ntype] = topo
		}
		node.rtr.buildRouteTable(topo, addrOfNodeID)
	}

	// set every source going; the first phase boundary fires at the
	// current instant and carries each machine out of Init
	for _, nd := range tc.Nodes {
		nodeByName[nd.Name].app.Start()
	}
}
