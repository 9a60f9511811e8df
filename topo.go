package burstnet

// topo.go provides the immutable topology snapshot the routing setup
// works from, and shortest path queries over it

// The approach converts the node/link representation of the network
// into the data structures used by a graph package that has built-in
// path discovery algorithms.  Weighting each edge by 1, a shortest
// path minimizes the number of hops, which is sort of what local
// routing like OSPF does.
//   The Dijkstra algorithm we call computes a tree of shortest paths
// from a named node, so a single tree rooted in a source answers
// first-hop queries for every destination reachable from it.

import (
	"math"
	"sort"

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

// an egressLink records one outgoing link of a node: the egress index
// (port) it occupies, the node on the far side, and the transit latency
type egressLink struct {
	port    int
	peerID  int
	latency float64
}

// A Topology is a read-only snapshot of the network graph: the node
// ids present, the undirected adjacency between them, and each node's
// egress links ordered by port.  Built once at setup and never
// mutated by path computation
type Topology struct {
	nodeIDs []int
	edges   map[int][]int
	egress  map[int][]egressLink

	// the graph package's form of the same graph, and the
	// shortest path trees computed over it, cached by root
	gnodes    map[int]simple.Node
	connGraph graph.Graph
	trees     map[int]path.Shortest
}

// createTopology builds a Topology from adjacency and egress maps.
// The egress lists are sorted by port so that a port number indexes
// its list position
func createTopology(edges map[int][]int, egress map[int][]egressLink) *Topology {
	topo := new(Topology)
	topo.edges = edges
	topo.egress = egress
	topo.trees = make(map[int]path.Shortest)
	topo.gnodes = make(map[int]simple.Node)

	topo.nodeIDs = make([]int, 0, len(edges))
	for nodeID := range edges {
		topo.nodeIDs = append(topo.nodeIDs, nodeID)
	}
	sort.Ints(topo.nodeIDs)

	for nodeID := range egress {
		sort.Slice(egress[nodeID], func(i, j int) bool {
			return egress[nodeID][i].port < egress[nodeID][j].port
		})
	}

	topo.connGraph = topo.buildConnGraph()

	return topo
}

// buildConnGraph transforms the adjacency map into the graph module
// representation, every edge carrying weight 1
func (topo *Topology) buildConnGraph() graph.Graph {
	connGraph := simple.NewWeightedUndirectedGraph(0, math.Inf(1))

	for _, nodeID := range topo.nodeIDs {
		topo.gnodes[nodeID] = simple.Node(nodeID)
	}

	// transform the expression of the edges input list to edges in
	// the graph module representation
	for nodeID, edgeList := range topo.edges {
		for _, nbrID := range edgeList {
			weightedEdge := simple.WeightedEdge{F: topo.gnodes[nodeID], T: topo.gnodes[nbrID], W: 1.0}
			connGraph.SetWeightedEdge(weightedEdge)
		}
	}

	return connGraph
}

// pathsFrom returns the shortest path tree rooted in the input node.
// If the tree is found in the cache it is returned, if not it is
// computed, saved, and returned
func (topo *Topology) pathsFrom(from int) path.Shortest {
	spTree, present := topo.trees[from]
	if present {
		return spTree
	}

	// let graph/path.DijkstraFrom compute the tree.  The first
	// argument is the root of the tree, the second is the graph
	spTree = path.DijkstraFrom(topo.gnodes[from], topo.connGraph)
	topo.trees[from] = spTree

	return spTree
}

// convertNodeSeq extracts the node ids from a sequence of graph nodes
// (e.g. like a path) and returns that list
func convertNodeSeq(nsQ []graph.Node) []int {
	rtn := []int{}
	for _, node := range nsQ {
		rtn = append(rtn, int(node.ID()))
	}

	return rtn
}

// routeBetween returns the shortest path from source to destination
// as a sequence of node ids, inclusive of both.  An empty slice means
// the destination is unreachable
func (topo *Topology) routeBetween(srcID, dstID int) []int {
	spTree := topo.pathsFrom(srcID)

	nodeSeq, _ := spTree.To(int64(dstID))
	route := convertNodeSeq(nodeSeq)

	// a one element "path" is the degenerate src==dst case; the
	// graph module reports unreachable destinations with an empty one
	if len(route) < 2 {
		return nil
	}

	return route
}

// firstHop gives the id of the next node on some minimum-hop path
// from source to destination.  The bool return is false when no path
// exists
func (topo *Topology) firstHop(srcID, dstID int) (int, bool) {
	route := topo.routeBetween(srcID, dstID)
	if route == nil {
		return 0, false
	}

	return route[1], true
}

// egressTo gives the egress index of the link that leaves srcID
// toward the neighbor peerID.  The bool return is false when the two
// nodes are not directly linked
func (topo *Topology) egressTo(srcID, peerID int) (int, bool) {
	for _, link := range topo.egress[srcID] {
		if link.peerID == peerID {
			return link.port, true
		}
	}

	return 0, false
}

// nodes returns the ids present in the snapshot, in increasing order
func (topo *Topology) nodes() []int {
	return topo.nodeIDs
}

// SnapshotTopology extracts a read-only topology restricted to nodes
// whose structural type matches the filter, from the node registry
// built at experiment assembly.  Links with an endpoint outside the
// filtered set are excluded
func SnapshotTopology(typeFilter string) *Topology {
	edges := make(map[int][]int)
	egress := make(map[int][]egressLink)

	for nodeID, node := range nodeByID {
		if node.ntype != typeFilter {
			continue
		}
		edges[nodeID] = []int{}
		egress[nodeID] = []egressLink{}
	}

	for nodeID, node := range nodeByID {
		_, present := edges[nodeID]
		if !present {
			continue
		}
		for _, link := range node.egress {
			_, present := edges[link.peerID]
			if !present {
				continue
			}
			if !slices.Contains(edges[nodeID], link.peerID) {
				edges[nodeID] = append(edges[nodeID], link.peerID)
			}
			egress[nodeID] = append(egress[nodeID], link)
		}
	}

	return createTopology(edges, egress)
}
