package burstnet

// desc.go defines the serializable descriptions of a simulation
// experiment: the topology (nodes and the links between them) and the
// per-node application settings.  Serialization to json or to yaml is
// selected based on the extension of the file name involved

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// A NodeDesc describes one simulated node: a unique name, the integer
// address packets are routed by, and a structural type used when a
// topology snapshot is restricted to nodes of one type
type NodeDesc struct {
	Name string `json:"name" yaml:"name"`
	Addr int    `json:"addr" yaml:"addr"`
	Type string `json:"type" yaml:"type"`
}

// A LinkDesc describes a bidirectional link between two named nodes.
// PortA and PortB give the egress index of the link on each endpoint,
// and Latency the transit time (in seconds) of a message crossing it
type LinkDesc struct {
	NodeA   string  `json:"nodea" yaml:"nodea"`
	PortA   int     `json:"porta" yaml:"porta"`
	NodeB   string  `json:"nodeb" yaml:"nodeb"`
	PortB   int     `json:"portb" yaml:"portb"`
	Latency float64 `json:"latency" yaml:"latency"`
}

// A TopoCfg aggregates the node and link descriptions of one topology
type TopoCfg struct {
	Name  string     `json:"name" yaml:"name"`
	Nodes []NodeDesc `json:"nodes" yaml:"nodes"`
	Links []LinkDesc `json:"links" yaml:"links"`
}

// CreateTopoCfg is an initialization constructor
func CreateTopoCfg(name string) *TopoCfg {
	tc := new(TopoCfg)
	tc.Name = name
	tc.Nodes = make([]NodeDesc, 0)
	tc.Links = make([]LinkDesc, 0)
	return tc
}

// AddNode appends a node description
func (tc *TopoCfg) AddNode(name string, addr int, ntype string) {
	tc.Nodes = append(tc.Nodes, NodeDesc{Name: name, Addr: addr, Type: ntype})
}

// AddLink appends a link description
func (tc *TopoCfg) AddLink(nodeA string, portA int, nodeB string, portB int, latency float64) {
	tc.Links = append(tc.Links,
		LinkDesc{NodeA: nodeA, PortA: portA, NodeB: nodeB, PortB: portB, Latency: latency})
}

// A DistDesc describes a random duration (or length) distribution.
// Dist selects the family ("const", "expon", "uniform"); Mean
// parameterizes const and expon, Min/Max parameterize uniform
type DistDesc struct {
	Dist string  `json:"dist" yaml:"dist"`
	Mean float64 `json:"mean" yaml:"mean"`
	Min  float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max  float64 `json:"max,omitempty" yaml:"max,omitempty"`
}

// An AppDesc holds the configuration of the bursty application on one
// node.  The Node field names the node it applies to; the name "*"
// marks the row giving defaults for nodes without a row of their own
type AppDesc struct {
	Node              string   `json:"node" yaml:"node"`
	DestAddresses     []int    `json:"destaddresses" yaml:"destaddresses"`
	SleepTime         DistDesc `json:"sleeptime" yaml:"sleeptime"`
	BurstTime         DistDesc `json:"bursttime" yaml:"bursttime"`
	SendIaTime        DistDesc `json:"sendiatime" yaml:"sendiatime"`
	PacketLength      DistDesc `json:"packetlength" yaml:"packetlength"`
	CollectStatistics bool     `json:"collectstatistics" yaml:"collectstatistics"`
	CentralRouting    bool     `json:"centralrouting" yaml:"centralrouting"`
}

// An AppCfg aggregates the application descriptions of one experiment
type AppCfg struct {
	Name string    `json:"name" yaml:"name"`
	Apps []AppDesc `json:"apps" yaml:"apps"`
}

// CreateAppCfg is an initialization constructor
func CreateAppCfg(name string) *AppCfg {
	ac := new(AppCfg)
	ac.Name = name
	ac.Apps = make([]AppDesc, 0)
	return ac
}

// AddApp appends an application description
func (ac *AppCfg) AddApp(ad AppDesc) {
	ac.Apps = append(ac.Apps, ad)
}

// descForNode selects the AppDesc that applies to the named node: a
// row naming the node if one exists, otherwise the "*" row.  The
// second return is false when neither is present
func (ac *AppCfg) descForNode(name string) (*AppDesc, bool) {
	var dflt *AppDesc
	for idx := range ac.Apps {
		ad := &ac.Apps[idx]
		if ad.Node == name {
			return ad, true
		}
		if ad.Node == "*" {
			dflt = ad
		}
	}
	if dflt != nil {
		return dflt, true
	}
	return nil, false
}

// WriteToFile stores the TopoCfg struct to the file whose name is given.
// Serialization to json or to yaml is selected based on the extension of this name.
func (tc *TopoCfg) WriteToFile(filename string) error {
	pathExt := path.Ext(filename)
	var bytes []byte
	var merr error = nil

	if pathExt == ".yaml" || pathExt == ".YAML" || pathExt == ".yml" {
		bytes, merr = yaml.Marshal(*tc)
	} else if pathExt == ".json" || pathExt == ".JSON" {
		bytes, merr = json.MarshalIndent(*tc, "", "\t")
	}

	if merr != nil {
		panic(merr)
	}

	f, cerr := os.Create(filename)
	if cerr != nil {
		panic(cerr)
	}
	_, werr := f.WriteString(string(bytes[:]))
	if werr != nil {
		panic(werr)
	}
	f.Close()

	return werr
}

// ReadTopoCfg deserializes a byte slice holding a representation of a TopoCfg struct.
// If the input argument of dict (those bytes) is empty, the file whose name is given is read
// to acquire them.  A deserialized representation is returned, or an error if one is generated
// from a file read or the deserialization.
func ReadTopoCfg(filename string, useYAML bool, dict []byte) (*TopoCfg, error) {
	var err error

	// if the dict slice of bytes is empty we get them from the file whose name is an argument
	if len(dict) == 0 {
		dict, err = os.ReadFile(filename)
		if err != nil {
			return nil, err
		}
	}

	example := TopoCfg{}

	if useYAML {
		err = yaml.Unmarshal(dict, &example)
	} else {
		err = json.Unmarshal(dict, &example)
	}

	if err != nil {
		return nil, err
	}

	return &example, nil
}

// WriteToFile stores the AppCfg struct to the file whose name is given.
// Serialization to json or to yaml is selected based on the extension of this name.
func (ac *AppCfg) WriteToFile(filename string) error {
	pathExt := path.Ext(filename)
	var bytes []byte
	var merr error = nil

	if pathExt == ".yaml" || pathExt == ".YAML" || pathExt == ".yml" {
		bytes, merr = yaml.Marshal(*ac)
	} else if pathExt == ".json" || pathExt == ".JSON" {
		bytes, merr = json.MarshalIndent(*ac, "", "\t")
	}

	if merr != nil {
		panic(merr)
	}

	f, cerr := os.Create(filename)
	if cerr != nil {
		panic(cerr)
	}
	_, werr := f.WriteString(string(bytes[:]))
	if werr != nil {
		panic(werr)
	}
	f.Close()

	return werr
}

// ReadAppCfg deserializes a byte slice holding a representation of an AppCfg struct.
// If the input argument of dict (those bytes) is empty, the file whose name is given is read
// to acquire them.  A deserialized representation is returned, or an error if one is generated
// from a file read or the deserialization.
func ReadAppCfg(filename string, useYAML bool, dict []byte) (*AppCfg, error) {
	var err error

	if len(dict) == 0 {
		dict, err = os.ReadFile(filename)
		if err != nil {
			return nil, err
		}
	}

	example := AppCfg{}

	if useYAML {
		err = yaml.Unmarshal(dict, &example)
	} else {
		err = json.Unmarshal(dict, &example)
	}

	if err != nil {
		return nil, err
	}

	return &example, nil
}

// validate checks a TopoCfg for the structural errors the run-time
// representation cannot absorb: duplicated node names or addresses,
// links naming unknown nodes, and port indices used more than once
// on the same node
func (tc *TopoCfg) validate() error {
	errs := []error{}

	names := make(map[string]bool)
	addrs := make(map[int]bool)
	for _, nd := range tc.Nodes {
		if names[nd.Name] {
			errs = append(errs, fmt.Errorf("node name %s duplicated", nd.Name))
		}
		if addrs[nd.Addr] {
			errs = append(errs, fmt.Errorf("node address %d duplicated", nd.Addr))
		}
		names[nd.Name] = true
		addrs[nd.Addr] = true
	}

	type nodePort struct {
		node string
		port int
	}
	ports := make(map[nodePort]bool)
	for _, ld := range tc.Links {
		if !names[ld.NodeA] {
			errs = append(errs, fmt.Errorf("link endpoint %s not a declared node", ld.NodeA))
		}
		if !names[ld.NodeB] {
			errs = append(errs, fmt.Errorf("link endpoint %s not a declared node", ld.NodeB))
		}
		for _, np := range []nodePort{{ld.NodeA, ld.PortA}, {ld.NodeB, ld.PortB}} {
			if ports[np] {
				errs = append(errs, fmt.Errorf("port %d on node %s carries two links", np.port, np.node))
			}
			ports[np] = true
		}
	}

	return ReportErrs(errs)
}

// ReportErrs folds a list of errors (some possibly nil) into a single
// error, or nil if none of them report anything
func ReportErrs(errs []error) error {
	msgs := []string{}
	for _, err := range errs {
		if err != nil {
			msgs = append(msgs, err.Error())
		}
	}
	if len(msgs) == 0 {
		return nil
	}

	return errors.New(strings.Join(msgs, "\n"))
}
