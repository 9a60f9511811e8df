package burstnet

// trace.go holds the run artifacts the simulation produces: a trace
// of notable events for post-run inspection, and the append-only
// metric series the applications and routers measure into

import (
	"encoding/json"
	"os"
	"path"

	"gopkg.in/yaml.v3"
)

// NameType is an entry in a dictionary created for a trace
// that maps object id numbers to a (name,type) pair
type NameType struct {
	Name string
	Type string
}

// TraceRecord saves information about one notable event: the virtual
// time it happened, the object and message involved, a short
// operation code, and free text
type TraceRecord struct {
	Time  float64 `json:"time" yaml:"time"`
	ObjID int     `json:"objid" yaml:"objid"`
	MsgID int     `json:"msgid" yaml:"msgid"`
	Op    string  `json:"op" yaml:"op"`
	Note  string  `json:"note" yaml:"note"`
}

// TraceManager gathers information about an execution of the model
type TraceManager struct {
	// experiment uses trace
	InUse bool `json:"inuse" yaml:"inuse"`

	// name of experiment
	ExpName string `json:"expname" yaml:"expname"`

	// text name associated with each objID
	NameByID map[int]NameType `json:"namebyid" yaml:"namebyid"`

	// all trace records for this experiment
	Traces []TraceRecord `json:"traces" yaml:"traces"`
}

// CreateTraceManager is a constructor.  It saves the name of the experiment
// and a flag indicating whether the trace manager is active.  By testing this
// flag we can inhibit the activity of gathering a trace when we don't want it,
// while embedding calls to its methods everywhere we need them when it is
func CreateTraceManager(expName string, active bool) *TraceManager {
	tm := new(TraceManager)
	tm.InUse = active
	tm.ExpName = expName
	tm.NameByID = make(map[int]NameType)
	tm.Traces = make([]TraceRecord, 0)
	return tm
}

// Active tells the caller whether the trace manager is actively being used
func (tm *TraceManager) Active() bool {
	return tm.InUse
}

// AddTrace creates a record of the trace using its calling arguments, and stores it
func (tm *TraceManager) AddTrace(time float64, objID, msgID int, op, note string) {
	if !tm.InUse {
		return
	}

	tm.Traces = append(tm.Traces,
		TraceRecord{Time: time, ObjID: objID, MsgID: msgID, Op: op, Note: note})
}

// AddName is used to add an element to the id -> (name,type) dictionary for the trace file
func (tm *TraceManager) AddName(id int, name string, objDesc string) {
	if tm.InUse {
		_, present := tm.NameByID[id]
		if present {
			panic("duplicated id in AddName")
		}
		tm.NameByID[id] = NameType{Name: name, Type: objDesc}
	}
}

// WriteToFile stores the trace to the file whose name is given.
// Serialization to json or to yaml is selected based on the extension of this name.
func (tm *TraceManager) WriteToFile(filename string) bool {
	if !tm.InUse {
		return false
	}
	pathExt := path.Ext(filename)
	var bytes []byte
	var merr error = nil

	if pathExt == ".yaml" || pathExt == ".YAML" || pathExt == ".yml" {
		bytes, merr = yaml.Marshal(*tm)
	} else if pathExt == ".json" || pathExt == ".JSON" {
		bytes, merr = json.MarshalIndent(*tm, "", "\t")
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
	return true
}

// A StatRecord is one observation in a metric series
type StatRecord struct {
	Time  float64 `json:"time" yaml:"time"`
	Value float64 `json:"value" yaml:"value"`
}

// StatManager collects the named numeric observations the model emits
// (end-to-end delay, hop counts, drops, chosen egress indices).  Each
// series is append-only; no aggregation happens here
type StatManager struct {
	InUse   bool                    `json:"inuse" yaml:"inuse"`
	ExpName string                  `json:"expname" yaml:"expname"`
	Series  map[string][]StatRecord `json:"series" yaml:"series"`
}

// CreateStatManager is a constructor
func CreateStatManager(expName string, active bool) *StatManager {
	sm := new(StatManager)
	sm.InUse = active
	sm.ExpName = expName
	sm.Series = make(map[string][]StatRecord)
	return sm
}

// Measure appends an observation to the named series
func (sm *StatManager) Measure(time float64, series string, value float64) {
	if !sm.InUse {
		return
	}

	_, present := sm.Series[series]
	if !present {
		sm.Series[series] = make([]StatRecord, 0)
	}
	sm.Series[series] = append(sm.Series[series], StatRecord{Time: time, Value: value})
}

// Values returns the observations of the named series in emission order
func (sm *StatManager) Values(series string) []float64 {
	values := make([]float64, 0, len(sm.Series[series]))
	for _, rec := range sm.Series[series] {
		values = append(values, rec.Value)
	}
	return values
}

// WriteToFile stores the metric series to the file whose name is given.
// Serialization to json or to yaml is selected based on the extension of this name.
func (sm *StatManager) WriteToFile(filename string) bool {
	if !sm.InUse {
		return false
	}
	pathExt := path.Ext(filename)
	var bytes []byte
	var merr error = nil

	if pathExt == ".yaml" || pathExt == ".YAML" || pathExt == ".yml" {
		bytes, merr = yaml.Marshal(*sm)
	} else if pathExt == ".json" || pathExt == ".JSON" {
		bytes, merr = json.MarshalIndent(*sm, "", "\t")
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
	return true
}
