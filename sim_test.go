package burstnet

// sim_test.go holds the scaffolding the unit and scenario tests share:
// a deterministic event scheduler that records what is scheduled and
// runs it in time order, and a random stream with scripted draws

import (
	"sort"

	"github.com/iti/evt/evtm"
)

// schedEntry is one recorded scheduling request
type schedEntry struct {
	time float64
	seq  int
	cxt  any
	data any
	hdlr evtm.EventHandlerFunction
}

// testSched implements eventScheduler with an in-test event loop.
// Ties in time break by scheduling order
type testSched struct {
	clock float64
	seq   int
	queue []schedEntry
}

func (ts *testSched) schedule(cxt any, data any, hdlr evtm.EventHandlerFunction, offset float64) {
	ts.seq += 1
	ts.queue = append(ts.queue,
		schedEntry{time: ts.clock + offset, seq: ts.seq, cxt: cxt, data: data, hdlr: hdlr})
}

func (ts *testSched) now() float64 {
	return ts.clock
}

// pendingTimes lists the times of all events not yet delivered, ascending
func (ts *testSched) pendingTimes() []float64 {
	times := make([]float64, 0, len(ts.queue))
	for _, entry := range ts.queue {
		times = append(times, entry.time)
	}
	sort.Float64s(times)
	return times
}

// step delivers the earliest pending event, advancing the clock to
// its time.  It reports false when nothing is pending
func (ts *testSched) step() bool {
	if len(ts.queue) == 0 {
		return false
	}

	earliest := 0
	for idx := 1; idx < len(ts.queue); idx++ {
		e, c := ts.queue[idx], ts.queue[earliest]
		if e.time < c.time || (e.time == c.time && e.seq < c.seq) {
			earliest = idx
		}
	}

	entry := ts.queue[earliest]
	ts.queue = append(ts.queue[:earliest], ts.queue[earliest+1:]...)
	ts.clock = entry.time
	entry.hdlr(nil, entry.cxt, entry.data)
	return true
}

// runUntil delivers every event with time at or before the limit
func (ts *testSched) runUntil(limit float64) {
	for len(ts.queue) > 0 {
		earliest := ts.queue[0]
		for _, entry := range ts.queue[1:] {
			if entry.time < earliest.time || (entry.time == earliest.time && entry.seq < earliest.seq) {
				earliest = entry
			}
		}
		if earliest.time > limit {
			return
		}
		ts.step()
	}
}

// fixedStream implements randStream with scripted values.  U01 draws
// pop from u01s (0.5 when exhausted); integer draws pop offsets from
// ints, taken from the low end of the requested range
type fixedStream struct {
	u01s []int
	ints []int
}

func (fs *fixedStream) RandU01() float64 {
	if len(fs.u01s) == 0 {
		return 0.5
	}
	v := fs.u01s[0]
	fs.u01s = fs.u01s[1:]
	return float64(v) / 100.0
}

func (fs *fixedStream) RandInt(low, high int) int {
	if len(fs.ints) == 0 {
		return low
	}
	v := fs.ints[0]
	fs.ints = fs.ints[1:]
	if low+v > high {
		return high
	}
	return low + v
}

// constDist builds the desc of a constant distribution
func constDist(v float64) DistDesc {
	return DistDesc{Dist: "const", Mean: v}
}

// makeTestApp builds a BurstApp on a recording scheduler with
// constant duration draws and a captured output
func makeTestApp(ts *testSched, addr int, dests []int,
	sleep, burst, ia, pktLen float64) (*BurstApp, *[]*Packet) {

	ad := &AppDesc{
		Node:              "testnode",
		DestAddresses:     dests,
		SleepTime:         constDist(sleep),
		BurstTime:         constDist(burst),
		SendIaTime:        constDist(ia),
		PacketLength:      constDist(pktLen),
		CollectStatistics: true,
	}

	stats := CreateStatManager("test", true)
	trace := CreateTraceManager("test", false)

	app := createBurstApp("testnode", nxtID(), addr, ad, &fixedStream{}, ts, stats, trace)

	sent := &[]*Packet{}
	app.out = func(pk *Packet) {
		*sent = append(*sent, pk)
	}

	return app, sent
}
