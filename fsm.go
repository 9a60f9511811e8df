package burstnet

// fsm.go implements the bursty traffic source.  The source alternates
// between a sleeping phase and a bursting phase under a phase-boundary
// timer, and while bursting emits packets under an inter-send timer.
// The state machine proper is the pure function burstTransition; the
// BurstApp owns the timers, counters and samplers and executes the
// actions the transition function hands back

import (
	"fmt"

	"github.com/iti/evt/evtm"
)

// burstState enumerates the states of the source
type burstState int

const (
	stateInit burstState = iota
	stateSleep
	stateBurst
)

func (bs burstState) String() string {
	switch bs {
	case stateInit:
		return "Init"
	case stateSleep:
		return "Sleeping"
	case stateBurst:
		return "Bursting"
	}
	return "Unknown"
}

// burstEvent enumerates the timer identities that drive transitions
type burstEvent int

const (
	evtPhase burstEvent = iota
	evtSend
)

func (be burstEvent) String() string {
	if be == evtPhase {
		return "phase boundary"
	}
	return "inter-send"
}

// burstAction enumerates the side effects a transition asks its
// driver to carry out, in order
type burstAction int

const (
	// schedule the phase-boundary timer with a sleep duration draw
	actSchedSleep burstAction = iota

	// schedule the phase-boundary timer with a burst duration draw
	actSchedBurst

	// schedule (cancelling any pending instance) the inter-send
	// timer with an inter-send interval draw
	actSchedSend

	// cancel the pending inter-send timer
	actCancelSend

	// build one packet and send it
	actEmitPacket
)

// burstTransition is the state machine kernel: given the current
// state and the timer that fired it returns the next state and the
// ordered actions the driver performs.  An event that is invalid for
// the state returns an error, which the driver treats as fatal.
//
// The ordering inside a transition matters: leaving Sleeping
// schedules the next phase boundary first, so the burst's total
// duration is fixed before any packet goes out
func burstTransition(state burstState, evt burstEvent) (burstState, []burstAction, error) {
	switch state {
	case stateInit:
		if evt == evtPhase {
			return stateSleep, []burstAction{actSchedSleep}, nil
		}
	case stateSleep:
		if evt == evtPhase {
			return stateBurst, []burstAction{actSchedBurst, actSchedSend, actEmitPacket}, nil
		}
	case stateBurst:
		switch evt {
		case evtPhase:
			return stateSleep, []burstAction{actCancelSend, actSchedSleep}, nil
		case evtSend:
			return stateBurst, []burstAction{actEmitPacket, actSchedSend}, nil
		}
	}

	return state, nil, fmt.Errorf("invalid %s event in state %s", evt, state)
}

// A BurstApp is the bursty source on one node.  It owns the two
// timers, the per-run counters, and the duration samplers read from
// configuration.  Packets leave through the out function, which the
// node wiring points at its router
type BurstApp struct {
	name      string
	id        int
	myAddress int

	sleepTime  *durationSampler
	burstTime  *durationSampler
	sendIaTime *durationSampler

	fsm     burstState
	phase   timer
	send    timer
	factory *packetFactory

	numSent      int
	numReceived  int
	collectStats bool

	rng   randStream
	sched eventScheduler
	stats *StatManager
	trace *TraceManager

	out func(*Packet)
}

// createBurstApp is a constructor.  It panics on the configuration
// errors the run cannot absorb: missing samplers, or an empty
// destination pool (checked by the packet factory)
func createBurstApp(name string, id int, addr int, ad *AppDesc, rng randStream,
	sched eventScheduler, stats *StatManager, trace *TraceManager) *BurstApp {

	app := new(BurstApp)
	app.name = name
	app.id = id
	app.myAddress = addr
	app.fsm = stateInit
	app.phase = timer{kind: phaseTimer}
	app.send = timer{kind: sendTimer}
	app.rng = rng
	app.sched = sched
	app.stats = stats
	app.trace = trace
	app.collectStats = ad.CollectStatistics

	var errs []error
	var err error
	app.sleepTime, err = createDurationSampler(&ad.SleepTime)
	errs = append(errs, err)
	app.burstTime, err = createDurationSampler(&ad.BurstTime)
	errs = append(errs, err)
	app.sendIaTime, err = createDurationSampler(&ad.SendIaTime)
	errs = append(errs, err)

	pktLen, err := createDurationSampler(&ad.PacketLength)
	errs = append(errs, err)

	err = ReportErrs(errs)
	if err != nil {
		panic(fmt.Errorf("app %s misconfigured: %w", name, err))
	}

	app.factory = createPacketFactory(addr, ad.DestAddresses, pktLen, rng)

	return app
}

// Start schedules the phase-boundary timer at the current instant,
// which carries the machine out of Init.  Init is reachable only once
func (app *BurstApp) Start() {
	if app.fsm != stateInit {
		panic(fmt.Errorf("app %s started twice", app.name))
	}
	app.phase.schedule(app.sched, app, burstAppTimer, 0.0)
}

// burstAppTimer is the event handler for both of the app's timers
func burstAppTimer(evtMgr *evtm.EventManager, context any, data any) any {
	app := context.(*BurstApp)
	app.processTimer(data.(timerFire))
	return nil
}

// burstAppArrival is the event handler for packets delivered locally
// to this node
func burstAppArrival(evtMgr *evtm.EventManager, context any, data any) any {
	app := context.(*BurstApp)
	app.processPacket(data.(*Packet))
	return nil
}

// processTimer maps an arriving timer fire to a state transition and
// executes the actions it yields.  Fires from cancelled timer
// instances are discarded here
func (app *BurstApp) processTimer(tf timerFire) {
	var evt burstEvent
	switch tf.kind {
	case phaseTimer:
		if !app.phase.live(tf) {
			return
		}
		evt = evtPhase
	case sendTimer:
		if !app.send.live(tf) {
			return
		}
		evt = evtSend
	}

	next, actions, err := burstTransition(app.fsm, evt)
	if err != nil {
		panic(fmt.Errorf("app %s: %w", app.name, err))
	}
	app.fsm = next

	for _, act := range actions {
		app.apply(act)
	}
}

// apply carries out one transition action
func (app *BurstApp) apply(act burstAction) {
	now := app.sched.now()

	switch act {
	case actSchedSleep:
		d := app.sleepTime.draw(app.rng)
		app.phase.schedule(app.sched, app, burstAppTimer, d)
		app.trace.AddTrace(now, app.id, 0, "sleep", fmt.Sprintf("sleeping for %gs", d))
	case actSchedBurst:
		d := app.burstTime.draw(app.rng)
		app.phase.schedule(app.sched, app, burstAppTimer, d)
		app.trace.AddTrace(now, app.id, 0, "burst", fmt.Sprintf("starting burst of duration %gs", d))
	case actSchedSend:
		d := app.sendIaTime.draw(app.rng)
		app.send.schedule(app.sched, app, burstAppTimer, d)
	case actCancelSend:
		app.send.cancel()
	case actEmitPacket:
		app.generatePacket()
	}
}

// generatePacket builds the next packet and hands it to the node's
// output.  Ownership transfers with the call
func (app *BurstApp) generatePacket() {
	if app.fsm != stateBurst {
		panic(fmt.Errorf("app %s generating a packet while %s", app.name, app.fsm))
	}

	pk := app.factory.build(app.sched.now())
	app.numSent += 1
	app.trace.AddTrace(pk.CreationTime, app.id, pk.MsgID, "generate", pk.Name)

	app.out(pk)
}

// processPacket receives a packet delivered locally to this node,
// measuring delivery statistics when configured to
func (app *BurstApp) processPacket(pk *Packet) {
	now := app.sched.now()
	app.trace.AddTrace(now, app.id, pk.MsgID, "receive",
		fmt.Sprintf("%s after %d hops", pk.Name, pk.HopCount))

	if app.collectStats {
		app.stats.Measure(now, statEndToEndDelay, now-pk.CreationTime)
		app.stats.Measure(now, statHopCount, float64(pk.HopCount))
		app.stats.Measure(now, statSourceAddress, float64(pk.SrcAddr))
	}

	app.numReceived += 1
}

// Status returns a one line human-readable summary.  Presentational
// only, no bearing on state
func (app *BurstApp) Status() string {
	return fmt.Sprintf("%s state:%s sent:%d received:%d", app.name, app.fsm, app.numSent, app.numReceived)
}
