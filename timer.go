package burstnet

// timer.go implements the self-event discipline the bursty application
// depends on: a timer identity has at most one pending instance, a
// reschedule first cancels the pending instance, and cancelling an
// unscheduled timer is a no-op

import (
	"github.com/iti/evt/evtm"
	"github.com/iti/evt/vrtime"
)

// eventScheduler is the narrow slice of the event manager the
// components consume: schedule a handler after a delay, and read the
// current virtual time.  The simulation binds it to evtm, the tests
// to a recording implementation
type eventScheduler interface {
	schedule(cxt any, data any, hdlr evtm.EventHandlerFunction, offset float64)
	now() float64
}

// kernelScheduler binds eventScheduler to the evtm event manager
type kernelScheduler struct {
	evtMgr *evtm.EventManager
}

// createKernelScheduler is a constructor
func createKernelScheduler(evtMgr *evtm.EventManager) *kernelScheduler {
	ks := new(kernelScheduler)
	ks.evtMgr = evtMgr
	return ks
}

func (ks *kernelScheduler) schedule(cxt any, data any, hdlr evtm.EventHandlerFunction, offset float64) {
	ks.evtMgr.Schedule(cxt, data, hdlr, vrtime.SecondsToTime(offset))
}

func (ks *kernelScheduler) now() float64 {
	return ks.evtMgr.CurrentSeconds()
}

// timerKind names the two timer identities the burst FSM owns
type timerKind int

const (
	phaseTimer timerKind = iota
	sendTimer
)

func (tk timerKind) String() string {
	if tk == phaseTimer {
		return "phaseTimer"
	}
	return "sendTimer"
}

// timerFire is the data payload carried by a scheduled timer event.
// The epoch lets the owner recognize fires from instances that were
// cancelled after being scheduled
type timerFire struct {
	kind  timerKind
	epoch int
}

// timer tracks the pending instance (if any) of one timer identity.
// The event manager offers no removal of scheduled events, so
// cancellation advances the epoch and the stale fire is ignored
// when it arrives
type timer struct {
	kind    timerKind
	epoch   int
	pending bool
}

// schedule cancels any pending instance and schedules a fresh one
// after the given delay.  cxt and hdlr say where the fire is delivered
func (tmr *timer) schedule(sched eventScheduler, cxt any, hdlr evtm.EventHandlerFunction, delay float64) {
	tmr.cancel()
	tmr.epoch += 1
	tmr.pending = true
	sched.schedule(cxt, timerFire{kind: tmr.kind, epoch: tmr.epoch}, hdlr, delay)
}

// cancel invalidates the pending instance.  Calling it with no
// instance pending has no effect
func (tmr *timer) cancel() {
	if !tmr.pending {
		return
	}
	tmr.pending = false
	tmr.epoch += 1
}

// live reports whether an arriving fire belongs to the pending
// instance, and if so marks that instance consumed
func (tmr *timer) live(tf timerFire) bool {
	if !tmr.pending || tf.epoch != tmr.epoch {
		return false
	}
	tmr.pending = false
	return true
}
