package burstnet

import (
	"testing"

	"github.com/iti/evt/evtm"
	"github.com/stretchr/testify/require"
)

func nullHandler(evtMgr *evtm.EventManager, context any, data any) any {
	return nil
}

func TestCancelOfUnscheduledTimerIsNoOp(t *testing.T) {
	tmr := timer{kind: sendTimer}

	before := tmr
	tmr.cancel()
	tmr.cancel()
	require.Equal(t, before, tmr)
}

func TestCancelInvalidatesPendingFire(t *testing.T) {
	ts := &testSched{}
	tmr := timer{kind: phaseTimer}

	tmr.schedule(ts, nil, nullHandler, 1.0)
	fire := ts.queue[0].data.(timerFire)

	tmr.cancel()
	tmr.cancel()
	require.False(t, tmr.live(fire))
}

func TestRescheduleReplacesPendingInstance(t *testing.T) {
	ts := &testSched{}
	tmr := timer{kind: sendTimer}

	tmr.schedule(ts, nil, nullHandler, 1.0)
	stale := ts.queue[0].data.(timerFire)

	// rescheduling without an explicit cancel must still leave only
	// one live instance
	tmr.schedule(ts, nil, nullHandler, 2.0)
	fresh := ts.queue[1].data.(timerFire)

	require.False(t, tmr.live(stale))
	require.True(t, tmr.live(fresh))

	// a consumed fire cannot be claimed again
	require.False(t, tmr.live(fresh))
}
