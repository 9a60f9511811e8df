package burstnet

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBurstTransitionTable(t *testing.T) {
	// leaving Init enters Sleeping and schedules the first phase boundary
	next, actions, err := burstTransition(stateInit, evtPhase)
	require.NoError(t, err)
	require.Equal(t, stateSleep, next)
	require.Equal(t, []burstAction{actSchedSleep}, actions)

	// leaving Sleeping fixes the burst duration before any packet goes out
	next, actions, err = burstTransition(stateSleep, evtPhase)
	require.NoError(t, err)
	require.Equal(t, stateBurst, next)
	require.Equal(t, []burstAction{actSchedBurst, actSchedSend, actEmitPacket}, actions)

	// the inter-send timer keeps the machine in Bursting, emitting one
	// packet per fire and rescheduling itself
	next, actions, err = burstTransition(stateBurst, evtSend)
	require.NoError(t, err)
	require.Equal(t, stateBurst, next)
	require.Equal(t, []burstAction{actEmitPacket, actSchedSend}, actions)

	// the phase boundary ends the burst, cancelling the inter-send timer
	next, actions, err = burstTransition(stateBurst, evtPhase)
	require.NoError(t, err)
	require.Equal(t, stateSleep, next)
	require.Equal(t, []burstAction{actCancelSend, actSchedSleep}, actions)
}

func TestBurstTransitionRejectsInvalidEvents(t *testing.T) {
	_, _, err := burstTransition(stateInit, evtSend)
	require.Error(t, err)

	_, _, err = burstTransition(stateSleep, evtSend)
	require.Error(t, err)
}

func TestBurstStartup(t *testing.T) {
	ts := &testSched{}
	app, sent := makeTestApp(ts, 5, []int{1, 2, 3}, 10.0, 5.0, 1.0, 64.0)

	app.Start()
	require.Equal(t, stateInit, app.fsm)

	// the t=0 phase boundary carries the machine into Sleeping with
	// the next boundary ten seconds out, and nothing sent
	ts.runUntil(0.0)
	require.Equal(t, stateSleep, app.fsm)
	require.Empty(t, *sent)
	require.Equal(t, []float64{10.0}, ts.pendingTimes())

	// at t=10 the burst begins: one packet immediately, the burst end
	// fixed at t=15, and the first inter-send fire at t=11
	ts.runUntil(10.0)
	require.Equal(t, stateBurst, app.fsm)
	require.Len(t, *sent, 1)
	require.Equal(t, "pk-5-to-1-#0", (*sent)[0].Name)
	require.Equal(t, 10.0, (*sent)[0].CreationTime)
	require.Equal(t, []float64{11.0, 15.0}, ts.pendingTimes())
}

func TestConsecutiveSendsIncreaseSequence(t *testing.T) {
	ts := &testSched{}
	app, sent := makeTestApp(ts, 5, []int{9}, 10.0, 5.0, 1.0, 64.0)

	app.Start()
	ts.runUntil(12.0)

	// burst entry at 10 plus inter-send fires at 11 and 12
	require.Equal(t, stateBurst, app.fsm)
	require.Len(t, *sent, 3)
	for idx, pk := range *sent {
		require.Equal(t, fmt.Sprintf("pk-5-to-9-#%d", idx), pk.Name)
	}
}

func TestSendTimerPendingThroughoutBurst(t *testing.T) {
	ts := &testSched{}
	app, _ := makeTestApp(ts, 5, []int{9}, 10.0, 5.0, 1.0, 64.0)

	app.Start()
	for _, at := range []float64{10.0, 11.0, 12.0, 13.0, 14.0} {
		ts.runUntil(at)
		require.Equal(t, stateBurst, app.fsm)
		require.True(t, app.send.pending)
	}

	// burst ends at 15; the inter-send timer must not survive it
	ts.runUntil(15.0)
	require.Equal(t, stateSleep, app.fsm)
	require.False(t, app.send.pending)
}

func TestNoPacketsWhileSleeping(t *testing.T) {
	ts := &testSched{}
	app, sent := makeTestApp(ts, 5, []int{9}, 10.0, 2.0, 1.0, 64.0)

	app.Start()

	// burst spans [10,12): packets at 10 and 11
	ts.runUntil(12.0)
	require.Equal(t, stateSleep, app.fsm)
	require.Len(t, *sent, 2)

	// nothing is generated during the following sleep phase
	ts.runUntil(21.9)
	require.Equal(t, stateSleep, app.fsm)
	require.Len(t, *sent, 2)

	// the next burst resumes the sequence where it left off
	ts.runUntil(22.0)
	require.Equal(t, stateBurst, app.fsm)
	require.Len(t, *sent, 3)
	require.Equal(t, "pk-5-to-9-#2", (*sent)[2].Name)
}

func TestStartTwicePanics(t *testing.T) {
	ts := &testSched{}
	app, _ := makeTestApp(ts, 5, []int{9}, 10.0, 5.0, 1.0, 64.0)

	app.Start()
	ts.runUntil(0.0)
	require.Panics(t, func() { app.Start() })
}

func TestReceiveSideStatistics(t *testing.T) {
	ts := &testSched{}
	app, _ := makeTestApp(ts, 5, []int{9}, 10.0, 5.0, 1.0, 64.0)

	ts.clock = 4.0
	pk := &Packet{Name: "pk-1-to-5-#0", ByteLength: 64, SrcAddr: 1, DestAddr: 5,
		HopCount: 3, CreationTime: 1.5}
	app.processPacket(pk)

	require.Equal(t, 1, app.numReceived)
	require.Equal(t, []float64{2.5}, app.stats.Values(statEndToEndDelay))
	require.Equal(t, []float64{3.0}, app.stats.Values(statHopCount))
	require.Equal(t, []float64{1.0}, app.stats.Values(statSourceAddress))
}
