package burstnet

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTopoCfgValidate(t *testing.T) {
	tc := CreateTopoCfg("good")
	tc.AddNode("a", 0, "node")
	tc.AddNode("b", 1, "node")
	tc.AddLink("a", 0, "b", 0, 0.1)
	require.NoError(t, tc.validate())

	bad := CreateTopoCfg("bad")
	bad.AddNode("a", 0, "node")
	bad.AddNode("a", 0, "node")
	bad.AddLink("a", 0, "z", 0, 0.1)
	bad.AddLink("a", 0, "a", 1, 0.1)
	err := bad.validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "duplicated")
	require.Contains(t, err.Error(), "not a declared node")
	require.Contains(t, err.Error(), "carries two links")
}

func TestAppCfgSelection(t *testing.T) {
	ac := CreateAppCfg("sel")
	ac.AddApp(AppDesc{Node: "*", DestAddresses: []int{1}})
	ac.AddApp(AppDesc{Node: "b", DestAddresses: []int{2}})

	ad, present := ac.descForNode("a")
	require.True(t, present)
	require.Equal(t, []int{1}, ad.DestAddresses)

	// a row naming the node wins over the wildcard default
	ad, present = ac.descForNode("b")
	require.True(t, present)
	require.Equal(t, []int{2}, ad.DestAddresses)

	empty := CreateAppCfg("empty")
	_, present = empty.descForNode("a")
	require.False(t, present)
}
