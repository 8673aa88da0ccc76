package protocols

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ZippelLabs/ZP1/internal/zp1core/core"
)

func TestComputeDelegationBusMatchesSameMultiset(t *testing.T) {
	alpha, beta := fixedChallenge()
	caller := []DelegationEvent{
		{ChannelTag: 1, Row: 0, Inputs: []core.M31{core.NewM31(3)}, Outputs: []core.M31{core.NewM31(9)}},
		{ChannelTag: 1, Row: 4, Inputs: []core.M31{core.NewM31(5)}, Outputs: []core.M31{core.NewM31(25)}},
	}
	// Same multiset, different order, simulating the precompile table
	// answering calls in its own internal order rather than call order.
	callee := []DelegationEvent{
		{ChannelTag: 1, Row: 0, Inputs: []core.M31{core.NewM31(5)}, Outputs: []core.M31{core.NewM31(25)}},
		{ChannelTag: 1, Row: 1, Inputs: []core.M31{core.NewM31(3)}, Outputs: []core.M31{core.NewM31(9)}},
	}

	bus, err := ComputeDelegationBus(caller, callee, alpha, beta)
	require.NoError(t, err)
	require.False(t, bus.Final.IsZero())
}

func TestComputeDelegationBusRejectsCountMismatch(t *testing.T) {
	alpha, beta := fixedChallenge()
	caller := []DelegationEvent{{ChannelTag: 1, Inputs: []core.M31{core.NewM31(1)}, Outputs: []core.M31{core.NewM31(1)}}}
	_, err := ComputeDelegationBus(caller, nil, alpha, beta)
	require.Error(t, err)
}

func TestComputeDelegationBusRejectsMismatchedOutputs(t *testing.T) {
	alpha, beta := fixedChallenge()
	caller := []DelegationEvent{{ChannelTag: 1, Inputs: []core.M31{core.NewM31(3)}, Outputs: []core.M31{core.NewM31(9)}}}
	callee := []DelegationEvent{{ChannelTag: 1, Inputs: []core.M31{core.NewM31(3)}, Outputs: []core.M31{core.NewM31(10)}}}

	_, err := ComputeDelegationBus(caller, callee, alpha, beta)
	require.ErrorIs(t, err, ErrDelegationMismatch)
}
