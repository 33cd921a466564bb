package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBellCircuit_OpenQASM(t *testing.T) {
	want := "OPENQASM 3;\n" +
		"qubit[2] q;\n" +
		"bit[2] c;\n" +
		"h q[0];\n" +
		"cnot q[0], q[1];\n" +
		"c = measure q;\n"

	assert.Equal(t, want, BellCircuit().OpenQASM())
}

func TestCircuit_Validate(t *testing.T) {
	require.NoError(t, BellCircuit().Validate())

	tests := []struct {
		name    string
		circuit Circuit
		errMsg  string
	}{
		{"no qubits", Circuit{}, "at least one qubit"},
		{"target out of range", Circuit{Qubits: 1, Gates: []Gate{{Kind: GateX, Target: 1}}}, "target qubit 1"},
		{"control out of range", Circuit{Qubits: 2, Gates: []Gate{{Kind: GateCNOT, Control: 5, Target: 0}}}, "control qubit 5"},
		{"control equals target", Circuit{Qubits: 2, Gates: []Gate{{Kind: GateCNOT, Control: 1, Target: 1}}}, "both qubit 1"},
		{"unknown gate", Circuit{Qubits: 1, Gates: []Gate{{Kind: "t", Target: 0}}}, `unsupported gate "t"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.circuit.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestMeasurementCounts(t *testing.T) {
	counts := MeasurementCounts{"11": 48, "00": 52}

	assert.Equal(t, 100, counts.Shots())
	assert.Equal(t, "00:52 11:48", counts.String())
	assert.Equal(t, "", MeasurementCounts{}.String())
}
