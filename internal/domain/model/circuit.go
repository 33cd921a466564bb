package model

import (
	"fmt"
	"sort"
	"strings"
)

// GateKind identifies a quantum gate supported by the simulators.
type GateKind string

const (
	GateH    GateKind = "h"
	GateX    GateKind = "x"
	GateCNOT GateKind = "cnot"
)

// Gate is a single gate application. Control is only meaningful for GateCNOT.
type Gate struct {
	Kind    GateKind
	Target  int
	Control int
}

// Circuit is an ordered list of gates over Qubits qubits. All qubits are
// measured at the end of the circuit.
type Circuit struct {
	Qubits int
	Gates  []Gate
}

// BellCircuit returns the fixed two-qubit circuit H(0), CNOT(0,1).
func BellCircuit() Circuit {
	return Circuit{
		Qubits: 2,
		Gates: []Gate{
			{Kind: GateH, Target: 0},
			{Kind: GateCNOT, Control: 0, Target: 1},
		},
	}
}

// Validate checks qubit indices and gate kinds.
func (c Circuit) Validate() error {
	if c.Qubits < 1 {
		return fmt.Errorf("circuit must have at least one qubit, got %d", c.Qubits)
	}
	for i, g := range c.Gates {
		if g.Target < 0 || g.Target >= c.Qubits {
			return fmt.Errorf("gate %d: target qubit %d out of range", i, g.Target)
		}
		switch g.Kind {
		case GateH, GateX:
		case GateCNOT:
			if g.Control < 0 || g.Control >= c.Qubits {
				return fmt.Errorf("gate %d: control qubit %d out of range", i, g.Control)
			}
			if g.Control == g.Target {
				return fmt.Errorf("gate %d: control and target are both qubit %d", i, g.Target)
			}
		default:
			return fmt.Errorf("gate %d: unsupported gate %q", i, g.Kind)
		}
	}
	return nil
}

// OpenQASM renders the circuit as an OpenQASM 3 program measuring every qubit.
func (c Circuit) OpenQASM() string {
	var b strings.Builder
	b.WriteString("OPENQASM 3;\n")
	fmt.Fprintf(&b, "qubit[%d] q;\n", c.Qubits)
	fmt.Fprintf(&b, "bit[%d] c;\n", c.Qubits)
	for _, g := range c.Gates {
		switch g.Kind {
		case GateCNOT:
			fmt.Fprintf(&b, "cnot q[%d], q[%d];\n", g.Control, g.Target)
		default:
			fmt.Fprintf(&b, "%s q[%d];\n", g.Kind, g.Target)
		}
	}
	b.WriteString("c = measure q;\n")
	return b.String()
}

// MeasurementCounts maps a measured bitstring (qubit 0 first) to the number of
// shots that produced it.
type MeasurementCounts map[string]int

// Shots returns the total number of shots recorded.
func (m MeasurementCounts) Shots() int {
	total := 0
	for _, n := range m {
		total += n
	}
	return total
}

// String renders the counts sorted by bitstring, e.g. "00:52 11:48".
func (m MeasurementCounts) String() string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s:%d", k, m[k]))
	}
	return strings.Join(parts, " ")
}
