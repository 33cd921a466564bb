// Package quantum implements a local state-vector simulator for the small
// circuits the vault runs, plus a BB84 key-sifting sketch.
package quantum

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/ericfisherdev/quantumvault/internal/domain/model"
	"github.com/ericfisherdev/quantumvault/internal/domain/port/driven"
)

// MaxQubits bounds the state vector to 2^MaxQubits amplitudes.
const MaxQubits = 16

// Compile-time interface satisfaction check.
var _ driven.QuantumRunner = (*LocalSimulator)(nil)

// LocalSimulator runs circuits in-process. It is safe for concurrent use.
type LocalSimulator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewLocalSimulator creates a simulator seeded from crypto/rand.
func NewLocalSimulator() *LocalSimulator {
	var seed [16]byte
	if _, err := crand.Read(seed[:]); err != nil {
		panic("quantum: failed to seed simulator: " + err.Error())
	}
	src := rand.NewPCG(binary.LittleEndian.Uint64(seed[:8]), binary.LittleEndian.Uint64(seed[8:]))
	return NewLocalSimulatorWithRand(rand.New(src))
}

// NewLocalSimulatorWithRand creates a simulator with a caller-provided source,
// for deterministic tests.
func NewLocalSimulatorWithRand(rng *rand.Rand) *LocalSimulator {
	return &LocalSimulator{rng: rng}
}

// Name returns "local".
func (s *LocalSimulator) Name() string { return "local" }

// Run evolves the circuit's state vector and samples shots measurements.
func (s *LocalSimulator) Run(ctx context.Context, circuit model.Circuit, shots int) (model.MeasurementCounts, error) {
	if err := circuit.Validate(); err != nil {
		return nil, err
	}
	if circuit.Qubits > MaxQubits {
		return nil, fmt.Errorf("local simulator supports at most %d qubits, got %d", MaxQubits, circuit.Qubits)
	}
	if shots < 1 {
		return nil, fmt.Errorf("shots must be positive, got %d", shots)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	probs := probabilities(evolve(circuit))

	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(model.MeasurementCounts)
	for range shots {
		idx := sample(probs, s.rng.Float64())
		counts[bitstring(idx, circuit.Qubits)]++
	}
	return counts, nil
}

// evolve applies every gate to |0...0>. Qubit q maps to bit (n-1-q) of the
// basis index so that the index printed in binary reads qubit 0 first.
func evolve(c model.Circuit) []complex128 {
	state := make([]complex128, 1<<c.Qubits)
	state[0] = 1

	mask := func(q int) int { return 1 << (c.Qubits - 1 - q) }

	for _, g := range c.Gates {
		t := mask(g.Target)
		switch g.Kind {
		case model.GateH:
			for i := range state {
				if i&t != 0 {
					continue
				}
				a, b := state[i], state[i|t]
				state[i] = (a + b) * complex(math.Sqrt2/2, 0)
				state[i|t] = (a - b) * complex(math.Sqrt2/2, 0)
			}
		case model.GateX:
			for i := range state {
				if i&t == 0 {
					state[i], state[i|t] = state[i|t], state[i]
				}
			}
		case model.GateCNOT:
			ctl := mask(g.Control)
			for i := range state {
				if i&ctl != 0 && i&t == 0 {
					state[i], state[i|t] = state[i|t], state[i]
				}
			}
		}
	}
	return state
}

func probabilities(state []complex128) []float64 {
	probs := make([]float64, len(state))
	for i, amp := range state {
		probs[i] = real(amp)*real(amp) + imag(amp)*imag(amp)
	}
	return probs
}

// sample picks the basis index whose cumulative probability first exceeds r.
func sample(probs []float64, r float64) int {
	acc := 0.0
	last := 0
	for i, p := range probs {
		if p == 0 {
			continue
		}
		acc += p
		last = i
		if r < acc {
			return i
		}
	}
	// Rounding can leave acc slightly below 1.
	return last
}

func bitstring(idx, qubits int) string {
	b := make([]byte, qubits)
	for q := range qubits {
		if idx&(1<<(qubits-1-q)) != 0 {
			b[q] = '1'
		} else {
			b[q] = '0'
		}
	}
	return string(b)
}
