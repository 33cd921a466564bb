package quantum

import (
	"errors"
	"math/rand/v2"
)

// Basis is a BB84 preparation/measurement basis.
type Basis uint8

const (
	BasisRectilinear Basis = iota // + basis: |0>, |1>
	BasisDiagonal                 // x basis: |+>, |->
)

// BB84Result is one simulated BB84 exchange between Alice and Bob.
type BB84Result struct {
	AliceBits  []uint8
	AliceBases []Basis
	BobBases   []Basis
	BobResults []uint8
	// SiftedKey holds Alice's bits at positions where the bases matched.
	SiftedKey []uint8
}

// SimulateBB84 runs an n-qubit BB84 exchange with no eavesdropper. Where Bob's
// basis differs from Alice's his measurement is uniformly random; where it
// matches he recovers her bit exactly.
func SimulateBB84(n int, rng *rand.Rand) (*BB84Result, error) {
	if n < 1 {
		return nil, errors.New("bb84: qubit count must be positive")
	}

	res := &BB84Result{
		AliceBits:  make([]uint8, n),
		AliceBases: make([]Basis, n),
		BobBases:   make([]Basis, n),
		BobResults: make([]uint8, n),
	}

	for i := range n {
		res.AliceBits[i] = uint8(rng.IntN(2))
		res.AliceBases[i] = Basis(rng.IntN(2))
		res.BobBases[i] = Basis(rng.IntN(2))

		if res.AliceBases[i] == res.BobBases[i] {
			res.BobResults[i] = res.AliceBits[i]
			res.SiftedKey = append(res.SiftedKey, res.AliceBits[i])
		} else {
			res.BobResults[i] = uint8(rng.IntN(2))
		}
	}

	return res, nil
}

// BobSiftedKey returns Bob's view of the key: his results where bases matched.
func (r *BB84Result) BobSiftedKey() []uint8 {
	var key []uint8
	for i := range r.BobBases {
		if r.BobBases[i] == r.AliceBases[i] {
			key = append(key, r.BobResults[i])
		}
	}
	return key
}
