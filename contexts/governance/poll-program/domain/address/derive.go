package address

import (
	"crypto/sha256"

	"filippo.io/edwards25519"
)

const programDerivedMarker = "ProgramDerivedAddress"

// DefaultProgramID is the id the poll program was deployed under.
var DefaultProgramID = MustParse("Ec1HB25VENo6m1TUVXsP49yhHHXcbdHNd889qFkkqCkf")

// Derived is a program address plus the bump seed that moved it off the curve.
type Derived struct {
	Address Address
	Bump    uint8
}

// Program derives record addresses owned by a single program id.
type Program struct {
	ID Address
}

func NewProgram(id Address) Program {
	return Program{ID: id}
}

// Poll derives the Poll address from [poll_id].
func (p Program) Poll(pollID uint64) Derived {
	return p.Find(PollIDSeed(pollID))
}

// Candidate derives the Candidate address from [poll_id, name]. Seed order is
// part of the external contract.
func (p Program) Candidate(pollID uint64, name string) Derived {
	return p.Find(PollIDSeed(pollID), []byte(name))
}

// VoteReceipt derives the receipt address from [poll_id, identity].
func (p Program) VoteReceipt(pollID uint64, voter Address) Derived {
	return p.Find(PollIDSeed(pollID), voter[:])
}

// Find walks bump seeds from 255 down and returns the first off-curve address.
func (p Program) Find(seeds ...[]byte) Derived {
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)
	for bump := 255; bump >= 0; bump-- {
		withBump[len(seeds)] = []byte{byte(bump)}
		if addr, ok := p.Create(withBump...); ok {
			return Derived{Address: addr, Bump: uint8(bump)}
		}
	}
	// Each bump has roughly even odds of landing on the curve, so exhausting
	// all 256 is not a reachable state.
	panic("address: no viable bump seed")
}

// Create hashes seeds with the program id. ok is false when the digest is a
// valid curve point, which would make it a key someone could sign for.
func (p Program) Create(seeds ...[]byte) (Address, bool) {
	h := sha256.New()
	for _, seed := range seeds {
		h.Write(seed)
	}
	h.Write(p.ID[:])
	h.Write([]byte(programDerivedMarker))

	var addr Address
	copy(addr[:], h.Sum(nil))
	if IsOnCurve(addr) {
		return Address{}, false
	}
	return addr, true
}

// IsOnCurve reports whether the address decodes as an ed25519 point.
func IsOnCurve(a Address) bool {
	_, err := new(edwards25519.Point).SetBytes(a[:])
	return err == nil
}
