package entities

import "agora/contexts/governance/poll-program/domain/address"

const (
	MaxDescriptionLen   = 50
	MaxCandidateNameLen = 50
)

// Poll is created once per poll id. Only candidate registration mutates it.
type Poll struct {
	PollID         uint64
	Description    string
	StartTime      uint64
	EndTime        uint64
	CandidateCount uint64
	Creator        address.Address
}

// IsActive reports whether now falls inside the inclusive voting window. A
// poll whose start is after its end is never active.
func (p Poll) IsActive(now uint64) bool {
	return now >= p.StartTime && now <= p.EndTime
}

type Candidate struct {
	Name      string
	VoteCount uint64
}

// VoteReceipt is the double-vote guard: its presence at the derived
// (poll_id, voter) address means the voter has voted in that poll.
type VoteReceipt struct {
	PollID uint64
	Voter  address.Address
}

type VoterState string

const (
	VoterStateNotVoted VoterState = "not_voted"
	VoterStateVoted    VoterState = "voted"
)
