package queries

import (
	"context"
	"errors"

	"agora/contexts/governance/poll-program/domain/address"
	"agora/contexts/governance/poll-program/domain/entities"
	domainerrors "agora/contexts/governance/poll-program/domain/errors"
	"agora/contexts/governance/poll-program/domain/records"
	"agora/contexts/governance/poll-program/ports"
)

type PollView struct {
	Poll        entities.Poll
	PollAccount address.Derived
}

type CandidateView struct {
	PollID           uint64
	Candidate        entities.Candidate
	CandidateAccount address.Derived
}

type VoterView struct {
	PollID       uint64
	Voter        address.Address
	State        entities.VoterState
	VoterAccount address.Derived
}

// AddressSet lists the addresses a client needs to build requests for a poll.
// Candidate and voter entries are set only when their key fields were given.
type AddressSet struct {
	PollID    uint64
	Poll      address.Derived
	Candidate *address.Derived
	Voter     *address.Derived
}

// AccountsUseCase reads committed records by re-deriving their addresses.
type AccountsUseCase struct {
	Ledger  ports.Ledger
	Program address.Program
}

func (uc AccountsUseCase) GetPoll(ctx context.Context, pollID uint64) (PollView, error) {
	derived := uc.Program.Poll(pollID)
	data, err := uc.Ledger.Read(ctx, derived.Address)
	if err != nil {
		return PollView{}, err
	}
	poll, err := records.DecodePoll(data)
	if err != nil {
		return PollView{}, err
	}
	return PollView{Poll: poll, PollAccount: derived}, nil
}

func (uc AccountsUseCase) GetCandidate(ctx context.Context, pollID uint64, name string) (CandidateView, error) {
	derived := uc.Program.Candidate(pollID, name)
	data, err := uc.Ledger.Read(ctx, derived.Address)
	if err != nil {
		return CandidateView{}, err
	}
	candidate, err := records.DecodeCandidate(data)
	if err != nil {
		return CandidateView{}, err
	}
	return CandidateView{PollID: pollID, Candidate: candidate, CandidateAccount: derived}, nil
}

// GetVoter reports whether voter has a receipt in the poll. A missing
// receipt is the NotVoted state, not an error.
func (uc AccountsUseCase) GetVoter(ctx context.Context, pollID uint64, voter address.Address) (VoterView, error) {
	derived := uc.Program.VoteReceipt(pollID, voter)
	view := VoterView{
		PollID:       pollID,
		Voter:        voter,
		State:        entities.VoterStateNotVoted,
		VoterAccount: derived,
	}
	data, err := uc.Ledger.Read(ctx, derived.Address)
	if errors.Is(err, domainerrors.ErrAccountNotFound) {
		return view, nil
	}
	if err != nil {
		return VoterView{}, err
	}
	if _, err := records.DecodeVoteReceipt(data); err != nil {
		return VoterView{}, err
	}
	view.State = entities.VoterStateVoted
	return view, nil
}

func (uc AccountsUseCase) HasVoted(ctx context.Context, pollID uint64, voter address.Address) (bool, error) {
	view, err := uc.GetVoter(ctx, pollID, voter)
	if err != nil {
		return false, err
	}
	return view.State == entities.VoterStateVoted, nil
}

func (uc AccountsUseCase) DeriveAddresses(pollID uint64, candidateName *string, voter *address.Address) AddressSet {
	set := AddressSet{
		PollID: pollID,
		Poll:   uc.Program.Poll(pollID),
	}
	if candidateName != nil {
		derived := uc.Program.Candidate(pollID, *candidateName)
		set.Candidate = &derived
	}
	if voter != nil {
		derived := uc.Program.VoteReceipt(pollID, *voter)
		set.Voter = &derived
	}
	return set
}
