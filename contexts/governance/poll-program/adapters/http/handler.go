package httpadapter

import (
	"context"
	"log/slog"
	"strings"

	"agora/contexts/governance/poll-program/application/commands"
	"agora/contexts/governance/poll-program/application/queries"
	"agora/contexts/governance/poll-program/domain/address"
	httptransport "agora/contexts/governance/poll-program/transport/http"
)

// Handler maps transport DTOs onto poll program use cases. Signers arrive
// already authenticated as base58 identities.
type Handler struct {
	Polls      commands.PollUseCase
	Candidates commands.CandidateUseCase
	Votes      commands.VoteUseCase
	Accounts   queries.AccountsUseCase
	Logger     *slog.Logger
}

func (h Handler) CreatePollHandler(
	ctx context.Context,
	signer string,
	req httptransport.CreatePollRequest,
) (httptransport.PollResponse, error) {
	signerAddr, err := address.Parse(strings.TrimSpace(signer))
	if err != nil {
		return httptransport.PollResponse{}, err
	}
	pollAccount, err := parseOptional(req.PollAccount)
	if err != nil {
		return httptransport.PollResponse{}, err
	}
	result, err := h.Polls.CreatePoll(ctx, commands.CreatePollCommand{
		Signer:      signerAddr,
		PollID:      req.PollID,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		PollAccount: pollAccount,
	})
	if err != nil {
		return httptransport.PollResponse{}, err
	}
	return mapPoll(queries.PollView{Poll: result.Poll, PollAccount: result.PollAccount}), nil
}

func (h Handler) RegisterCandidateHandler(
	ctx context.Context,
	signer string,
	pollID uint64,
	req httptransport.RegisterCandidateRequest,
) (httptransport.CandidateResponse, error) {
	signerAddr, err := address.Parse(strings.TrimSpace(signer))
	if err != nil {
		return httptransport.CandidateResponse{}, err
	}
	pollAccount, err := parseOptional(req.PollAccount)
	if err != nil {
		return httptransport.CandidateResponse{}, err
	}
	candidateAccount, err := parseOptional(req.CandidateAccount)
	if err != nil {
		return httptransport.CandidateResponse{}, err
	}
	result, err := h.Candidates.RegisterCandidate(ctx, commands.RegisterCandidateCommand{
		Signer:           signerAddr,
		PollID:           pollID,
		CandidateName:    req.CandidateName,
		PollAccount:      pollAccount,
		CandidateAccount: candidateAccount,
	})
	if err != nil {
		return httptransport.CandidateResponse{}, err
	}
	resp := mapCandidate(queries.CandidateView{
		PollID:           pollID,
		Candidate:        result.Candidate,
		CandidateAccount: result.CandidateAccount,
	})
	resp.CandidateCount = result.Poll.CandidateCount
	return resp, nil
}

func (h Handler) CastVoteHandler(
	ctx context.Context,
	signer string,
	pollID uint64,
	req httptransport.CastVoteRequest,
) (httptransport.VoteResponse, error) {
	signerAddr, err := address.Parse(strings.TrimSpace(signer))
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	cmd := commands.CastVoteCommand{
		Signer:        signerAddr,
		PollID:        pollID,
		CandidateName: req.CandidateName,
	}
	if cmd.PollAccount, err = parseOptional(req.PollAccount); err != nil {
		return httptransport.VoteResponse{}, err
	}
	if cmd.CandidateAccount, err = parseOptional(req.CandidateAccount); err != nil {
		return httptransport.VoteResponse{}, err
	}
	if cmd.VoterAccount, err = parseOptional(req.VoterAccount); err != nil {
		return httptransport.VoteResponse{}, err
	}
	result, err := h.Votes.CastVote(ctx, cmd)
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	return httptransport.VoteResponse{
		PollID:           result.Receipt.PollID,
		CandidateName:    result.Candidate.Name,
		VoteCount:        result.Candidate.VoteCount,
		Voter:            result.Receipt.Voter.String(),
		VotedAt:          result.VotedAt,
		CandidateAccount: mapDerived(result.CandidateAccount),
		VoterAccount:     mapDerived(result.VoterAccount),
	}, nil
}

func (h Handler) GetPollHandler(ctx context.Context, pollID uint64) (httptransport.PollResponse, error) {
	view, err := h.Accounts.GetPoll(ctx, pollID)
	if err != nil {
		return httptransport.PollResponse{}, err
	}
	return mapPoll(view), nil
}

func (h Handler) GetCandidateHandler(ctx context.Context, pollID uint64, name string) (httptransport.CandidateResponse, error) {
	view, err := h.Accounts.GetCandidate(ctx, pollID, name)
	if err != nil {
		return httptransport.CandidateResponse{}, err
	}
	return mapCandidate(view), nil
}

func (h Handler) GetVoterHandler(ctx context.Context, pollID uint64, voter string) (httptransport.VoterResponse, error) {
	voterAddr, err := address.Parse(strings.TrimSpace(voter))
	if err != nil {
		return httptransport.VoterResponse{}, err
	}
	view, err := h.Accounts.GetVoter(ctx, pollID, voterAddr)
	if err != nil {
		return httptransport.VoterResponse{}, err
	}
	return httptransport.VoterResponse{
		PollID:       view.PollID,
		Voter:        view.Voter.String(),
		State:        string(view.State),
		VoterAccount: mapDerived(view.VoterAccount),
	}, nil
}

// AddressesHandler derives record addresses without touching storage. Empty
// candidateName or voter leaves the matching entry out.
func (h Handler) AddressesHandler(pollID uint64, candidateName string, voter string) (httptransport.AddressesResponse, error) {
	var namePtr *string
	if candidateName != "" {
		namePtr = &candidateName
	}
	voterPtr, err := parseOptional(voter)
	if err != nil {
		return httptransport.AddressesResponse{}, err
	}
	set := h.Accounts.DeriveAddresses(pollID, namePtr, voterPtr)
	resp := httptransport.AddressesResponse{
		ProgramID: h.Accounts.Program.ID.String(),
		PollID:    set.PollID,
		Poll:      mapDerived(set.Poll),
	}
	if set.Candidate != nil {
		item := mapDerived(*set.Candidate)
		resp.Candidate = &item
	}
	if set.Voter != nil {
		item := mapDerived(*set.Voter)
		resp.Voter = &item
	}
	return resp, nil
}

func parseOptional(value string) (*address.Address, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parsed, err := address.Parse(value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func mapDerived(derived address.Derived) httptransport.DerivedAccount {
	return httptransport.DerivedAccount{
		Address: derived.Address.String(),
		Bump:    derived.Bump,
	}
}

func mapPoll(view queries.PollView) httptransport.PollResponse {
	return httptransport.PollResponse{
		PollID:         view.Poll.PollID,
		Description:    view.Poll.Description,
		StartTime:      view.Poll.StartTime,
		EndTime:        view.Poll.EndTime,
		CandidateCount: view.Poll.CandidateCount,
		Creator:        view.Poll.Creator.String(),
		PollAccount:    mapDerived(view.PollAccount),
	}
}

func mapCandidate(view queries.CandidateView) httptransport.CandidateResponse {
	return httptransport.CandidateResponse{
		PollID:           view.PollID,
		CandidateName:    view.Candidate.Name,
		VoteCount:        view.Candidate.VoteCount,
		CandidateAccount: mapDerived(view.CandidateAccount),
	}
}
