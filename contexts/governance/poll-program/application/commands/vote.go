package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	application "agora/contexts/governance/poll-program/application"
	"agora/contexts/governance/poll-program/domain/address"
	"agora/contexts/governance/poll-program/domain/entities"
	domainerrors "agora/contexts/governance/poll-program/domain/errors"
	"agora/contexts/governance/poll-program/domain/records"
	"agora/contexts/governance/poll-program/ports"
)

type CastVoteCommand struct {
	Signer           address.Address
	PollID           uint64
	CandidateName    string
	PollAccount      *address.Address
	CandidateAccount *address.Address
	VoterAccount     *address.Address
}

type CastVoteResult struct {
	Candidate        entities.Candidate
	Receipt          entities.VoteReceipt
	CandidateAccount address.Derived
	VoterAccount     address.Derived
	VotedAt          uint64
}

// VoteUseCase records one vote per identity per poll.
type VoteUseCase struct {
	Ledger  ports.Ledger
	Program address.Program
	Clock   ports.Clock
	Logger  *slog.Logger
}

// CastVote validates the voting window, then creates the vote receipt at
// (poll_id, signer). The create is the only double-vote guard: a second
// attempt hits an occupied address and the whole unit aborts, leaving the
// candidate tally untouched.
func (uc VoteUseCase) CastVote(ctx context.Context, cmd CastVoteCommand) (CastVoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	logger.Info("vote cast processing started",
		"event", "poll_program_vote_cast_started",
		"module", application.ModuleName,
		"layer", "application",
		"poll_id", cmd.PollID,
		"candidate_name", cmd.CandidateName,
		"signer", cmd.Signer.String(),
	)
	if cmd.Signer.IsZero() {
		return CastVoteResult{}, domainerrors.ErrInvalidSigner
	}

	pollAccount := uc.Program.Poll(cmd.PollID)
	candidateAccount := uc.Program.Candidate(cmd.PollID, cmd.CandidateName)
	voterAccount := uc.Program.VoteReceipt(cmd.PollID, cmd.Signer)
	for _, check := range []struct {
		name     string
		supplied *address.Address
		derived  address.Derived
	}{
		{"poll_account", cmd.PollAccount, pollAccount},
		{"candidate_account", cmd.CandidateAccount, candidateAccount},
		{"voter_account", cmd.VoterAccount, voterAccount},
	} {
		if err := verifyAddress(check.name, check.supplied, check.derived); err != nil {
			return CastVoteResult{}, err
		}
	}
	logger.Debug("voter account derived",
		"event", "poll_program_voter_account_derived",
		"module", application.ModuleName,
		"layer", "application",
		"poll_id", cmd.PollID,
		"voter_account", voterAccount.Address.String(),
		"bump", voterAccount.Bump,
	)

	now := uint64(uc.now().Unix())
	var result CastVoteResult
	err := uc.Ledger.Execute(ctx, func(ctx context.Context, tx ports.AccountTx) error {
		_, poll, err := loadPoll(ctx, tx, pollAccount.Address)
		if err != nil {
			return err
		}
		if !poll.IsActive(now) {
			return domainerrors.ErrPollNotActive
		}

		candidateHandle, candidate, err := loadCandidate(ctx, tx, candidateAccount.Address)
		if err != nil {
			return err
		}

		voterHandle, err := tx.CreateIfAbsent(ctx, voterAccount.Address, nil)
		if err != nil {
			if errors.Is(err, domainerrors.ErrAddressInUse) {
				return fmt.Errorf("%w: %w", domainerrors.ErrAlreadyVoted, err)
			}
			return err
		}

		candidate.VoteCount, err = increment(candidate.VoteCount)
		if err != nil {
			return err
		}
		if candidateHandle.Data, err = records.EncodeCandidate(candidate); err != nil {
			return err
		}
		receipt := entities.VoteReceipt{PollID: cmd.PollID, Voter: cmd.Signer}
		if voterHandle.Data, err = records.EncodeVoteReceipt(receipt); err != nil {
			return err
		}

		result = CastVoteResult{
			Candidate:        candidate,
			Receipt:          receipt,
			CandidateAccount: candidateAccount,
			VoterAccount:     voterAccount,
			VotedAt:          now,
		}
		return nil
	})
	if err != nil {
		level := slog.LevelWarn
		if !isDomainRejection(err) {
			level = slog.LevelError
		}
		logger.Log(ctx, level, "vote cast rejected",
			"event", "poll_program_vote_cast_rejected",
			"module", application.ModuleName,
			"layer", "application",
			"poll_id", cmd.PollID,
			"candidate_name", cmd.CandidateName,
			"signer", cmd.Signer.String(),
			"current_time", now,
			"error", err.Error(),
		)
		return CastVoteResult{}, err
	}

	logger.Info("vote registered",
		"event", "poll_program_vote_registered",
		"module", application.ModuleName,
		"layer", "application",
		"poll_id", cmd.PollID,
		"candidate_name", cmd.CandidateName,
		"vote_count", result.Candidate.VoteCount,
		"voter_account", voterAccount.Address.String(),
		"program_log", fmt.Sprintf("Vote registered for candidate '%s' in poll '%d'. Total votes: %d",
			cmd.CandidateName, cmd.PollID, result.Candidate.VoteCount),
	)
	return result, nil
}

func (uc VoteUseCase) now() time.Time {
	if uc.Clock == nil {
		return time.Now().UTC()
	}
	return uc.Clock.Now().UTC()
}
