package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	application "agora/contexts/governance/poll-program/application"
	"agora/contexts/governance/poll-program/domain/address"
	"agora/contexts/governance/poll-program/domain/entities"
	domainerrors "agora/contexts/governance/poll-program/domain/errors"
	"agora/contexts/governance/poll-program/domain/records"
	"agora/contexts/governance/poll-program/ports"
)

type RegisterCandidateCommand struct {
	Signer           address.Address
	PollID           uint64
	CandidateName    string
	PollAccount      *address.Address
	CandidateAccount *address.Address
}

type RegisterCandidateResult struct {
	Poll             entities.Poll
	Candidate        entities.Candidate
	CandidateAccount address.Derived
}

// CandidateUseCase registers candidates under a poll on behalf of its creator.
type CandidateUseCase struct {
	Ledger  ports.Ledger
	Program address.Program
	Logger  *slog.Logger
}

// RegisterCandidate bumps the poll's candidate count and creates the
// candidate record in one atomic unit, so a duplicate name rolls the count
// back along with the failed create.
func (uc CandidateUseCase) RegisterCandidate(ctx context.Context, cmd RegisterCandidateCommand) (RegisterCandidateResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	logger.Info("candidate register processing started",
		"event", "poll_program_candidate_register_started",
		"module", application.ModuleName,
		"layer", "application",
		"poll_id", cmd.PollID,
		"candidate_name", cmd.CandidateName,
		"signer", cmd.Signer.String(),
	)
	if cmd.Signer.IsZero() {
		return RegisterCandidateResult{}, domainerrors.ErrInvalidSigner
	}

	pollAccount := uc.Program.Poll(cmd.PollID)
	candidateAccount := uc.Program.Candidate(cmd.PollID, cmd.CandidateName)
	if err := verifyAddress("poll_account", cmd.PollAccount, pollAccount); err != nil {
		return RegisterCandidateResult{}, err
	}
	if err := verifyAddress("candidate_account", cmd.CandidateAccount, candidateAccount); err != nil {
		return RegisterCandidateResult{}, err
	}

	var result RegisterCandidateResult
	err := uc.Ledger.Execute(ctx, func(ctx context.Context, tx ports.AccountTx) error {
		pollHandle, poll, err := loadPoll(ctx, tx, pollAccount.Address)
		if err != nil {
			return err
		}
		if poll.PollID != cmd.PollID {
			return domainerrors.ErrPollMismatch
		}
		if poll.Creator != cmd.Signer {
			return domainerrors.ErrUnauthorized
		}

		poll.CandidateCount, err = increment(poll.CandidateCount)
		if err != nil {
			return err
		}
		if pollHandle.Data, err = records.EncodePoll(poll); err != nil {
			return err
		}

		candidateHandle, err := tx.CreateIfAbsent(ctx, candidateAccount.Address, nil)
		if err != nil {
			return err
		}
		candidate := entities.Candidate{Name: cmd.CandidateName, VoteCount: 0}
		if candidateHandle.Data, err = records.EncodeCandidate(candidate); err != nil {
			return err
		}

		result = RegisterCandidateResult{
			Poll:             poll,
			Candidate:        candidate,
			CandidateAccount: candidateAccount,
		}
		return nil
	})
	if err != nil {
		level := slog.LevelWarn
		if !isDomainRejection(err) {
			level = slog.LevelError
		}
		logger.Log(ctx, level, "candidate register rejected",
			"event", "poll_program_candidate_register_rejected",
			"module", application.ModuleName,
			"layer", "application",
			"poll_id", cmd.PollID,
			"candidate_name", cmd.CandidateName,
			"candidate_account", candidateAccount.Address.String(),
			"error", err.Error(),
		)
		return RegisterCandidateResult{}, err
	}

	logger.Info("candidate created",
		"event", "poll_program_candidate_created",
		"module", application.ModuleName,
		"layer", "application",
		"poll_id", cmd.PollID,
		"candidate_name", cmd.CandidateName,
		"candidate_account", candidateAccount.Address.String(),
		"candidate_count", result.Poll.CandidateCount,
		"program_log", fmt.Sprintf("Candidate '%s' created", cmd.CandidateName),
	)
	return result, nil
}

// isDomainRejection separates caller mistakes from infrastructure failures
// for log levels.
func isDomainRejection(err error) bool {
	for _, target := range []error{
		domainerrors.ErrPollMismatch,
		domainerrors.ErrPollNotActive,
		domainerrors.ErrUnauthorized,
		domainerrors.ErrAlreadyVoted,
		domainerrors.ErrAddressInUse,
		domainerrors.ErrAccountNotFound,
		domainerrors.ErrConstraintSeeds,
		domainerrors.ErrDescriptionTooLong,
		domainerrors.ErrCandidateNameTooLong,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
