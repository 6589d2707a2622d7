package commands

import (
	"context"
	"log/slog"

	application "agora/contexts/governance/poll-program/application"
	"agora/contexts/governance/poll-program/domain/address"
	"agora/contexts/governance/poll-program/domain/entities"
	domainerrors "agora/contexts/governance/poll-program/domain/errors"
	"agora/contexts/governance/poll-program/domain/records"
	"agora/contexts/governance/poll-program/ports"
)

// CreatePollCommand is the write-model input for poll creation. PollAccount
// is optional and, when set, must equal the derived poll address.
type CreatePollCommand struct {
	Signer      address.Address
	PollID      uint64
	Description string
	StartTime   uint64
	EndTime     uint64
	PollAccount *address.Address
}

type CreatePollResult struct {
	Poll        entities.Poll
	PollAccount address.Derived
}

// PollUseCase creates polls. Uniqueness of poll ids comes from the record
// store refusing a second create at the derived poll address.
type PollUseCase struct {
	Ledger  ports.Ledger
	Program address.Program
	Logger  *slog.Logger
}

// CreatePoll stores a poll with a zero candidate count owned by the signer.
// The voting window is accepted as given, including start after end.
func (uc PollUseCase) CreatePoll(ctx context.Context, cmd CreatePollCommand) (CreatePollResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	logger.Info("poll create processing started",
		"event", "poll_program_poll_create_started",
		"module", application.ModuleName,
		"layer", "application",
		"poll_id", cmd.PollID,
		"signer", cmd.Signer.String(),
	)
	if cmd.Signer.IsZero() {
		return CreatePollResult{}, domainerrors.ErrInvalidSigner
	}

	pollAccount := uc.Program.Poll(cmd.PollID)
	if err := verifyAddress("poll_account", cmd.PollAccount, pollAccount); err != nil {
		logger.Warn("poll create address constraint failed",
			"event", "poll_program_poll_create_constraint_failed",
			"module", application.ModuleName,
			"layer", "application",
			"poll_id", cmd.PollID,
			"error", err.Error(),
		)
		return CreatePollResult{}, err
	}

	poll := entities.Poll{
		PollID:         cmd.PollID,
		Description:    cmd.Description,
		StartTime:      cmd.StartTime,
		EndTime:        cmd.EndTime,
		CandidateCount: 0,
		Creator:        cmd.Signer,
	}
	err := uc.Ledger.Execute(ctx, func(ctx context.Context, tx ports.AccountTx) error {
		handle, err := tx.CreateIfAbsent(ctx, pollAccount.Address, nil)
		if err != nil {
			return err
		}
		data, err := records.EncodePoll(poll)
		if err != nil {
			return err
		}
		handle.Data = data
		return nil
	})
	if err != nil {
		level := slog.LevelWarn
		if !isDomainRejection(err) {
			level = slog.LevelError
		}
		logger.Log(ctx, level, "poll create rejected",
			"event", "poll_program_poll_create_rejected",
			"module", application.ModuleName,
			"layer", "application",
			"poll_id", cmd.PollID,
			"poll_account", pollAccount.Address.String(),
			"error", err.Error(),
		)
		return CreatePollResult{}, err
	}

	logger.Info("poll created",
		"event", "poll_program_poll_created",
		"module", application.ModuleName,
		"layer", "application",
		"poll_id", poll.PollID,
		"poll_account", pollAccount.Address.String(),
		"bump", pollAccount.Bump,
		"creator", poll.Creator.String(),
		"start_time", poll.StartTime,
		"end_time", poll.EndTime,
	)
	return CreatePollResult{Poll: poll, PollAccount: pollAccount}, nil
}
