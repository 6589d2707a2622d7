package queries

import (
	"context"
	"errors"
	"testing"

	"agora/contexts/governance/poll-program/adapters/memory"
	"agora/contexts/governance/poll-program/domain/address"
	"agora/contexts/governance/poll-program/domain/entities"
	domainerrors "agora/contexts/governance/poll-program/domain/errors"
	"agora/contexts/governance/poll-program/domain/records"
	"agora/contexts/governance/poll-program/ports"
)

var creator = address.MustParse("SeedPubey1111111111111111111111111111111111")

func seed(t *testing.T, store *memory.Store, addr address.Address, data []byte) {
	t.Helper()
	err := store.Execute(context.Background(), func(ctx context.Context, tx ports.AccountTx) error {
		_, err := tx.CreateIfAbsent(ctx, addr, data)
		return err
	})
	if err != nil {
		t.Fatalf("seed %s failed: %v", addr, err)
	}
}

func TestGetPollDecodesStoredRecord(t *testing.T) {
	store := memory.NewStore()
	program := address.NewProgram(address.DefaultProgramID)
	data, err := records.EncodePoll(entities.Poll{
		PollID:         1,
		Description:    "Test Poll",
		StartTime:      100,
		EndTime:        200,
		CandidateCount: 2,
		Creator:        creator,
	})
	if err != nil {
		t.Fatalf("encode poll failed: %v", err)
	}
	seed(t, store, program.Poll(1).Address, data)

	uc := AccountsUseCase{Ledger: store, Program: program}
	view, err := uc.GetPoll(context.Background(), 1)
	if err != nil {
		t.Fatalf("get poll failed: %v", err)
	}
	if view.Poll.CandidateCount != 2 || view.Poll.Creator != creator {
		t.Fatalf("unexpected poll: %+v", view.Poll)
	}
	if view.PollAccount.Address.String() != "9ppcerwKJoDMGBpfRqQwrdTtxjTqYDsPEsPfCWMfXfW5" || view.PollAccount.Bump != 254 {
		t.Fatalf("unexpected poll account: %s bump %d", view.PollAccount.Address, view.PollAccount.Bump)
	}

	if _, err := uc.GetPoll(context.Background(), 2); !errors.Is(err, domainerrors.ErrAccountNotFound) {
		t.Fatalf("expected account not found, got %v", err)
	}
}

func TestGetCandidateRejectsWrongRecordKind(t *testing.T) {
	store := memory.NewStore()
	program := address.NewProgram(address.DefaultProgramID)
	// A poll record sitting at a candidate address must not decode.
	data, err := records.EncodePoll(entities.Poll{PollID: 1, Creator: creator})
	if err != nil {
		t.Fatalf("encode poll failed: %v", err)
	}
	seed(t, store, program.Candidate(1, "Alice").Address, data)

	uc := AccountsUseCase{Ledger: store, Program: program}
	if _, err := uc.GetCandidate(context.Background(), 1, "Alice"); !errors.Is(err, domainerrors.ErrAccountDiscriminatorMismatch) {
		t.Fatalf("expected discriminator mismatch, got %v", err)
	}
}

func TestGetVoterReportsBothStates(t *testing.T) {
	store := memory.NewStore()
	program := address.NewProgram(address.DefaultProgramID)
	uc := AccountsUseCase{Ledger: store, Program: program}

	view, err := uc.GetVoter(context.Background(), 1, creator)
	if err != nil {
		t.Fatalf("get voter failed: %v", err)
	}
	if view.State != entities.VoterStateNotVoted {
		t.Fatalf("expected not voted, got %s", view.State)
	}

	data, err := records.EncodeVoteReceipt(entities.VoteReceipt{PollID: 1, Voter: creator})
	if err != nil {
		t.Fatalf("encode receipt failed: %v", err)
	}
	seed(t, store, program.VoteReceipt(1, creator).Address, data)

	voted, err := uc.HasVoted(context.Background(), 1, creator)
	if err != nil {
		t.Fatalf("has voted failed: %v", err)
	}
	if !voted {
		t.Fatalf("expected voted after receipt exists")
	}
	other, err := uc.HasVoted(context.Background(), 2, creator)
	if err != nil {
		t.Fatalf("has voted failed: %v", err)
	}
	if other {
		t.Fatalf("expected receipt to be scoped to poll 1")
	}
}

func TestDeriveAddressesFillsOptionalEntries(t *testing.T) {
	uc := AccountsUseCase{Program: address.NewProgram(address.DefaultProgramID)}

	bare := uc.DeriveAddresses(1, nil, nil)
	if bare.Candidate != nil || bare.Voter != nil {
		t.Fatalf("expected only the poll address, got %+v", bare)
	}

	name := "Alice"
	full := uc.DeriveAddresses(1, &name, &creator)
	if full.Candidate == nil || full.Candidate.Address.String() != "5JYwZuj39aRaHkqWy5JTdhXLcKqYooWd1YnfK1nXHZJu" {
		t.Fatalf("unexpected candidate address: %+v", full.Candidate)
	}
	if full.Voter == nil || full.Voter.Address != uc.Program.VoteReceipt(1, creator).Address {
		t.Fatalf("unexpected voter address: %+v", full.Voter)
	}
}
