package commands

import (
	"context"
	"fmt"
	"math"

	"agora/contexts/governance/poll-program/domain/address"
	"agora/contexts/governance/poll-program/domain/entities"
	domainerrors "agora/contexts/governance/poll-program/domain/errors"
	"agora/contexts/governance/poll-program/domain/records"
	"agora/contexts/governance/poll-program/ports"
)

// verifyAddress rejects a client-supplied address that differs from the
// derivation. A nil supplied address means the client left it to us.
func verifyAddress(account string, supplied *address.Address, derived address.Derived) error {
	if supplied == nil || *supplied == derived.Address {
		return nil
	}
	return fmt.Errorf("%w: %s expected %s, got %s", domainerrors.ErrConstraintSeeds, account, derived.Address, supplied)
}

func loadPoll(ctx context.Context, tx ports.AccountTx, addr address.Address) (*ports.Account, entities.Poll, error) {
	handle, err := tx.LoadMutable(ctx, addr)
	if err != nil {
		return nil, entities.Poll{}, err
	}
	poll, err := records.DecodePoll(handle.Data)
	if err != nil {
		return nil, entities.Poll{}, err
	}
	return handle, poll, nil
}

func loadCandidate(ctx context.Context, tx ports.AccountTx, addr address.Address) (*ports.Account, entities.Candidate, error) {
	handle, err := tx.LoadMutable(ctx, addr)
	if err != nil {
		return nil, entities.Candidate{}, err
	}
	candidate, err := records.DecodeCandidate(handle.Data)
	if err != nil {
		return nil, entities.Candidate{}, err
	}
	return handle, candidate, nil
}

func increment(value uint64) (uint64, error) {
	if value == math.MaxUint64 {
		return 0, domainerrors.ErrArithmeticOverflow
	}
	return value + 1, nil
}
