package ports

import (
	"context"
	"time"

	"agora/contexts/governance/poll-program/domain/address"
)

// Account is a handle to one record inside an atomic unit. Writes to Data are
// persisted when the unit commits and discarded when it aborts.
type Account struct {
	Address address.Address
	Data    []byte
}

// AccountTx is the record access available inside one atomic unit.
type AccountTx interface {
	// CreateIfAbsent fails with ErrAddressInUse when the address is occupied.
	CreateIfAbsent(ctx context.Context, addr address.Address, initial []byte) (*Account, error)
	// LoadMutable fails with ErrAccountNotFound when the address is empty.
	LoadMutable(ctx context.Context, addr address.Address) (*Account, error)
}

// Ledger is the record store. Execute runs fn as one atomic unit: every
// create and mutation applies when fn returns nil, none apply otherwise.
// Units touching the same records are serialized by the store.
type Ledger interface {
	Execute(ctx context.Context, fn func(ctx context.Context, tx AccountTx) error) error
	Read(ctx context.Context, addr address.Address) ([]byte, error)
}

type Clock interface {
	Now() time.Time
}
