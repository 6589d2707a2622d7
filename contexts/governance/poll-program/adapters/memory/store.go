package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"agora/contexts/governance/poll-program/domain/address"
	domainerrors "agora/contexts/governance/poll-program/domain/errors"
	"agora/contexts/governance/poll-program/ports"
)

// Store is an in-memory ledger. Atomic units run one at a time under the
// write lock and stage their writes until fn returns.
type Store struct {
	mu       sync.RWMutex
	accounts map[address.Address][]byte
}

func NewStore() *Store {
	return &Store{
		accounts: make(map[address.Address][]byte),
	}
}

func (s *Store) Execute(ctx context.Context, fn func(ctx context.Context, tx ports.AccountTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	u := &unit{
		committed: s.accounts,
		handles:   make(map[address.Address]*ports.Account),
	}
	if err := fn(ctx, u); err != nil {
		return err
	}
	for addr, handle := range u.handles {
		s.accounts[addr] = clone(handle.Data)
	}
	return nil
}

func (s *Store) Read(_ context.Context, addr address.Address) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.accounts[addr]
	if !ok {
		return nil, domainerrors.ErrAccountNotFound
	}
	return clone(data), nil
}

func (s *Store) Has(addr address.Address) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.accounts[addr]
	return ok
}

func (s *Store) Addresses() []address.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]address.Address, 0, len(s.accounts))
	for addr := range s.accounts {
		items = append(items, addr)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].String() < items[j].String()
	})
	return items
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

type unit struct {
	committed map[address.Address][]byte
	handles   map[address.Address]*ports.Account
}

func (u *unit) CreateIfAbsent(_ context.Context, addr address.Address, initial []byte) (*ports.Account, error) {
	if _, ok := u.committed[addr]; ok {
		return nil, domainerrors.ErrAddressInUse
	}
	if _, ok := u.handles[addr]; ok {
		return nil, domainerrors.ErrAddressInUse
	}
	handle := &ports.Account{Address: addr, Data: clone(initial)}
	u.handles[addr] = handle
	return handle, nil
}

func (u *unit) LoadMutable(_ context.Context, addr address.Address) (*ports.Account, error) {
	if handle, ok := u.handles[addr]; ok {
		return handle, nil
	}
	data, ok := u.committed[addr]
	if !ok {
		return nil, domainerrors.ErrAccountNotFound
	}
	handle := &ports.Account{Address: addr, Data: clone(data)}
	u.handles[addr] = handle
	return handle, nil
}

func clone(data []byte) []byte {
	if data == nil {
		return []byte{}
	}
	return append([]byte(nil), data...)
}

var _ ports.Ledger = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
