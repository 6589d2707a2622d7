// Package records holds the on-ledger byte layout of poll program records:
// an 8-byte discriminator followed by fields in declaration order, integers
// little-endian, strings as a u32 length prefix plus raw bytes. Records are
// stored in a fixed allocation padded with zeros.
package records

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"agora/contexts/governance/poll-program/domain/address"
	"agora/contexts/governance/poll-program/domain/entities"
	domainerrors "agora/contexts/governance/poll-program/domain/errors"
)

const DiscriminatorSize = 8

const (
	PollSpace      = DiscriminatorSize + 8 + (4 + entities.MaxDescriptionLen) + 8 + 8 + 8 + address.Size
	CandidateSpace = DiscriminatorSize + (4 + entities.MaxCandidateNameLen) + 8
	VoterSpace     = DiscriminatorSize + 8 + address.Size
)

type Kind string

const (
	KindPoll      Kind = "Poll"
	KindCandidate Kind = "Candidate"
	KindVoter     Kind = "Voter"
)

var (
	PollDiscriminator      = discriminator(KindPoll)
	CandidateDiscriminator = discriminator(KindCandidate)
	VoterDiscriminator     = discriminator(KindVoter)
)

func discriminator(kind Kind) [DiscriminatorSize]byte {
	sum := sha256.Sum256([]byte("account:" + string(kind)))
	var out [DiscriminatorSize]byte
	copy(out[:], sum[:DiscriminatorSize])
	return out
}

// KindOf inspects the discriminator of raw record data.
func KindOf(data []byte) (Kind, bool) {
	if len(data) < DiscriminatorSize {
		return "", false
	}
	var disc [DiscriminatorSize]byte
	copy(disc[:], data[:DiscriminatorSize])
	switch disc {
	case PollDiscriminator:
		return KindPoll, true
	case CandidateDiscriminator:
		return KindCandidate, true
	case VoterDiscriminator:
		return KindVoter, true
	default:
		return "", false
	}
}

func EncodePoll(poll entities.Poll) ([]byte, error) {
	if len(poll.Description) > entities.MaxDescriptionLen {
		return nil, fmt.Errorf("%w: %d bytes, max %d", domainerrors.ErrDescriptionTooLong, len(poll.Description), entities.MaxDescriptionLen)
	}
	w := newWriter(PollSpace, PollDiscriminator)
	w.u64(poll.PollID)
	w.str(poll.Description)
	w.u64(poll.StartTime)
	w.u64(poll.EndTime)
	w.u64(poll.CandidateCount)
	w.key(poll.Creator)
	return w.buf, nil
}

func DecodePoll(data []byte) (entities.Poll, error) {
	r, err := newReader(data, PollDiscriminator)
	if err != nil {
		return entities.Poll{}, err
	}
	poll := entities.Poll{
		PollID:         r.u64(),
		Description:    r.str(),
		StartTime:      r.u64(),
		EndTime:        r.u64(),
		CandidateCount: r.u64(),
		Creator:        r.key(),
	}
	if r.err != nil {
		return entities.Poll{}, r.err
	}
	return poll, nil
}

func EncodeCandidate(candidate entities.Candidate) ([]byte, error) {
	if len(candidate.Name) > entities.MaxCandidateNameLen {
		return nil, fmt.Errorf("%w: %d bytes, max %d", domainerrors.ErrCandidateNameTooLong, len(candidate.Name), entities.MaxCandidateNameLen)
	}
	w := newWriter(CandidateSpace, CandidateDiscriminator)
	w.str(candidate.Name)
	w.u64(candidate.VoteCount)
	return w.buf, nil
}

func DecodeCandidate(data []byte) (entities.Candidate, error) {
	r, err := newReader(data, CandidateDiscriminator)
	if err != nil {
		return entities.Candidate{}, err
	}
	candidate := entities.Candidate{
		Name:      r.str(),
		VoteCount: r.u64(),
	}
	if r.err != nil {
		return entities.Candidate{}, r.err
	}
	return candidate, nil
}

func EncodeVoteReceipt(receipt entities.VoteReceipt) ([]byte, error) {
	w := newWriter(VoterSpace, VoterDiscriminator)
	w.u64(receipt.PollID)
	w.key(receipt.Voter)
	return w.buf, nil
}

func DecodeVoteReceipt(data []byte) (entities.VoteReceipt, error) {
	r, err := newReader(data, VoterDiscriminator)
	if err != nil {
		return entities.VoteReceipt{}, err
	}
	receipt := entities.VoteReceipt{
		PollID: r.u64(),
		Voter:  r.key(),
	}
	if r.err != nil {
		return entities.VoteReceipt{}, r.err
	}
	return receipt, nil
}

type writer struct {
	buf []byte
	off int
}

func newWriter(space int, disc [DiscriminatorSize]byte) *writer {
	w := &writer{buf: make([]byte, space)}
	copy(w.buf, disc[:])
	w.off = DiscriminatorSize
	return w
}

func (w *writer) u64(v uint64) {
	binary.LittleEndian.PutUint64(w.buf[w.off:], v)
	w.off += 8
}

func (w *writer) str(v string) {
	binary.LittleEndian.PutUint32(w.buf[w.off:], uint32(len(v)))
	w.off += 4
	w.off += copy(w.buf[w.off:], v)
}

func (w *writer) key(v address.Address) {
	w.off += copy(w.buf[w.off:], v[:])
}

type reader struct {
	data []byte
	off  int
	err  error
}

func newReader(data []byte, want [DiscriminatorSize]byte) (*reader, error) {
	if len(data) < DiscriminatorSize {
		return nil, domainerrors.ErrAccountDiscriminatorMismatch
	}
	var disc [DiscriminatorSize]byte
	copy(disc[:], data[:DiscriminatorSize])
	if disc != want {
		return nil, domainerrors.ErrAccountDiscriminatorMismatch
	}
	return &reader{data: data, off: DiscriminatorSize}, nil
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || len(r.data)-r.off < n {
		r.err = fmt.Errorf("%w: need %d bytes at offset %d, have %d", domainerrors.ErrAccountDidNotDeserialize, n, r.off, len(r.data))
		return nil
	}
	out := r.data[r.off : r.off+n]
	r.off += n
	return out
}

func (r *reader) u64() uint64 {
	raw := r.take(8)
	if raw == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(raw)
}

func (r *reader) str() string {
	raw := r.take(4)
	if raw == nil {
		return ""
	}
	size := binary.LittleEndian.Uint32(raw)
	if uint64(size) > uint64(len(r.data)) {
		r.err = fmt.Errorf("%w: string length %d exceeds record", domainerrors.ErrAccountDidNotDeserialize, size)
		return ""
	}
	return string(r.take(int(size)))
}

func (r *reader) key() address.Address {
	var out address.Address
	copy(out[:], r.take(address.Size))
	return out
}
