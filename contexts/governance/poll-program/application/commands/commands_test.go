package commands

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"agora/contexts/governance/poll-program/adapters/memory"
	"agora/contexts/governance/poll-program/application/queries"
	"agora/contexts/governance/poll-program/domain/address"
	"agora/contexts/governance/poll-program/domain/entities"
	domainerrors "agora/contexts/governance/poll-program/domain/errors"
	"agora/contexts/governance/poll-program/domain/records"
	"agora/contexts/governance/poll-program/ports"
)

var (
	creator = address.MustParse("SeedPubey1111111111111111111111111111111111")
	voterV1 = address.DefaultProgramID
	voterV2 = address.MustParse("BPFLoaderUpgradeab1e11111111111111111111111")
)

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Set(unix int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = time.Unix(unix, 0).UTC()
}

type harness struct {
	store      *memory.Store
	clock      *fixedClock
	polls      PollUseCase
	candidates CandidateUseCase
	votes      VoteUseCase
	accounts   queries.AccountsUseCase
}

func newHarness() harness {
	store := memory.NewStore()
	clock := &fixedClock{}
	program := address.NewProgram(address.DefaultProgramID)
	return harness{
		store:      store,
		clock:      clock,
		polls:      PollUseCase{Ledger: store, Program: program},
		candidates: CandidateUseCase{Ledger: store, Program: program},
		votes:      VoteUseCase{Ledger: store, Program: program, Clock: clock},
		accounts:   queries.AccountsUseCase{Ledger: store, Program: program},
	}
}

func (h harness) createPoll(t *testing.T, pollID uint64, start, end uint64) {
	t.Helper()
	if _, err := h.polls.CreatePoll(context.Background(), CreatePollCommand{
		Signer:      creator,
		PollID:      pollID,
		Description: "Test Poll",
		StartTime:   start,
		EndTime:     end,
	}); err != nil {
		t.Fatalf("create poll failed: %v", err)
	}
}

func (h harness) register(t *testing.T, pollID uint64, name string) {
	t.Helper()
	if _, err := h.candidates.RegisterCandidate(context.Background(), RegisterCandidateCommand{
		Signer:        creator,
		PollID:        pollID,
		CandidateName: name,
	}); err != nil {
		t.Fatalf("register candidate %q failed: %v", name, err)
	}
}

func (h harness) vote(pollID uint64, name string, voter address.Address, at int64) (CastVoteResult, error) {
	h.clock.Set(at)
	return h.votes.CastVote(context.Background(), CastVoteCommand{
		Signer:        voter,
		PollID:        pollID,
		CandidateName: name,
	})
}

func (h harness) voteCount(t *testing.T, pollID uint64, name string) uint64 {
	t.Helper()
	view, err := h.accounts.GetCandidate(context.Background(), pollID, name)
	if err != nil {
		t.Fatalf("get candidate %q failed: %v", name, err)
	}
	return view.Candidate.VoteCount
}

func (h harness) candidateCount(t *testing.T, pollID uint64) uint64 {
	t.Helper()
	view, err := h.accounts.GetPoll(context.Background(), pollID)
	if err != nil {
		t.Fatalf("get poll failed: %v", err)
	}
	return view.Poll.CandidateCount
}

func TestCreatePollStoresInitialState(t *testing.T) {
	h := newHarness()
	result, err := h.polls.CreatePoll(context.Background(), CreatePollCommand{
		Signer:      creator,
		PollID:      1,
		Description: "Test Poll",
		StartTime:   100,
		EndTime:     200,
	})
	if err != nil {
		t.Fatalf("create poll failed: %v", err)
	}
	if result.PollAccount.Address != address.NewProgram(address.DefaultProgramID).Poll(1).Address {
		t.Fatalf("expected derived poll account, got %s", result.PollAccount.Address)
	}

	view, err := h.accounts.GetPoll(context.Background(), 1)
	if err != nil {
		t.Fatalf("get poll failed: %v", err)
	}
	if view.Poll.PollID != 1 || view.Poll.Description != "Test Poll" || view.Poll.CandidateCount != 0 {
		t.Fatalf("unexpected poll: %+v", view.Poll)
	}
	if view.Poll.Creator != creator {
		t.Fatalf("expected creator %s, got %s", creator, view.Poll.Creator)
	}
}

func TestCreatePollTwiceFailsAndKeepsFirstPoll(t *testing.T) {
	h := newHarness()
	h.createPoll(t, 1, 100, 200)

	_, err := h.polls.CreatePoll(context.Background(), CreatePollCommand{
		Signer:      voterV1,
		PollID:      1,
		Description: "Hijack",
		StartTime:   0,
		EndTime:     1,
	})
	if !errors.Is(err, domainerrors.ErrAddressInUse) {
		t.Fatalf("expected address in use, got %v", err)
	}

	view, err := h.accounts.GetPoll(context.Background(), 1)
	if err != nil {
		t.Fatalf("get poll failed: %v", err)
	}
	if view.Poll.Description != "Test Poll" || view.Poll.Creator != creator || view.Poll.StartTime != 100 {
		t.Fatalf("expected first poll unchanged, got %+v", view.Poll)
	}
}

func TestCreatePollRejectsOversizedDescription(t *testing.T) {
	h := newHarness()
	_, err := h.polls.CreatePoll(context.Background(), CreatePollCommand{
		Signer:      creator,
		PollID:      3,
		Description: strings.Repeat("d", entities.MaxDescriptionLen+1),
	})
	if !errors.Is(err, domainerrors.ErrDescriptionTooLong) {
		t.Fatalf("expected description too long, got %v", err)
	}
	if _, err := h.accounts.GetPoll(context.Background(), 3); !errors.Is(err, domainerrors.ErrAccountNotFound) {
		t.Fatalf("expected no poll record after abort, got %v", err)
	}
}

func TestCreatePollAcceptsInvertedWindowButNeverOpens(t *testing.T) {
	h := newHarness()
	h.createPoll(t, 4, 200, 100)
	h.register(t, 4, "Alice")

	for _, at := range []int64{50, 100, 150, 200, 250} {
		if _, err := h.vote(4, "Alice", voterV1, at); !errors.Is(err, domainerrors.ErrPollNotActive) {
			t.Fatalf("expected poll not active at %d, got %v", at, err)
		}
	}
}

func TestCreatePollRejectsMismatchedSuppliedAddress(t *testing.T) {
	h := newHarness()
	wrong := address.NewProgram(address.DefaultProgramID).Poll(2).Address
	_, err := h.polls.CreatePoll(context.Background(), CreatePollCommand{
		Signer:      creator,
		PollID:      1,
		PollAccount: &wrong,
	})
	if !errors.Is(err, domainerrors.ErrConstraintSeeds) {
		t.Fatalf("expected seeds constraint, got %v", err)
	}

	right := address.NewProgram(address.DefaultProgramID).Poll(1).Address
	if _, err := h.polls.CreatePoll(context.Background(), CreatePollCommand{
		Signer:      creator,
		PollID:      1,
		PollAccount: &right,
	}); err != nil {
		t.Fatalf("expected matching supplied address to pass, got %v", err)
	}
}

func TestCommandsRejectZeroSigner(t *testing.T) {
	h := newHarness()
	if _, err := h.polls.CreatePoll(context.Background(), CreatePollCommand{PollID: 1}); !errors.Is(err, domainerrors.ErrInvalidSigner) {
		t.Fatalf("expected invalid signer, got %v", err)
	}
	if _, err := h.vote(1, "Alice", address.Address{}, 150); !errors.Is(err, domainerrors.ErrInvalidSigner) {
		t.Fatalf("expected invalid signer on vote, got %v", err)
	}
}

func TestRegisterCandidateDuplicateKeepsCountAtOne(t *testing.T) {
	h := newHarness()
	h.createPoll(t, 1, 100, 200)
	h.register(t, 1, "Alice")

	_, err := h.candidates.RegisterCandidate(context.Background(), RegisterCandidateCommand{
		Signer:        creator,
		PollID:        1,
		CandidateName: "Alice",
	})
	if !errors.Is(err, domainerrors.ErrAddressInUse) {
		t.Fatalf("expected address in use, got %v", err)
	}
	if got := h.candidateCount(t, 1); got != 1 {
		t.Fatalf("expected duplicate to roll back the increment, got candidate_count %d", got)
	}
}

func TestRegisterCandidateRequiresCreator(t *testing.T) {
	h := newHarness()
	h.createPoll(t, 1, 100, 200)

	_, err := h.candidates.RegisterCandidate(context.Background(), RegisterCandidateCommand{
		Signer:        voterV1,
		PollID:        1,
		CandidateName: "Mallory",
	})
	if !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if got := h.candidateCount(t, 1); got != 0 {
		t.Fatalf("expected candidate_count 0, got %d", got)
	}
	if _, err := h.accounts.GetCandidate(context.Background(), 1, "Mallory"); !errors.Is(err, domainerrors.ErrAccountNotFound) {
		t.Fatalf("expected no candidate record, got %v", err)
	}
}

func TestRegisterCandidateDetectsPollMismatch(t *testing.T) {
	h := newHarness()
	program := address.NewProgram(address.DefaultProgramID)
	// A record at poll 1's address that claims to be poll 2.
	err := h.store.Execute(context.Background(), func(ctx context.Context, tx ports.AccountTx) error {
		data, err := records.EncodePoll(entities.Poll{PollID: 2, Creator: creator, StartTime: 0, EndTime: 10})
		if err != nil {
			return err
		}
		_, err = tx.CreateIfAbsent(ctx, program.Poll(1).Address, data)
		return err
	})
	if err != nil {
		t.Fatalf("seed mismatched poll failed: %v", err)
	}

	_, err = h.candidates.RegisterCandidate(context.Background(), RegisterCandidateCommand{
		Signer:        creator,
		PollID:        1,
		CandidateName: "Alice",
	})
	if !errors.Is(err, domainerrors.ErrPollMismatch) {
		t.Fatalf("expected poll mismatch, got %v", err)
	}
}

func TestRegisterCandidateOnMissingPoll(t *testing.T) {
	h := newHarness()
	_, err := h.candidates.RegisterCandidate(context.Background(), RegisterCandidateCommand{
		Signer:        creator,
		PollID:        77,
		CandidateName: "Alice",
	})
	if !errors.Is(err, domainerrors.ErrAccountNotFound) {
		t.Fatalf("expected account not found, got %v", err)
	}
}

func TestRegisterCandidateRejectsOversizedNameAndRollsBack(t *testing.T) {
	h := newHarness()
	h.createPoll(t, 1, 100, 200)

	_, err := h.candidates.RegisterCandidate(context.Background(), RegisterCandidateCommand{
		Signer:        creator,
		PollID:        1,
		CandidateName: strings.Repeat("n", entities.MaxCandidateNameLen+1),
	})
	if !errors.Is(err, domainerrors.ErrCandidateNameTooLong) {
		t.Fatalf("expected candidate name too long, got %v", err)
	}
	if got := h.candidateCount(t, 1); got != 0 {
		t.Fatalf("expected candidate_count 0 after abort, got %d", got)
	}
}

func TestCastVoteOutsideWindowLeavesTallyUnchanged(t *testing.T) {
	h := newHarness()
	h.createPoll(t, 1, 100, 200)
	h.register(t, 1, "Alice")

	for _, at := range []int64{0, 99, 201, 10_000} {
		if _, err := h.vote(1, "Alice", voterV1, at); !errors.Is(err, domainerrors.ErrPollNotActive) {
			t.Fatalf("expected poll not active at %d, got %v", at, err)
		}
	}
	if got := h.voteCount(t, 1, "Alice"); got != 0 {
		t.Fatalf("expected vote_count 0, got %d", got)
	}
	voted, err := h.accounts.HasVoted(context.Background(), 1, voterV1)
	if err != nil {
		t.Fatalf("has voted failed: %v", err)
	}
	if voted {
		t.Fatalf("expected no receipt after rejected votes")
	}
}

func TestCastVoteWindowIsInclusive(t *testing.T) {
	h := newHarness()
	h.createPoll(t, 1, 100, 200)
	h.register(t, 1, "Alice")

	if _, err := h.vote(1, "Alice", voterV1, 100); err != nil {
		t.Fatalf("expected vote at start_time to pass, got %v", err)
	}
	if _, err := h.vote(1, "Alice", voterV2, 200); err != nil {
		t.Fatalf("expected vote at end_time to pass, got %v", err)
	}
	if got := h.voteCount(t, 1, "Alice"); got != 2 {
		t.Fatalf("expected vote_count 2, got %d", got)
	}
}

func TestCastVoteTwiceFailsWithAlreadyVoted(t *testing.T) {
	h := newHarness()
	h.createPoll(t, 1, 100, 200)
	h.register(t, 1, "Alice")

	if _, err := h.vote(1, "Alice", voterV1, 150); err != nil {
		t.Fatalf("first vote failed: %v", err)
	}
	_, err := h.vote(1, "Alice", voterV1, 151)
	if !errors.Is(err, domainerrors.ErrAlreadyVoted) {
		t.Fatalf("expected already voted, got %v", err)
	}
	if !errors.Is(err, domainerrors.ErrAddressInUse) {
		t.Fatalf("expected the store rejection to stay visible, got %v", err)
	}
	if got := h.voteCount(t, 1, "Alice"); got != 1 {
		t.Fatalf("expected vote_count 1, got %d", got)
	}
}

func TestCastVoteForUnknownCandidate(t *testing.T) {
	h := newHarness()
	h.createPoll(t, 1, 100, 200)

	if _, err := h.vote(1, "Nobody", voterV1, 150); !errors.Is(err, domainerrors.ErrAccountNotFound) {
		t.Fatalf("expected account not found, got %v", err)
	}
	voted, err := h.accounts.HasVoted(context.Background(), 1, voterV1)
	if err != nil {
		t.Fatalf("has voted failed: %v", err)
	}
	if voted {
		t.Fatalf("expected failed vote to leave no receipt")
	}
}

func TestCastVoteRejectsMismatchedVoterAccount(t *testing.T) {
	h := newHarness()
	h.createPoll(t, 1, 100, 200)
	h.register(t, 1, "Alice")
	h.clock.Set(150)

	// Supplying another voter's receipt address must not let V1 vote again.
	foreign := address.NewProgram(address.DefaultProgramID).VoteReceipt(1, voterV2).Address
	_, err := h.votes.CastVote(context.Background(), CastVoteCommand{
		Signer:        voterV1,
		PollID:        1,
		CandidateName: "Alice",
		VoterAccount:  &foreign,
	})
	if !errors.Is(err, domainerrors.ErrConstraintSeeds) {
		t.Fatalf("expected seeds constraint, got %v", err)
	}
	if got := h.voteCount(t, 1, "Alice"); got != 0 {
		t.Fatalf("expected vote_count 0, got %d", got)
	}
}

func TestPollScenarioEndToEnd(t *testing.T) {
	h := newHarness()
	h.createPoll(t, 1, 100, 200)
	h.register(t, 1, "Alice")
	h.register(t, 1, "Bob")
	if got := h.candidateCount(t, 1); got != 2 {
		t.Fatalf("expected candidate_count 2, got %d", got)
	}

	result, err := h.vote(1, "Alice", voterV1, 150)
	if err != nil {
		t.Fatalf("vote for Alice failed: %v", err)
	}
	if result.Candidate.VoteCount != 1 || result.Receipt.PollID != 1 || result.Receipt.Voter != voterV1 {
		t.Fatalf("unexpected vote result: %+v", result)
	}
	if got := h.voteCount(t, 1, "Alice"); got != 1 {
		t.Fatalf("expected Alice vote_count 1, got %d", got)
	}
	voter, err := h.accounts.GetVoter(context.Background(), 1, voterV1)
	if err != nil {
		t.Fatalf("get voter failed: %v", err)
	}
	if voter.State != entities.VoterStateVoted {
		t.Fatalf("expected receipt (1, V1) to exist, got state %s", voter.State)
	}

	_, err = h.vote(1, "Bob", voterV1, 160)
	if !errors.Is(err, domainerrors.ErrAlreadyVoted) {
		t.Fatalf("expected already voted for Bob, got %v", err)
	}
	if got := h.voteCount(t, 1, "Bob"); got != 0 {
		t.Fatalf("expected Bob vote_count 0, got %d", got)
	}
	if got := h.voteCount(t, 1, "Alice"); got != 1 {
		t.Fatalf("expected Alice vote_count to stay 1, got %d", got)
	}
}

func TestVoteReceiptIsScopedPerPoll(t *testing.T) {
	h := newHarness()
	h.createPoll(t, 1, 100, 200)
	h.createPoll(t, 2, 100, 200)
	h.register(t, 1, "Alice")
	h.register(t, 2, "Alice")

	if _, err := h.vote(1, "Alice", voterV1, 150); err != nil {
		t.Fatalf("vote in poll 1 failed: %v", err)
	}
	if _, err := h.vote(2, "Alice", voterV1, 150); err != nil {
		t.Fatalf("expected the same identity to vote in another poll, got %v", err)
	}
	if h.voteCount(t, 1, "Alice") != 1 || h.voteCount(t, 2, "Alice") != 1 {
		t.Fatalf("expected one vote per poll")
	}
}

func TestConcurrentVotesFromSameIdentityCountOnce(t *testing.T) {
	h := newHarness()
	h.createPoll(t, 1, 100, 200)
	h.register(t, 1, "Alice")
	h.clock.Set(150)

	const attempts = 32
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.votes.CastVote(context.Background(), CastVoteCommand{
				Signer:        voterV1,
				PollID:        1,
				CandidateName: "Alice",
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domainerrors.ErrAlreadyVoted) && errors.Is(err, domainerrors.ErrAddressInUse):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one successful vote, got %d", succeeded)
	}
	if got := h.voteCount(t, 1, "Alice"); got != 1 {
		t.Fatalf("expected vote_count 1, got %d", got)
	}
}

func TestConcurrentVotesFromDistinctIdentitiesAllCount(t *testing.T) {
	h := newHarness()
	h.createPoll(t, 1, 100, 200)
	h.register(t, 1, "Alice")
	h.clock.Set(150)

	program := address.NewProgram(address.DefaultProgramID)
	const voters = 24
	var wg sync.WaitGroup
	for i := 0; i < voters; i++ {
		// Any 32 bytes will do as an identity; derived addresses are handy.
		voter := program.Poll(uint64(1000 + i)).Address
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := h.votes.CastVote(context.Background(), CastVoteCommand{
				Signer:        voter,
				PollID:        1,
				CandidateName: "Alice",
			}); err != nil {
				t.Errorf("vote from %s failed: %v", voter, err)
			}
		}()
	}
	wg.Wait()

	if got := h.voteCount(t, 1, "Alice"); got != voters {
		t.Fatalf("expected vote_count %d, got %d", voters, got)
	}
}
