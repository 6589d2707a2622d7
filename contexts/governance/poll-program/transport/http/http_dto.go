package http

// Addresses and identities travel as base58 strings. Optional *_account
// fields let a client pin the record it expects; the server rejects the
// request when they differ from the derived address.

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type DerivedAccount struct {
	Address string `json:"address"`
	Bump    uint8  `json:"bump"`
}

type CreatePollRequest struct {
	PollID      uint64 `json:"poll_id"`
	Description string `json:"description"`
	StartTime   uint64 `json:"start_time"`
	EndTime     uint64 `json:"end_time"`
	PollAccount string `json:"poll_account,omitempty"`
}

type PollResponse struct {
	PollID         uint64         `json:"poll_id"`
	Description    string         `json:"description"`
	StartTime      uint64         `json:"start_time"`
	EndTime        uint64         `json:"end_time"`
	CandidateCount uint64         `json:"candidate_count"`
	Creator        string         `json:"creator"`
	PollAccount    DerivedAccount `json:"poll_account"`
}

type RegisterCandidateRequest struct {
	CandidateName    string `json:"candidate_name"`
	PollAccount      string `json:"poll_account,omitempty"`
	CandidateAccount string `json:"candidate_account,omitempty"`
}

type CandidateResponse struct {
	PollID           uint64         `json:"poll_id"`
	CandidateName    string         `json:"candidate_name"`
	VoteCount        uint64         `json:"vote_count"`
	CandidateAccount DerivedAccount `json:"candidate_account"`
	CandidateCount   uint64         `json:"candidate_count,omitempty"`
}

type CastVoteRequest struct {
	CandidateName    string `json:"candidate_name"`
	PollAccount      string `json:"poll_account,omitempty"`
	CandidateAccount string `json:"candidate_account,omitempty"`
	VoterAccount     string `json:"voter_account,omitempty"`
}

type VoteResponse struct {
	PollID           uint64         `json:"poll_id"`
	CandidateName    string         `json:"candidate_name"`
	VoteCount        uint64         `json:"vote_count"`
	Voter            string         `json:"voter"`
	VotedAt          uint64         `json:"voted_at"`
	CandidateAccount DerivedAccount `json:"candidate_account"`
	VoterAccount     DerivedAccount `json:"voter_account"`
}

type VoterResponse struct {
	PollID       uint64         `json:"poll_id"`
	Voter        string         `json:"voter"`
	State        string         `json:"state"`
	VoterAccount DerivedAccount `json:"voter_account"`
}

type AddressesResponse struct {
	ProgramID string          `json:"program_id"`
	PollID    uint64          `json:"poll_id"`
	Poll      DerivedAccount  `json:"poll"`
	Candidate *DerivedAccount `json:"candidate,omitempty"`
	Voter     *DerivedAccount `json:"voter,omitempty"`
}
