package pollprogram

import (
	"log/slog"

	httpadapter "agora/contexts/governance/poll-program/adapters/http"
	"agora/contexts/governance/poll-program/adapters/memory"
	"agora/contexts/governance/poll-program/application/commands"
	"agora/contexts/governance/poll-program/application/queries"
	"agora/contexts/governance/poll-program/domain/address"
	"agora/contexts/governance/poll-program/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Ledger  ports.Ledger
	Clock   ports.Clock
	Program address.Program
	Logger  *slog.Logger
}

func NewModule(deps Dependencies) Module {
	program := deps.Program
	if program.ID.IsZero() {
		program = address.NewProgram(address.DefaultProgramID)
	}
	return Module{
		Handler: httpadapter.Handler{
			Polls: commands.PollUseCase{
				Ledger:  deps.Ledger,
				Program: program,
				Logger:  deps.Logger,
			},
			Candidates: commands.CandidateUseCase{
				Ledger:  deps.Ledger,
				Program: program,
				Logger:  deps.Logger,
			},
			Votes: commands.VoteUseCase{
				Ledger:  deps.Ledger,
				Program: program,
				Clock:   deps.Clock,
				Logger:  deps.Logger,
			},
			Accounts: queries.AccountsUseCase{
				Ledger:  deps.Ledger,
				Program: program,
			},
			Logger: deps.Logger,
		},
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Ledger:  store,
		Clock:   store,
		Program: address.NewProgram(address.DefaultProgramID),
		Logger:  logger,
	})
	module.Store = store
	return module
}
