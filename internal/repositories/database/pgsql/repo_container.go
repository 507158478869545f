package pgsql

import (
	portsrepo "github.com/corebooks/corebooks/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires the pgx-backed repositories into the provider
// consumed by the service container.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool)
	journalRepo := newPgxJournalRepository(dbPool, accountRepo)
	voucherRepo := newPgxVoucherRepository(dbPool)
	partyRepo := newPgxPartyRepository(dbPool)
	userRepo := newPgxUserRepository(dbPool)
	reportingRepo := newReportingRepository(dbPool)

	return portsrepo.RepositoryProvider{
		AccountRepo:   accountRepo,
		JournalRepo:   journalRepo,
		VoucherRepo:   voucherRepo,
		PartyRepo:     partyRepo,
		UserRepo:      userRepo,
		ReportingRepo: reportingRepo,
	}
}
