package services

import (
	portsrepo "github.com/corebooks/corebooks/internal/core/ports/repositories"
	portssvc "github.com/corebooks/corebooks/internal/core/ports/services"
)

// NewServiceContainer creates a service container with all dependencies wired.
// The voucher service sits on top of the journal service so that posting a
// voucher reuses the journal balance validation and posting path.
func NewServiceContainer(repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Account = NewAccountService(repos.AccountRepo)
	container.Party = NewPartyService(repos.PartyRepo)
	container.User = NewUserService(repos.UserRepo)
	container.Journal = NewJournalService(repos.JournalRepo, container.Account)
	container.Voucher = NewVoucherService(repos.VoucherRepo, container.Account, container.Party, container.Journal)
	container.Reporting = NewReportingService(repos.ReportingRepo)

	return container
}
