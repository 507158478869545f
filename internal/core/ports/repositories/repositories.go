package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// It is constructed by the database layer and injected into the service container.
type RepositoryProvider struct {
	AccountRepo   AccountRepositoryFacade
	JournalRepo   JournalRepositoryFacade
	VoucherRepo   VoucherRepositoryFacade
	PartyRepo     PartyRepositoryFacade
	UserRepo      UserRepositoryFacade
	ReportingRepo ReportingRepository
}
