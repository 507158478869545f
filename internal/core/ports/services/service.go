package services

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is what the HTTP handlers are wired against.
type ServiceContainer struct {
	Account   AccountSvcFacade
	Journal   JournalSvcFacade
	Voucher   VoucherSvcFacade
	Party     PartySvcFacade
	Reporting ReportingSvcFacade
	User      UserSvcFacade
}
