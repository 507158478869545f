package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/corebooks/corebooks/internal/apperrors"
	"github.com/corebooks/corebooks/internal/core/domain"
	portsrepo "github.com/corebooks/corebooks/internal/core/ports/repositories"
	portssvc "github.com/corebooks/corebooks/internal/core/ports/services"
	"github.com/corebooks/corebooks/internal/core/services"
	"github.com/corebooks/corebooks/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock VoucherRepository ---
type MockVoucherRepository struct {
	mock.Mock
}

var _ portsrepo.VoucherRepositoryFacade = (*MockVoucherRepository)(nil)

func (m *MockVoucherRepository) FindVoucherByID(ctx context.Context, voucherID string) (*domain.Voucher, error) {
	args := m.Called(ctx, voucherID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Voucher), args.Error(1)
}

func (m *MockVoucherRepository) ListVouchers(ctx context.Context, voucherType *domain.VoucherType, limit int, nextToken *string) ([]domain.Voucher, *string, error) {
	args := m.Called(ctx, voucherType, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.Voucher), returnedNextToken, args.Error(2)
}

func (m *MockVoucherRepository) SaveVoucher(ctx context.Context, voucher domain.Voucher) error {
	args := m.Called(ctx, voucher)
	return args.Error(0)
}

func (m *MockVoucherRepository) UpdateVoucherStatus(ctx context.Context, voucherID string, status domain.EntryStatus, journalID *string, updatedByUserID string, updatedAt time.Time) error {
	args := m.Called(ctx, voucherID, status, journalID, updatedByUserID, updatedAt)
	return args.Error(0)
}

func (m *MockVoucherRepository) DeleteVoucher(ctx context.Context, voucherID string) error {
	args := m.Called(ctx, voucherID)
	return args.Error(0)
}

func (m *MockVoucherRepository) NextVoucherNumber(ctx context.Context, voucherType domain.VoucherType) (string, error) {
	args := m.Called(ctx, voucherType)
	return args.String(0), args.Error(1)
}

// --- Mock PartyService ---
type MockPartyService struct {
	mock.Mock
}

var _ portssvc.PartySvcFacade = (*MockPartyService)(nil)

func (m *MockPartyService) CreateParty(ctx context.Context, req dto.CreatePartyRequest, creatorUserID string) (*domain.Party, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Party), args.Error(1)
}

func (m *MockPartyService) GetPartyByID(ctx context.Context, partyID string) (*domain.Party, error) {
	args := m.Called(ctx, partyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Party), args.Error(1)
}

func (m *MockPartyService) ListParties(ctx context.Context, params dto.ListPartiesParams) ([]domain.Party, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Party), args.Error(1)
}

func (m *MockPartyService) UpdateParty(ctx context.Context, partyID string, req dto.UpdatePartyRequest, userID string) (*domain.Party, error) {
	args := m.Called(ctx, partyID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Party), args.Error(1)
}

func (m *MockPartyService) DeactivateParty(ctx context.Context, partyID string, userID string) error {
	args := m.Called(ctx, partyID, userID)
	return args.Error(0)
}

// --- Mock JournalService (as used by VoucherService) ---
type MockJournalService struct {
	mock.Mock
}

var _ portssvc.JournalSvcFacade = (*MockJournalService)(nil)

func (m *MockJournalService) CreateJournal(ctx context.Context, req dto.CreateJournalRequest, creatorUserID string) (*domain.Journal, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Journal), args.Error(1)
}

func (m *MockJournalService) GetJournalByID(ctx context.Context, journalID string) (*domain.Journal, error) {
	args := m.Called(ctx, journalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Journal), args.Error(1)
}

func (m *MockJournalService) ListJournals(ctx context.Context, params dto.ListJournalsParams) (*dto.ListJournalsResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListJournalsResponse), args.Error(1)
}

func (m *MockJournalService) UpdateJournal(ctx context.Context, journalID string, req dto.UpdateJournalRequest, userID string) (*domain.Journal, error) {
	args := m.Called(ctx, journalID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Journal), args.Error(1)
}

func (m *MockJournalService) PostJournal(ctx context.Context, journalID string, userID string) (*domain.Journal, error) {
	args := m.Called(ctx, journalID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Journal), args.Error(1)
}

func (m *MockJournalService) ReverseJournal(ctx context.Context, journalID string, userID string) (*domain.Journal, error) {
	args := m.Called(ctx, journalID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Journal), args.Error(1)
}

func (m *MockJournalService) DeleteJournal(ctx context.Context, journalID string, userID string) error {
	args := m.Called(ctx, journalID, userID)
	return args.Error(0)
}

func (m *MockJournalService) ListTransactionsByAccount(ctx context.Context, accountID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	args := m.Called(ctx, accountID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListTransactionsResponse), args.Error(1)
}

// --- Test Suite Setup ---
type VoucherServiceTestSuite struct {
	suite.Suite
	mockVoucherRepo *MockVoucherRepository
	mockAccountSvc  *MockAccountService
	mockPartySvc    *MockPartyService
	mockJournalSvc  *MockJournalService
	service         portssvc.VoucherSvcFacade
	cashAccount     domain.Account
	expenseAccount  domain.Account
	revenueAccount  domain.Account
	bankAccount     domain.Account
	vendorParty     domain.Party
	userID          string
}

func (suite *VoucherServiceTestSuite) SetupTest() {
	suite.mockVoucherRepo = new(MockVoucherRepository)
	suite.mockAccountSvc = new(MockAccountService)
	suite.mockPartySvc = new(MockPartyService)
	suite.mockJournalSvc = new(MockJournalService)
	suite.service = services.NewVoucherService(suite.mockVoucherRepo, suite.mockAccountSvc, suite.mockPartySvc, suite.mockJournalSvc)

	suite.userID = uuid.NewString()

	suite.cashAccount = domain.Account{
		AccountID:    uuid.NewString(),
		AccountType:  domain.Asset,
		CurrencyCode: "USD",
		IsActive:     true,
	}
	suite.expenseAccount = domain.Account{
		AccountID:    uuid.NewString(),
		AccountType:  domain.Expense,
		CurrencyCode: "USD",
		IsActive:     true,
	}
	suite.revenueAccount = domain.Account{
		AccountID:    uuid.NewString(),
		AccountType:  domain.Revenue,
		CurrencyCode: "USD",
		IsActive:     true,
	}
	suite.bankAccount = domain.Account{
		AccountID:    uuid.NewString(),
		AccountType:  domain.Asset,
		CurrencyCode: "USD",
		IsActive:     true,
	}
	suite.vendorParty = domain.Party{
		PartyID:  uuid.NewString(),
		Kind:     domain.PartyVendor,
		Name:     "Acme Supplies",
		IsActive: true,
	}
}

func (suite *VoucherServiceTestSuite) accountsMap(accounts ...domain.Account) map[string]domain.Account {
	m := make(map[string]domain.Account, len(accounts))
	for _, acc := range accounts {
		m[acc.AccountID] = acc
	}
	return m
}

func (suite *VoucherServiceTestSuite) paymentRequest() dto.CreateVoucherRequest {
	return dto.CreateVoucherRequest{
		VoucherType:      domain.VoucherPayment,
		Date:             time.Now(),
		Amount:           decimal.NewFromInt(150),
		CurrencyCode:     "USD",
		CashAccountID:    suite.cashAccount.AccountID,
		CounterAccountID: suite.expenseAccount.AccountID,
		Beneficiary:      dto.BeneficiaryRequest{Kind: domain.BeneficiaryVendor, PartyID: suite.vendorParty.PartyID},
		Narration:        "Office supplies",
	}
}

// --- Test Cases ---

func (suite *VoucherServiceTestSuite) TestCreateVoucher_PaymentSuccess() {
	ctx := context.Background()
	req := suite.paymentRequest()

	suite.mockPartySvc.On("GetPartyByID", ctx, suite.vendorParty.PartyID).Return(&suite.vendorParty, nil).Once()
	suite.mockAccountSvc.On("GetAccountByIDs", ctx, []string{suite.cashAccount.AccountID, suite.expenseAccount.AccountID}).
		Return(suite.accountsMap(suite.cashAccount, suite.expenseAccount), nil).Once()
	suite.mockVoucherRepo.On("NextVoucherNumber", ctx, domain.VoucherPayment).Return("PV-000001", nil).Once()
	suite.mockVoucherRepo.On("SaveVoucher", ctx, mock.AnythingOfType("domain.Voucher")).Run(func(args mock.Arguments) {
		voucher := args.Get(1).(domain.Voucher)
		suite.Equal(domain.StatusDraft, voucher.Status)
		suite.Equal("PV-000001", voucher.VoucherNo)
		suite.Nil(voucher.JournalID)
	}).Return(nil).Once()

	voucher, err := suite.service.CreateVoucher(ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusDraft, voucher.Status)
	suite.Equal("PV-000001", voucher.VoucherNo)
	suite.mockVoucherRepo.AssertExpectations(suite.T())
	suite.mockAccountSvc.AssertExpectations(suite.T())
	suite.mockPartySvc.AssertExpectations(suite.T())
	// Drafting a voucher must not create any journal.
	suite.mockJournalSvc.AssertNotCalled(suite.T(), "CreateJournal", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *VoucherServiceTestSuite) TestCreateVoucher_SameAccountRejected() {
	ctx := context.Background()
	req := suite.paymentRequest()
	req.CounterAccountID = req.CashAccountID

	suite.mockPartySvc.On("GetPartyByID", ctx, suite.vendorParty.PartyID).Return(&suite.vendorParty, nil).Once()

	_, err := suite.service.CreateVoucher(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrVoucherAccountsEqual)
	suite.mockVoucherRepo.AssertNotCalled(suite.T(), "SaveVoucher", mock.Anything, mock.Anything)
}

func (suite *VoucherServiceTestSuite) TestCreateVoucher_CashAccountNotAsset() {
	ctx := context.Background()
	req := suite.paymentRequest()
	req.CashAccountID = suite.revenueAccount.AccountID

	suite.mockPartySvc.On("GetPartyByID", ctx, suite.vendorParty.PartyID).Return(&suite.vendorParty, nil).Once()
	suite.mockAccountSvc.On("GetAccountByIDs", ctx, mock.Anything).
		Return(suite.accountsMap(suite.revenueAccount, suite.expenseAccount), nil).Once()

	_, err := suite.service.CreateVoucher(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrCashAccountNotAsset)
}

func (suite *VoucherServiceTestSuite) TestCreateVoucher_WrongCounterAccountType() {
	ctx := context.Background()
	req := suite.paymentRequest()
	// A PAYMENT requires an expense counter account, not revenue.
	req.CounterAccountID = suite.revenueAccount.AccountID

	suite.mockPartySvc.On("GetPartyByID", ctx, suite.vendorParty.PartyID).Return(&suite.vendorParty, nil).Once()
	suite.mockAccountSvc.On("GetAccountByIDs", ctx, mock.Anything).
		Return(suite.accountsMap(suite.cashAccount, suite.revenueAccount), nil).Once()

	_, err := suite.service.CreateVoucher(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrCounterAccountType)
}

func (suite *VoucherServiceTestSuite) TestCreateVoucher_BeneficiaryMissingParty() {
	ctx := context.Background()
	req := suite.paymentRequest()
	req.Beneficiary = dto.BeneficiaryRequest{Kind: domain.BeneficiaryVendor}

	_, err := suite.service.CreateVoucher(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrBeneficiaryInvalid)
	suite.mockPartySvc.AssertNotCalled(suite.T(), "GetPartyByID", mock.Anything, mock.Anything)
}

func (suite *VoucherServiceTestSuite) TestCreateVoucher_OtherBeneficiaryWithPartyRejected() {
	ctx := context.Background()
	req := suite.paymentRequest()
	req.Beneficiary = dto.BeneficiaryRequest{Kind: domain.BeneficiaryOther, Name: "Walk-in", PartyID: uuid.NewString()}

	_, err := suite.service.CreateVoucher(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrBeneficiaryInvalid)
}

func (suite *VoucherServiceTestSuite) TestCreateVoucher_PartyKindMismatch() {
	ctx := context.Background()
	req := suite.paymentRequest()
	req.Beneficiary = dto.BeneficiaryRequest{Kind: domain.BeneficiaryClient, PartyID: suite.vendorParty.PartyID}

	suite.mockPartySvc.On("GetPartyByID", ctx, suite.vendorParty.PartyID).Return(&suite.vendorParty, nil).Once()

	_, err := suite.service.CreateVoucher(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrPartyKindMismatch)
}

func (suite *VoucherServiceTestSuite) TestCreateVoucher_NonPositiveAmount() {
	ctx := context.Background()
	req := suite.paymentRequest()
	req.Amount = decimal.Zero

	suite.mockPartySvc.On("GetPartyByID", ctx, suite.vendorParty.PartyID).Return(&suite.vendorParty, nil).Once()
	suite.mockAccountSvc.On("GetAccountByIDs", ctx, mock.Anything).
		Return(suite.accountsMap(suite.cashAccount, suite.expenseAccount), nil).Once()

	_, err := suite.service.CreateVoucher(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockVoucherRepo.AssertNotCalled(suite.T(), "NextVoucherNumber", mock.Anything, mock.Anything)
}

func (suite *VoucherServiceTestSuite) TestPreviewVoucher_PaymentLines() {
	ctx := context.Background()
	req := dto.PreviewVoucherRequest{
		VoucherType:      domain.VoucherPayment,
		Amount:           decimal.NewFromInt(80),
		CurrencyCode:     "USD",
		CashAccountID:    suite.cashAccount.AccountID,
		CounterAccountID: suite.expenseAccount.AccountID,
	}

	resp, err := suite.service.PreviewVoucher(ctx, req)

	suite.Require().NoError(err)
	suite.Require().Len(resp.Lines, 2)
	// PAYMENT debits the expense and credits cash.
	suite.Equal(suite.expenseAccount.AccountID, resp.Lines[0].AccountID)
	suite.Equal(domain.Debit, resp.Lines[0].TransactionType)
	suite.Equal(suite.cashAccount.AccountID, resp.Lines[1].AccountID)
	suite.Equal(domain.Credit, resp.Lines[1].TransactionType)
	suite.True(resp.TotalDebit.Equal(resp.TotalCredit))
}

func (suite *VoucherServiceTestSuite) TestPreviewVoucher_ReceiptLines() {
	ctx := context.Background()
	req := dto.PreviewVoucherRequest{
		VoucherType:      domain.VoucherReceipt,
		Amount:           decimal.NewFromInt(80),
		CurrencyCode:     "USD",
		CashAccountID:    suite.cashAccount.AccountID,
		CounterAccountID: suite.revenueAccount.AccountID,
	}

	resp, err := suite.service.PreviewVoucher(ctx, req)

	suite.Require().NoError(err)
	suite.Require().Len(resp.Lines, 2)
	// RECEIPT debits cash and credits the revenue account.
	suite.Equal(suite.cashAccount.AccountID, resp.Lines[0].AccountID)
	suite.Equal(domain.Debit, resp.Lines[0].TransactionType)
	suite.Equal(suite.revenueAccount.AccountID, resp.Lines[1].AccountID)
	suite.Equal(domain.Credit, resp.Lines[1].TransactionType)
}

func (suite *VoucherServiceTestSuite) TestSubmitVoucher_DraftToPending() {
	ctx := context.Background()
	voucherID := uuid.NewString()
	draft := &domain.Voucher{VoucherID: voucherID, Status: domain.StatusDraft}

	suite.mockVoucherRepo.On("FindVoucherByID", ctx, voucherID).Return(draft, nil).Once()
	suite.mockVoucherRepo.On("UpdateVoucherStatus", ctx, voucherID, domain.StatusPending, (*string)(nil), suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	voucher, err := suite.service.SubmitVoucher(ctx, voucherID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusPending, voucher.Status)
	suite.mockVoucherRepo.AssertExpectations(suite.T())
}

func (suite *VoucherServiceTestSuite) TestSubmitVoucher_PendingRejected() {
	ctx := context.Background()
	voucherID := uuid.NewString()
	pending := &domain.Voucher{VoucherID: voucherID, Status: domain.StatusPending}

	suite.mockVoucherRepo.On("FindVoucherByID", ctx, voucherID).Return(pending, nil).Once()

	_, err := suite.service.SubmitVoucher(ctx, voucherID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrIllegalTransition)
}

// pendingPaymentVoucher returns a PENDING payment voucher ready to post.
func (suite *VoucherServiceTestSuite) pendingPaymentVoucher(voucherID string) *domain.Voucher {
	return &domain.Voucher{
		VoucherID:        voucherID,
		VoucherNo:        "PV-000007",
		VoucherType:      domain.VoucherPayment,
		VoucherDate:      time.Now(),
		Amount:           decimal.NewFromInt(150),
		CurrencyCode:     "USD",
		CashAccountID:    suite.cashAccount.AccountID,
		CounterAccountID: suite.expenseAccount.AccountID,
		Beneficiary:      domain.Beneficiary{Kind: domain.BeneficiaryVendor, PartyID: suite.vendorParty.PartyID},
		Status:           domain.StatusPending,
	}
}

func (suite *VoucherServiceTestSuite) TestPostVoucher_CreatesPostedJournal() {
	ctx := context.Background()
	voucherID := uuid.NewString()
	pending := suite.pendingPaymentVoucher(voucherID)
	draftJournal := &domain.Journal{JournalID: uuid.NewString(), Status: domain.StatusDraft}
	postedJournal := &domain.Journal{JournalID: draftJournal.JournalID, Status: domain.StatusPosted}

	suite.mockVoucherRepo.On("FindVoucherByID", ctx, voucherID).Return(pending, nil).Once()
	suite.mockAccountSvc.On("GetAccountByIDs", ctx, mock.Anything).
		Return(suite.accountsMap(suite.cashAccount, suite.expenseAccount), nil).Once()
	suite.mockJournalSvc.On("CreateJournal", ctx, mock.AnythingOfType("dto.CreateJournalRequest"), suite.userID).Run(func(args mock.Arguments) {
		journalReq := args.Get(1).(dto.CreateJournalRequest)
		// The journal starts as a draft; balances only move in PostJournal.
		suite.Equal(string(domain.StatusDraft), journalReq.SaveAs)
		suite.Equal("PV-000007", journalReq.Reference)
		suite.Require().Len(journalReq.Transactions, 2)
		suite.Equal(suite.expenseAccount.AccountID, journalReq.Transactions[0].AccountID)
		suite.Equal(domain.Debit, journalReq.Transactions[0].TransactionType)
		suite.Equal(suite.cashAccount.AccountID, journalReq.Transactions[1].AccountID)
		suite.Equal(domain.Credit, journalReq.Transactions[1].TransactionType)
	}).Return(draftJournal, nil).Once()
	// The journal is linked while the voucher keeps its PENDING status.
	suite.mockVoucherRepo.On("UpdateVoucherStatus", ctx, voucherID, domain.StatusPending, &draftJournal.JournalID, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockJournalSvc.On("GetJournalByID", ctx, draftJournal.JournalID).Return(draftJournal, nil).Once()
	suite.mockJournalSvc.On("PostJournal", ctx, draftJournal.JournalID, suite.userID).Return(postedJournal, nil).Once()
	suite.mockVoucherRepo.On("UpdateVoucherStatus", ctx, voucherID, domain.StatusPosted, &draftJournal.JournalID, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	voucher, err := suite.service.PostVoucher(ctx, voucherID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusPosted, voucher.Status)
	suite.Require().NotNil(voucher.JournalID)
	suite.Equal(draftJournal.JournalID, *voucher.JournalID)
	suite.mockVoucherRepo.AssertExpectations(suite.T())
	suite.mockJournalSvc.AssertExpectations(suite.T())
}

func (suite *VoucherServiceTestSuite) TestPostVoucher_LinkFailureLeavesJournalUnposted() {
	ctx := context.Background()
	voucherID := uuid.NewString()
	pending := suite.pendingPaymentVoucher(voucherID)
	draftJournal := &domain.Journal{JournalID: uuid.NewString(), Status: domain.StatusDraft}

	suite.mockVoucherRepo.On("FindVoucherByID", ctx, voucherID).Return(pending, nil).Once()
	suite.mockAccountSvc.On("GetAccountByIDs", ctx, mock.Anything).
		Return(suite.accountsMap(suite.cashAccount, suite.expenseAccount), nil).Once()
	suite.mockJournalSvc.On("CreateJournal", ctx, mock.Anything, suite.userID).Return(draftJournal, nil).Once()
	suite.mockVoucherRepo.On("UpdateVoucherStatus", ctx, voucherID, domain.StatusPending, &draftJournal.JournalID, suite.userID, mock.AnythingOfType("time.Time")).
		Return(assert.AnError).Once()

	_, err := suite.service.PostVoucher(ctx, voucherID, suite.userID)

	suite.Require().Error(err)
	// A failed link write must stop before any balances move.
	suite.mockJournalSvc.AssertNotCalled(suite.T(), "PostJournal", mock.Anything, mock.Anything, mock.Anything)
	suite.mockJournalSvc.AssertNumberOfCalls(suite.T(), "CreateJournal", 1)
}

func (suite *VoucherServiceTestSuite) TestPostVoucher_RetryReusesLinkedDraftJournal() {
	ctx := context.Background()
	voucherID := uuid.NewString()
	journalID := uuid.NewString()
	pending := suite.pendingPaymentVoucher(voucherID)
	pending.JournalID = &journalID
	draftJournal := &domain.Journal{JournalID: journalID, Status: domain.StatusDraft}
	postedJournal := &domain.Journal{JournalID: journalID, Status: domain.StatusPosted}

	suite.mockVoucherRepo.On("FindVoucherByID", ctx, voucherID).Return(pending, nil).Once()
	suite.mockAccountSvc.On("GetAccountByIDs", ctx, mock.Anything).
		Return(suite.accountsMap(suite.cashAccount, suite.expenseAccount), nil).Once()
	suite.mockJournalSvc.On("GetJournalByID", ctx, journalID).Return(draftJournal, nil).Once()
	suite.mockJournalSvc.On("PostJournal", ctx, journalID, suite.userID).Return(postedJournal, nil).Once()
	suite.mockVoucherRepo.On("UpdateVoucherStatus", ctx, voucherID, domain.StatusPosted, &journalID, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	voucher, err := suite.service.PostVoucher(ctx, voucherID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusPosted, voucher.Status)
	// A voucher with a linked journal never creates a second one.
	suite.mockJournalSvc.AssertNotCalled(suite.T(), "CreateJournal", mock.Anything, mock.Anything, mock.Anything)
	suite.mockJournalSvc.AssertExpectations(suite.T())
	suite.mockVoucherRepo.AssertExpectations(suite.T())
}

func (suite *VoucherServiceTestSuite) TestPostVoucher_RetrySkipsAlreadyPostedJournal() {
	ctx := context.Background()
	voucherID := uuid.NewString()
	journalID := uuid.NewString()
	pending := suite.pendingPaymentVoucher(voucherID)
	pending.JournalID = &journalID
	postedJournal := &domain.Journal{JournalID: journalID, Status: domain.StatusPosted}

	suite.mockVoucherRepo.On("FindVoucherByID", ctx, voucherID).Return(pending, nil).Once()
	suite.mockAccountSvc.On("GetAccountByIDs", ctx, mock.Anything).
		Return(suite.accountsMap(suite.cashAccount, suite.expenseAccount), nil).Once()
	suite.mockJournalSvc.On("GetJournalByID", ctx, journalID).Return(postedJournal, nil).Once()
	suite.mockVoucherRepo.On("UpdateVoucherStatus", ctx, voucherID, domain.StatusPosted, &journalID, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	voucher, err := suite.service.PostVoucher(ctx, voucherID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusPosted, voucher.Status)
	// Retrying after a failed status update must not move balances again.
	suite.mockJournalSvc.AssertNotCalled(suite.T(), "CreateJournal", mock.Anything, mock.Anything, mock.Anything)
	suite.mockJournalSvc.AssertNotCalled(suite.T(), "PostJournal", mock.Anything, mock.Anything, mock.Anything)
	suite.mockVoucherRepo.AssertExpectations(suite.T())
}

func (suite *VoucherServiceTestSuite) TestPostVoucher_AlreadyPosted() {
	ctx := context.Background()
	voucherID := uuid.NewString()
	posted := &domain.Voucher{VoucherID: voucherID, Status: domain.StatusPosted}

	suite.mockVoucherRepo.On("FindVoucherByID", ctx, voucherID).Return(posted, nil).Once()

	_, err := suite.service.PostVoucher(ctx, voucherID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrIllegalTransition)
	suite.mockJournalSvc.AssertNotCalled(suite.T(), "CreateJournal", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *VoucherServiceTestSuite) TestCancelVoucher_PostedRejected() {
	ctx := context.Background()
	voucherID := uuid.NewString()
	posted := &domain.Voucher{VoucherID: voucherID, Status: domain.StatusPosted}

	suite.mockVoucherRepo.On("FindVoucherByID", ctx, voucherID).Return(posted, nil).Once()

	err := suite.service.CancelVoucher(ctx, voucherID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockVoucherRepo.AssertNotCalled(suite.T(), "DeleteVoucher", mock.Anything, mock.Anything)
}

func (suite *VoucherServiceTestSuite) TestCancelVoucher_DraftSuccess() {
	ctx := context.Background()
	voucherID := uuid.NewString()
	draft := &domain.Voucher{VoucherID: voucherID, Status: domain.StatusDraft}

	suite.mockVoucherRepo.On("FindVoucherByID", ctx, voucherID).Return(draft, nil).Once()
	suite.mockVoucherRepo.On("DeleteVoucher", ctx, voucherID).Return(nil).Once()

	err := suite.service.CancelVoucher(ctx, voucherID, suite.userID)

	suite.Require().NoError(err)
	suite.mockVoucherRepo.AssertExpectations(suite.T())
}

func (suite *VoucherServiceTestSuite) TestReverseVoucher_Success() {
	ctx := context.Background()
	voucherID := uuid.NewString()
	journalID := uuid.NewString()
	posted := &domain.Voucher{
		VoucherID: voucherID,
		Status:    domain.StatusPosted,
		JournalID: &journalID,
	}
	linkedJournal := &domain.Journal{JournalID: journalID, Status: domain.StatusPosted}
	reversingJournal := &domain.Journal{JournalID: uuid.NewString(), Status: domain.StatusPosted}

	suite.mockVoucherRepo.On("FindVoucherByID", ctx, voucherID).Return(posted, nil).Once()
	suite.mockJournalSvc.On("GetJournalByID", ctx, journalID).Return(linkedJournal, nil).Once()
	suite.mockJournalSvc.On("ReverseJournal", ctx, journalID, suite.userID).Return(reversingJournal, nil).Once()
	suite.mockVoucherRepo.On("UpdateVoucherStatus", ctx, voucherID, domain.StatusReversed, &journalID, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	voucher, err := suite.service.ReverseVoucher(ctx, voucherID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusReversed, voucher.Status)
	suite.mockVoucherRepo.AssertExpectations(suite.T())
	suite.mockJournalSvc.AssertExpectations(suite.T())
}

func (suite *VoucherServiceTestSuite) TestReverseVoucher_RetryAfterJournalAlreadyReversed() {
	ctx := context.Background()
	voucherID := uuid.NewString()
	journalID := uuid.NewString()
	reversingJournalID := uuid.NewString()
	posted := &domain.Voucher{
		VoucherID: voucherID,
		Status:    domain.StatusPosted,
		JournalID: &journalID,
	}
	// A previous attempt reversed the journal but failed to update the voucher.
	reversedJournal := &domain.Journal{
		JournalID:          journalID,
		Status:             domain.StatusReversed,
		ReversingJournalID: &reversingJournalID,
	}

	suite.mockVoucherRepo.On("FindVoucherByID", ctx, voucherID).Return(posted, nil).Once()
	suite.mockJournalSvc.On("GetJournalByID", ctx, journalID).Return(reversedJournal, nil).Once()
	suite.mockVoucherRepo.On("UpdateVoucherStatus", ctx, voucherID, domain.StatusReversed, &journalID, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	voucher, err := suite.service.ReverseVoucher(ctx, voucherID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusReversed, voucher.Status)
	// The already-reversed journal must not be reversed again.
	suite.mockJournalSvc.AssertNotCalled(suite.T(), "ReverseJournal", mock.Anything, mock.Anything, mock.Anything)
	suite.mockVoucherRepo.AssertExpectations(suite.T())
}

func (suite *VoucherServiceTestSuite) TestReverseVoucher_DraftRejected() {
	ctx := context.Background()
	voucherID := uuid.NewString()
	draft := &domain.Voucher{VoucherID: voucherID, Status: domain.StatusDraft}

	suite.mockVoucherRepo.On("FindVoucherByID", ctx, voucherID).Return(draft, nil).Once()

	_, err := suite.service.ReverseVoucher(ctx, voucherID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrIllegalTransition)
	suite.mockJournalSvc.AssertNotCalled(suite.T(), "ReverseJournal", mock.Anything, mock.Anything, mock.Anything)
}

// --- Run Test Suite ---
func TestVoucherService(t *testing.T) {
	suite.Run(t, new(VoucherServiceTestSuite))
}
