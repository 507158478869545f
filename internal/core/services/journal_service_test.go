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

// --- Mock JournalRepository ---
type MockJournalRepository struct {
	mock.Mock
}

// Ensure MockJournalRepository implements portsrepo.JournalRepositoryFacade
var _ portsrepo.JournalRepositoryFacade = (*MockJournalRepository)(nil)

func (m *MockJournalRepository) SaveJournal(ctx context.Context, journal domain.Journal, transactions []domain.Transaction, balanceChanges map[string]decimal.Decimal) error {
	args := m.Called(ctx, journal, transactions, balanceChanges)
	return args.Error(0)
}

func (m *MockJournalRepository) PostJournal(ctx context.Context, journalID string, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, journalID, balanceChanges, userID, now)
	return args.Error(0)
}

func (m *MockJournalRepository) FindJournalByID(ctx context.Context, journalID string) (*domain.Journal, error) {
	args := m.Called(ctx, journalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Journal), args.Error(1)
}

func (m *MockJournalRepository) FindTransactionsByJournalID(ctx context.Context, journalID string) ([]domain.Transaction, error) {
	args := m.Called(ctx, journalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockJournalRepository) ListJournals(ctx context.Context, limit int, nextToken *string, includeReversals bool) ([]domain.Journal, *string, error) {
	args := m.Called(ctx, limit, nextToken, includeReversals)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.Journal), returnedNextToken, args.Error(2)
}

func (m *MockJournalRepository) FindTransactionsByJournalIDs(ctx context.Context, journalIDs []string) (map[string][]domain.Transaction, error) {
	args := m.Called(ctx, journalIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]domain.Transaction), args.Error(1)
}

func (m *MockJournalRepository) UpdateJournal(ctx context.Context, journal domain.Journal) error {
	args := m.Called(ctx, journal)
	return args.Error(0)
}

func (m *MockJournalRepository) UpdateJournalStatusAndLinks(ctx context.Context, journalID string, status domain.EntryStatus, reversingJournalID *string, originalJournalID *string, updatedByUserID string, updatedAt time.Time) error {
	args := m.Called(ctx, journalID, status, reversingJournalID, originalJournalID, updatedByUserID, updatedAt)
	return args.Error(0)
}

func (m *MockJournalRepository) DeleteJournal(ctx context.Context, journalID string) error {
	args := m.Called(ctx, journalID)
	return args.Error(0)
}

func (m *MockJournalRepository) ListTransactionsByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	args := m.Called(ctx, accountID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.Transaction), returnedNextToken, args.Error(2)
}

// --- Mock AccountService (as used by JournalService and VoucherService) ---
type MockAccountService struct {
	mock.Mock
}

var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

func (m *MockAccountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountService) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return decimal.Zero, args.Error(1)
	}
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockAccountService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) DeactivateAccount(ctx context.Context, accountID string, userID string) error {
	args := m.Called(ctx, accountID, userID)
	return args.Error(0)
}

// --- Test Suite Setup ---
type JournalServiceTestSuite struct {
	suite.Suite
	mockJournalRepo  *MockJournalRepository
	mockAccountSvc   *MockAccountService
	service          portssvc.JournalSvcFacade
	assetAccount     domain.Account
	liabilityAccount domain.Account
	incomeAccount    domain.Account
	expenseAccount   domain.Account
	userID           string
}

func (suite *JournalServiceTestSuite) SetupTest() {
	suite.mockJournalRepo = new(MockJournalRepository)
	suite.mockAccountSvc = new(MockAccountService)
	suite.service = services.NewJournalService(suite.mockJournalRepo, suite.mockAccountSvc)

	suite.userID = uuid.NewString()

	suite.assetAccount = domain.Account{
		AccountID:    uuid.NewString(),
		AccountType:  domain.Asset,
		CurrencyCode: "USD",
		IsActive:     true,
	}
	suite.liabilityAccount = domain.Account{
		AccountID:    uuid.NewString(),
		AccountType:  domain.Liability,
		CurrencyCode: "USD",
		IsActive:     true,
	}
	suite.incomeAccount = domain.Account{
		AccountID:    uuid.NewString(),
		AccountType:  domain.Revenue,
		CurrencyCode: "USD",
		IsActive:     true,
	}
	suite.expenseAccount = domain.Account{
		AccountID:    uuid.NewString(),
		AccountType:  domain.Expense,
		CurrencyCode: "USD",
		IsActive:     true,
	}
}

// --- Test Cases ---

func (suite *JournalServiceTestSuite) TestCreateJournal_PostedSuccess() {
	ctx := context.Background()
	req := dto.CreateJournalRequest{
		Date:         time.Now(),
		Description:  "Opening loan",
		CurrencyCode: "USD",
		SaveAs:       string(domain.StatusPosted),
		Transactions: []dto.CreateTransactionRequest{
			{AccountID: suite.assetAccount.AccountID, Amount: decimal.NewFromInt(100), TransactionType: domain.Debit},
			{AccountID: suite.liabilityAccount.AccountID, Amount: decimal.NewFromInt(100), TransactionType: domain.Credit},
		},
	}

	accountsMap := map[string]domain.Account{
		suite.assetAccount.AccountID:     suite.assetAccount,
		suite.liabilityAccount.AccountID: suite.liabilityAccount,
	}
	suite.mockAccountSvc.On("GetAccountByIDs", ctx, []string{suite.assetAccount.AccountID, suite.liabilityAccount.AccountID}).Return(accountsMap, nil).Once()

	suite.mockJournalRepo.On("SaveJournal", ctx, mock.AnythingOfType("domain.Journal"), mock.AnythingOfType("[]domain.Transaction"), mock.AnythingOfType("map[string]decimal.Decimal")).Run(func(args mock.Arguments) {
		// Posting applies positive deltas on both sides for a debit-asset /
		// credit-liability pair.
		balanceChanges := args.Get(3).(map[string]decimal.Decimal)
		suite.True(balanceChanges[suite.assetAccount.AccountID].Equal(decimal.NewFromInt(100)))
		suite.True(balanceChanges[suite.liabilityAccount.AccountID].Equal(decimal.NewFromInt(100)))
	}).Return(nil).Once()

	createdJournal, err := suite.service.CreateJournal(ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(createdJournal)
	suite.NotEmpty(createdJournal.JournalID)
	suite.Equal(req.Description, createdJournal.Description)
	suite.Equal(domain.StatusPosted, createdJournal.Status)
	suite.True(createdJournal.Amount.Equal(decimal.NewFromInt(100)))
	suite.Equal(suite.userID, createdJournal.CreatedBy)
	suite.Nil(createdJournal.Transactions)

	suite.mockAccountSvc.AssertExpectations(suite.T())
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestCreateJournal_DraftLeavesBalancesUntouched() {
	ctx := context.Background()
	req := dto.CreateJournalRequest{
		Date:         time.Now(),
		Description:  "Draft entry",
		CurrencyCode: "USD",
		SaveAs:       string(domain.StatusDraft),
		Transactions: []dto.CreateTransactionRequest{
			{AccountID: suite.expenseAccount.AccountID, Amount: decimal.NewFromInt(50), TransactionType: domain.Debit},
			{AccountID: suite.assetAccount.AccountID, Amount: decimal.NewFromInt(50), TransactionType: domain.Credit},
		},
	}

	accountsMap := map[string]domain.Account{
		suite.expenseAccount.AccountID: suite.expenseAccount,
		suite.assetAccount.AccountID:   suite.assetAccount,
	}
	suite.mockAccountSvc.On("GetAccountByIDs", ctx, mock.Anything).Return(accountsMap, nil).Once()

	// A draft must be saved with nil balanceChanges.
	suite.mockJournalRepo.On("SaveJournal", ctx, mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		suite.Nil(args.Get(3))
	}).Return(nil).Once()

	createdJournal, err := suite.service.CreateJournal(ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusDraft, createdJournal.Status)
	suite.mockAccountSvc.AssertExpectations(suite.T())
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestCreateJournal_LessThanTwoTransactions() {
	ctx := context.Background()
	req := dto.CreateJournalRequest{
		Description:  "Single line",
		CurrencyCode: "USD",
		Transactions: []dto.CreateTransactionRequest{
			{AccountID: suite.assetAccount.AccountID, Amount: decimal.NewFromInt(100), TransactionType: domain.Debit},
		},
	}

	_, err := suite.service.CreateJournal(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrJournalMinEntries)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveJournal", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestCreateJournal_SingleAccountBothSides() {
	ctx := context.Background()
	req := dto.CreateJournalRequest{
		Description:  "Self transfer",
		CurrencyCode: "USD",
		Transactions: []dto.CreateTransactionRequest{
			{AccountID: suite.assetAccount.AccountID, Amount: decimal.NewFromInt(100), TransactionType: domain.Debit},
			{AccountID: suite.assetAccount.AccountID, Amount: decimal.NewFromInt(100), TransactionType: domain.Credit},
		},
	}

	_, err := suite.service.CreateJournal(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrJournalMinAccounts)
}

func (suite *JournalServiceTestSuite) TestCreateJournal_MissingDescription() {
	ctx := context.Background()
	req := dto.CreateJournalRequest{
		CurrencyCode: "USD",
		Transactions: []dto.CreateTransactionRequest{
			{AccountID: suite.assetAccount.AccountID, Amount: decimal.NewFromInt(100), TransactionType: domain.Debit},
			{AccountID: suite.incomeAccount.AccountID, Amount: decimal.NewFromInt(100), TransactionType: domain.Credit},
		},
	}

	_, err := suite.service.CreateJournal(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrDescriptionMissing)
}

func (suite *JournalServiceTestSuite) TestCreateJournal_NonPositiveAmount() {
	ctx := context.Background()
	req := dto.CreateJournalRequest{
		Description:  "Zero line",
		CurrencyCode: "USD",
		Transactions: []dto.CreateTransactionRequest{
			{AccountID: suite.assetAccount.AccountID, Amount: decimal.NewFromInt(100), TransactionType: domain.Debit},
			{AccountID: suite.incomeAccount.AccountID, Amount: decimal.NewFromInt(0), TransactionType: domain.Credit},
		},
	}

	_, err := suite.service.CreateJournal(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockAccountSvc.AssertNotCalled(suite.T(), "GetAccountByIDs", mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestCreateJournal_Unbalanced() {
	ctx := context.Background()
	req := dto.CreateJournalRequest{
		Description:  "Unbalanced",
		CurrencyCode: "USD",
		Transactions: []dto.CreateTransactionRequest{
			{AccountID: suite.assetAccount.AccountID, Amount: decimal.NewFromInt(100), TransactionType: domain.Debit},
			{AccountID: suite.incomeAccount.AccountID, Amount: decimal.RequireFromString("99.99"), TransactionType: domain.Credit},
		},
	}

	_, err := suite.service.CreateJournal(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrJournalUnbalanced)
	// The unbalanced error reports the exact difference.
	suite.Contains(err.Error(), "0.01")
	// Nothing may be persisted for an unbalanced entry.
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveJournal", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestCreateJournal_AccountNotFound() {
	ctx := context.Background()
	unknownAccountID := uuid.NewString()
	req := dto.CreateJournalRequest{
		Description:  "Unknown account",
		CurrencyCode: "USD",
		Transactions: []dto.CreateTransactionRequest{
			{AccountID: suite.assetAccount.AccountID, Amount: decimal.NewFromInt(100), TransactionType: domain.Debit},
			{AccountID: unknownAccountID, Amount: decimal.NewFromInt(100), TransactionType: domain.Credit},
		},
	}
	accountsMap := map[string]domain.Account{
		suite.assetAccount.AccountID: suite.assetAccount,
		// unknownAccountID is missing
	}
	suite.mockAccountSvc.On("GetAccountByIDs", ctx, mock.Anything).Return(accountsMap, nil).Once()

	_, err := suite.service.CreateJournal(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAccountNotFound)
	suite.mockAccountSvc.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestCreateJournal_AccountInactive() {
	ctx := context.Background()
	inactiveAccount := domain.Account{
		AccountID:    uuid.NewString(),
		AccountType:  domain.Expense,
		CurrencyCode: "USD",
		IsActive:     false,
	}
	req := dto.CreateJournalRequest{
		Description:  "Inactive account",
		CurrencyCode: "USD",
		Transactions: []dto.CreateTransactionRequest{
			{AccountID: suite.assetAccount.AccountID, Amount: decimal.NewFromInt(50), TransactionType: domain.Credit},
			{AccountID: inactiveAccount.AccountID, Amount: decimal.NewFromInt(50), TransactionType: domain.Debit},
		},
	}
	accountsMap := map[string]domain.Account{
		suite.assetAccount.AccountID: suite.assetAccount,
		inactiveAccount.AccountID:    inactiveAccount,
	}
	suite.mockAccountSvc.On("GetAccountByIDs", ctx, mock.Anything).Return(accountsMap, nil).Once()

	_, err := suite.service.CreateJournal(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockAccountSvc.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestCreateJournal_CurrencyMismatch() {
	ctx := context.Background()
	eurAccount := domain.Account{
		AccountID:    uuid.NewString(),
		AccountType:  domain.Expense,
		CurrencyCode: "EUR",
		IsActive:     true,
	}
	req := dto.CreateJournalRequest{
		Description:  "Mixed currencies",
		CurrencyCode: "USD",
		Transactions: []dto.CreateTransactionRequest{
			{AccountID: suite.assetAccount.AccountID, Amount: decimal.NewFromInt(50), TransactionType: domain.Credit},
			{AccountID: eurAccount.AccountID, Amount: decimal.NewFromInt(50), TransactionType: domain.Debit},
		},
	}
	accountsMap := map[string]domain.Account{
		suite.assetAccount.AccountID: suite.assetAccount,
		eurAccount.AccountID:         eurAccount,
	}
	suite.mockAccountSvc.On("GetAccountByIDs", ctx, mock.Anything).Return(accountsMap, nil).Once()

	_, err := suite.service.CreateJournal(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrCurrencyMismatch)
	suite.mockAccountSvc.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestCreateJournal_SaveError() {
	ctx := context.Background()
	req := dto.CreateJournalRequest{
		Date:         time.Now(),
		Description:  "Save fails",
		CurrencyCode: "USD",
		Transactions: []dto.CreateTransactionRequest{
			{AccountID: suite.assetAccount.AccountID, Amount: decimal.NewFromInt(100), TransactionType: domain.Debit},
			{AccountID: suite.liabilityAccount.AccountID, Amount: decimal.NewFromInt(100), TransactionType: domain.Credit},
		},
	}
	accountsMap := map[string]domain.Account{
		suite.assetAccount.AccountID:     suite.assetAccount,
		suite.liabilityAccount.AccountID: suite.liabilityAccount,
	}
	repoErr := assert.AnError
	suite.mockAccountSvc.On("GetAccountByIDs", ctx, mock.Anything).Return(accountsMap, nil).Once()
	suite.mockJournalRepo.On("SaveJournal", ctx, mock.Anything, mock.Anything, mock.Anything).Return(repoErr).Once()

	_, err := suite.service.CreateJournal(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.Contains(err.Error(), repoErr.Error())
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestPostJournal_Success() {
	ctx := context.Background()
	journalID := uuid.NewString()
	draft := &domain.Journal{
		JournalID:    journalID,
		Description:  "Draft rent",
		CurrencyCode: "USD",
		Status:       domain.StatusDraft,
	}
	transactions := []domain.Transaction{
		{TransactionID: uuid.NewString(), JournalID: journalID, AccountID: suite.expenseAccount.AccountID, Amount: decimal.NewFromInt(75), TransactionType: domain.Debit},
		{TransactionID: uuid.NewString(), JournalID: journalID, AccountID: suite.assetAccount.AccountID, Amount: decimal.NewFromInt(75), TransactionType: domain.Credit},
	}
	accountsMap := map[string]domain.Account{
		suite.expenseAccount.AccountID: suite.expenseAccount,
		suite.assetAccount.AccountID:   suite.assetAccount,
	}

	suite.mockJournalRepo.On("FindJournalByID", ctx, journalID).Return(draft, nil).Once()
	suite.mockJournalRepo.On("FindTransactionsByJournalID", ctx, journalID).Return(transactions, nil).Once()
	suite.mockAccountSvc.On("GetAccountByIDs", ctx, mock.Anything).Return(accountsMap, nil).Once()
	suite.mockJournalRepo.On("PostJournal", ctx, journalID, mock.AnythingOfType("map[string]decimal.Decimal"), suite.userID, mock.AnythingOfType("time.Time")).Run(func(args mock.Arguments) {
		balanceChanges := args.Get(2).(map[string]decimal.Decimal)
		suite.True(balanceChanges[suite.expenseAccount.AccountID].Equal(decimal.NewFromInt(75)))
		suite.True(balanceChanges[suite.assetAccount.AccountID].Equal(decimal.NewFromInt(-75)))
	}).Return(nil).Once()

	posted, err := suite.service.PostJournal(ctx, journalID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusPosted, posted.Status)
	suite.mockJournalRepo.AssertExpectations(suite.T())
	suite.mockAccountSvc.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestPostJournal_AlreadyPosted() {
	ctx := context.Background()
	journalID := uuid.NewString()
	posted := &domain.Journal{JournalID: journalID, Status: domain.StatusPosted}

	suite.mockJournalRepo.On("FindJournalByID", ctx, journalID).Return(posted, nil).Once()

	_, err := suite.service.PostJournal(ctx, journalID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrIllegalTransition)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "PostJournal", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestReverseJournal_Success() {
	ctx := context.Background()
	journalID := uuid.NewString()
	original := &domain.Journal{
		JournalID:    journalID,
		Description:  "Invoice 41",
		CurrencyCode: "USD",
		Status:       domain.StatusPosted,
		Amount:       decimal.NewFromInt(200),
	}
	originalTransactions := []domain.Transaction{
		{TransactionID: uuid.NewString(), JournalID: journalID, AccountID: suite.assetAccount.AccountID, Amount: decimal.NewFromInt(200), TransactionType: domain.Debit, CurrencyCode: "USD"},
		{TransactionID: uuid.NewString(), JournalID: journalID, AccountID: suite.incomeAccount.AccountID, Amount: decimal.NewFromInt(200), TransactionType: domain.Credit, CurrencyCode: "USD"},
	}
	accountsMap := map[string]domain.Account{
		suite.assetAccount.AccountID:  suite.assetAccount,
		suite.incomeAccount.AccountID: suite.incomeAccount,
	}

	suite.mockJournalRepo.On("FindJournalByID", ctx, journalID).Return(original, nil).Once()
	suite.mockJournalRepo.On("FindTransactionsByJournalID", ctx, journalID).Return(originalTransactions, nil).Once()
	suite.mockAccountSvc.On("GetAccountByIDs", ctx, mock.Anything).Return(accountsMap, nil).Once()

	suite.mockJournalRepo.On("SaveJournal", ctx, mock.AnythingOfType("domain.Journal"), mock.AnythingOfType("[]domain.Transaction"), mock.AnythingOfType("map[string]decimal.Decimal")).Run(func(args mock.Arguments) {
		reversal := args.Get(1).(domain.Journal)
		suite.Equal(domain.StatusPosted, reversal.Status)
		suite.Require().NotNil(reversal.OriginalJournalID)
		suite.Equal(journalID, *reversal.OriginalJournalID)

		// Sides flip, amounts stay the same.
		lines := args.Get(2).([]domain.Transaction)
		suite.Require().Len(lines, 2)
		suite.Equal(domain.Credit, lines[0].TransactionType)
		suite.Equal(domain.Debit, lines[1].TransactionType)
		suite.True(lines[0].Amount.Equal(decimal.NewFromInt(200)))

		// Reversal deltas undo the original posting.
		balanceChanges := args.Get(3).(map[string]decimal.Decimal)
		suite.True(balanceChanges[suite.assetAccount.AccountID].Equal(decimal.NewFromInt(-200)))
		suite.True(balanceChanges[suite.incomeAccount.AccountID].Equal(decimal.NewFromInt(-200)))
	}).Return(nil).Once()

	suite.mockJournalRepo.On("UpdateJournalStatusAndLinks", ctx, journalID, domain.StatusReversed, mock.AnythingOfType("*string"), (*string)(nil), suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	reversing, err := suite.service.ReverseJournal(ctx, journalID, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(reversing)
	suite.NotEqual(journalID, reversing.JournalID)
	suite.Contains(reversing.Description, "Reversal of:")
	suite.mockJournalRepo.AssertExpectations(suite.T())
	suite.mockAccountSvc.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestReverseJournal_NotPosted() {
	ctx := context.Background()
	journalID := uuid.NewString()
	draft := &domain.Journal{JournalID: journalID, Status: domain.StatusDraft}

	suite.mockJournalRepo.On("FindJournalByID", ctx, journalID).Return(draft, nil).Once()

	_, err := suite.service.ReverseJournal(ctx, journalID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrIllegalTransition)
}

func (suite *JournalServiceTestSuite) TestReverseJournal_AlreadyAReversal() {
	ctx := context.Background()
	journalID := uuid.NewString()
	originalID := uuid.NewString()
	reversal := &domain.Journal{
		JournalID:         journalID,
		Status:            domain.StatusPosted,
		OriginalJournalID: &originalID,
	}

	suite.mockJournalRepo.On("FindJournalByID", ctx, journalID).Return(reversal, nil).Once()

	_, err := suite.service.ReverseJournal(ctx, journalID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveJournal", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestDeleteJournal_DraftSuccess() {
	ctx := context.Background()
	journalID := uuid.NewString()
	draft := &domain.Journal{JournalID: journalID, Status: domain.StatusDraft}

	suite.mockJournalRepo.On("FindJournalByID", ctx, journalID).Return(draft, nil).Once()
	suite.mockJournalRepo.On("DeleteJournal", ctx, journalID).Return(nil).Once()

	err := suite.service.DeleteJournal(ctx, journalID, suite.userID)

	suite.Require().NoError(err)
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestDeleteJournal_PostedRejected() {
	ctx := context.Background()
	journalID := uuid.NewString()
	posted := &domain.Journal{JournalID: journalID, Status: domain.StatusPosted}

	suite.mockJournalRepo.On("FindJournalByID", ctx, journalID).Return(posted, nil).Once()

	err := suite.service.DeleteJournal(ctx, journalID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "DeleteJournal", mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestUpdateJournal_PostedRejected() {
	ctx := context.Background()
	journalID := uuid.NewString()
	posted := &domain.Journal{JournalID: journalID, Status: domain.StatusPosted}
	newDescription := "Edited"

	suite.mockJournalRepo.On("FindJournalByID", ctx, journalID).Return(posted, nil).Once()

	_, err := suite.service.UpdateJournal(ctx, journalID, dto.UpdateJournalRequest{Description: &newDescription}, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "UpdateJournal", mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestGetJournalByID_IncludesTransactions() {
	ctx := context.Background()
	journalID := uuid.NewString()
	journal := &domain.Journal{JournalID: journalID, Status: domain.StatusPosted}
	transactions := []domain.Transaction{
		{TransactionID: uuid.NewString(), JournalID: journalID},
		{TransactionID: uuid.NewString(), JournalID: journalID},
	}

	suite.mockJournalRepo.On("FindJournalByID", ctx, journalID).Return(journal, nil).Once()
	suite.mockJournalRepo.On("FindTransactionsByJournalID", ctx, journalID).Return(transactions, nil).Once()

	found, err := suite.service.GetJournalByID(ctx, journalID)

	suite.Require().NoError(err)
	suite.Len(found.Transactions, 2)
}

func (suite *JournalServiceTestSuite) TestListJournals_PassesToken() {
	ctx := context.Background()
	token := "next-page"
	journals := []domain.Journal{{JournalID: uuid.NewString()}}

	suite.mockJournalRepo.On("ListJournals", ctx, 20, (*string)(nil), true).Return(journals, token, nil).Once()

	resp, err := suite.service.ListJournals(ctx, dto.ListJournalsParams{IncludeReversals: true})

	suite.Require().NoError(err)
	suite.Len(resp.Journals, 1)
	suite.Require().NotNil(resp.NextToken)
	suite.Equal(token, *resp.NextToken)
}

// --- Run Test Suite ---
func TestJournalService(t *testing.T) {
	suite.Run(t, new(JournalServiceTestSuite))
}
