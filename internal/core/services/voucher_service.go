package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/corebooks/corebooks/internal/apperrors"
	"github.com/corebooks/corebooks/internal/core/domain"
	portsrepo "github.com/corebooks/corebooks/internal/core/ports/repositories"
	portssvc "github.com/corebooks/corebooks/internal/core/ports/services"
	"github.com/corebooks/corebooks/internal/dto"
	"github.com/corebooks/corebooks/internal/metrics"
	"github.com/corebooks/corebooks/internal/utils/accounting"
)

var (
	ErrVoucherAccountsEqual = errors.New("cash account and counter account must differ")
	ErrCashAccountNotAsset  = errors.New("cash account must be an ASSET account")
	ErrCounterAccountType   = errors.New("counter account type does not match voucher type")
	ErrBeneficiaryInvalid   = errors.New("invalid beneficiary")
	ErrPartyKindMismatch    = errors.New("referenced party kind does not match beneficiary kind")
)

// voucherService implements voucher creation and lifecycle. Vouchers are a
// constrained entry form: posting one delegates to the journal service, so the
// produced journal goes through the same balance validation as a manual entry.
type voucherService struct {
	BaseService
	voucherRepo portsrepo.VoucherRepositoryFacade
	accountSvc  portssvc.AccountSvcFacade
	partySvc    portssvc.PartySvcFacade
	journalSvc  portssvc.JournalSvcFacade
}

// NewVoucherService creates a new VoucherService.
func NewVoucherService(
	voucherRepo portsrepo.VoucherRepositoryFacade,
	accountSvc portssvc.AccountSvcFacade,
	partySvc portssvc.PartySvcFacade,
	journalSvc portssvc.JournalSvcFacade,
) portssvc.VoucherSvcFacade {
	return &voucherService{
		voucherRepo: voucherRepo,
		accountSvc:  accountSvc,
		partySvc:    partySvc,
		journalSvc:  journalSvc,
	}
}

var _ portssvc.VoucherSvcFacade = (*voucherService)(nil)

// validateAccounts checks the cash and counter accounts against the voucher
// type rules: both must exist, be active and match the voucher currency, the
// cash account must be an asset, and the counter account's classification
// must agree with the voucher type.
func (s *voucherService) validateAccounts(ctx context.Context, voucherType domain.VoucherType, cashAccountID, counterAccountID, currencyCode string) error {
	if cashAccountID == counterAccountID {
		return ErrVoucherAccountsEqual
	}

	accounts, err := s.accountSvc.GetAccountByIDs(ctx, []string{cashAccountID, counterAccountID})
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch accounts for voucher validation")
		return fmt.Errorf("failed to fetch accounts: %w", err)
	}

	for _, id := range []string{cashAccountID, counterAccountID} {
		acc, found := accounts[id]
		if !found {
			return fmt.Errorf("%w: ID %s", ErrAccountNotFound, id)
		}
		if !acc.IsActive {
			return fmt.Errorf("%w: account %s is inactive", apperrors.ErrValidation, id)
		}
		if acc.CurrencyCode != currencyCode {
			return fmt.Errorf("%w: account currency %s does not match voucher currency %s for account %s", ErrCurrencyMismatch, acc.CurrencyCode, currencyCode, id)
		}
	}

	if accounts[cashAccountID].AccountType != domain.Asset {
		return fmt.Errorf("%w: account %s is %s", ErrCashAccountNotAsset, cashAccountID, accounts[cashAccountID].AccountType)
	}
	if wantType := voucherType.CounterAccountType(); accounts[counterAccountID].AccountType != wantType {
		return fmt.Errorf("%w: %s voucher requires a %s counter account, got %s",
			ErrCounterAccountType, voucherType, wantType, accounts[counterAccountID].AccountType)
	}
	return nil
}

// validateBeneficiary enforces the tagged-union rules and, for party-backed
// kinds, resolves the party and checks it is active and of the matching kind.
func (s *voucherService) validateBeneficiary(ctx context.Context, b domain.Beneficiary) error {
	if err := b.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrBeneficiaryInvalid, err)
	}

	wantKind, backed := b.Kind.PartyKind()
	if !backed {
		return nil
	}

	party, err := s.partySvc.GetPartyByID(ctx, b.PartyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: party %s not found", ErrBeneficiaryInvalid, b.PartyID)
		}
		s.LogError(ctx, err, "Failed to resolve beneficiary party", slog.String("party_id", b.PartyID))
		return fmt.Errorf("failed to resolve beneficiary party: %w", err)
	}
	if !party.IsActive {
		return fmt.Errorf("%w: party %s is inactive", ErrBeneficiaryInvalid, b.PartyID)
	}
	if party.Kind != wantKind {
		return fmt.Errorf("%w: party %s is a %s, beneficiary kind is %s", ErrPartyKindMismatch, b.PartyID, party.Kind, b.Kind)
	}
	return nil
}

// CreateVoucher validates and persists a new voucher as a draft. No journal
// is created and no balances move until the voucher is posted.
func (s *voucherService) CreateVoucher(ctx context.Context, req dto.CreateVoucherRequest, creatorUserID string) (*domain.Voucher, error) {
	beneficiary := req.Beneficiary.ToBeneficiary()
	if err := s.validateBeneficiary(ctx, beneficiary); err != nil {
		return nil, err
	}
	if err := s.validateAccounts(ctx, req.VoucherType, req.CashAccountID, req.CounterAccountID, req.CurrencyCode); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	voucher := domain.Voucher{
		VoucherID:        uuid.NewString(),
		VoucherType:      req.VoucherType,
		VoucherDate:      req.Date,
		Amount:           req.Amount,
		CurrencyCode:     req.CurrencyCode,
		CashAccountID:    req.CashAccountID,
		CounterAccountID: req.CounterAccountID,
		Beneficiary:      beneficiary,
		Narration:        req.Narration,
		Status:           domain.StatusDraft,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	// Deriving the lines up front rejects non-positive amounts and missing
	// accounts before the voucher is stored.
	if _, err := voucher.Lines(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	voucherNo, err := s.voucherRepo.NextVoucherNumber(ctx, req.VoucherType)
	if err != nil {
		s.LogError(ctx, err, "Failed to allocate voucher number")
		return nil, fmt.Errorf("failed to allocate voucher number: %w", err)
	}
	voucher.VoucherNo = voucherNo

	if err := s.voucherRepo.SaveVoucher(ctx, voucher); err != nil {
		s.LogError(ctx, err, "Failed to save voucher", slog.String("voucher_id", voucher.VoucherID))
		return nil, fmt.Errorf("failed to save voucher: %w", err)
	}

	s.LogInfo(ctx, "Voucher created successfully",
		slog.String("voucher_id", voucher.VoucherID), slog.String("voucher_no", voucher.VoucherNo))
	return &voucher, nil
}

// PreviewVoucher derives the two journal lines a voucher would produce,
// without persisting anything. Used by clients to display the entry before
// saving.
func (s *voucherService) PreviewVoucher(ctx context.Context, req dto.PreviewVoucherRequest) (*dto.VoucherPreviewResponse, error) {
	voucher := domain.Voucher{
		VoucherType:      req.VoucherType,
		Amount:           req.Amount,
		CurrencyCode:     req.CurrencyCode,
		CashAccountID:    req.CashAccountID,
		CounterAccountID: req.CounterAccountID,
	}

	lines, err := voucher.Lines()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	totalDebit, totalCredit, _ := accounting.Totals(lines)

	resp := &dto.VoucherPreviewResponse{
		Lines:       make([]dto.VoucherLineResponse, len(lines)),
		TotalDebit:  totalDebit,
		TotalCredit: totalCredit,
	}
	for i, line := range lines {
		resp.Lines[i] = dto.VoucherLineResponse{
			AccountID:       line.AccountID,
			Amount:          line.Amount,
			TransactionType: line.TransactionType,
		}
	}
	return resp, nil
}

// GetVoucherByID retrieves a specific voucher by its ID.
func (s *voucherService) GetVoucherByID(ctx context.Context, voucherID string) (*domain.Voucher, error) {
	voucher, err := s.voucherRepo.FindVoucherByID(ctx, voucherID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find voucher by ID", slog.String("voucher_id", voucherID))
		}
		return nil, err
	}
	return voucher, nil
}

// ListVouchers retrieves a paginated list of vouchers.
func (s *voucherService) ListVouchers(ctx context.Context, params dto.ListVouchersParams) (*dto.ListVouchersResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	var voucherType *domain.VoucherType
	if params.VoucherType != nil {
		vt := domain.VoucherType(*params.VoucherType)
		if !vt.IsValid() {
			return nil, fmt.Errorf("%w: unknown voucher type %q", apperrors.ErrValidation, *params.VoucherType)
		}
		voucherType = &vt
	}

	vouchers, nextToken, err := s.voucherRepo.ListVouchers(ctx, voucherType, limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list vouchers from repository")
		return nil, fmt.Errorf("failed to retrieve vouchers: %w", err)
	}

	return &dto.ListVouchersResponse{
		Vouchers:  dto.ToListVoucherResponse(vouchers),
		NextToken: nextToken,
	}, nil
}

// SubmitVoucher transitions a DRAFT voucher to PENDING.
func (s *voucherService) SubmitVoucher(ctx context.Context, voucherID string, userID string) (*domain.Voucher, error) {
	voucher, err := s.voucherRepo.FindVoucherByID(ctx, voucherID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find voucher for submission", slog.String("voucher_id", voucherID))
		}
		return nil, err
	}

	if !voucher.Status.CanTransitionTo(domain.StatusPending) {
		return nil, fmt.Errorf("%w: cannot submit a %s voucher", ErrIllegalTransition, voucher.Status)
	}

	now := time.Now().UTC()
	if err := s.voucherRepo.UpdateVoucherStatus(ctx, voucherID, domain.StatusPending, nil, userID, now); err != nil {
		s.LogError(ctx, err, "Failed to submit voucher", slog.String("voucher_id", voucherID))
		return nil, fmt.Errorf("failed to submit voucher: %w", err)
	}

	s.LogInfo(ctx, "Voucher submitted for approval", slog.String("voucher_id", voucherID))
	voucher.Status = domain.StatusPending
	voucher.LastUpdatedAt = now
	voucher.LastUpdatedBy = userID
	return voucher, nil
}

// PostVoucher transitions a DRAFT/PENDING voucher to POSTED. The derived
// two-line journal is created as a draft, linked to the voucher, and only then
// posted. The link is persisted before any balances move so that a failure
// partway through leaves the system retryable: a retry reuses the linked
// journal instead of creating a second one, and skips posting if a previous
// attempt already got that far.
func (s *voucherService) PostVoucher(ctx context.Context, voucherID string, userID string) (*domain.Voucher, error) {
	voucher, err := s.voucherRepo.FindVoucherByID(ctx, voucherID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find voucher for posting", slog.String("voucher_id", voucherID))
		}
		return nil, err
	}

	if !voucher.Status.CanTransitionTo(domain.StatusPosted) {
		return nil, fmt.Errorf("%w: cannot post a %s voucher", ErrIllegalTransition, voucher.Status)
	}

	// Accounts could have been deactivated or re-classified since the draft
	// was created.
	if err := s.validateAccounts(ctx, voucher.VoucherType, voucher.CashAccountID, voucher.CounterAccountID, voucher.CurrencyCode); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	if voucher.JournalID == nil {
		lines, err := voucher.Lines()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}

		journalReq := dto.CreateJournalRequest{
			Date:         voucher.VoucherDate,
			Reference:    voucher.VoucherNo,
			Description:  voucherJournalDescription(voucher),
			CurrencyCode: voucher.CurrencyCode,
			SaveAs:       string(domain.StatusDraft),
			Transactions: make([]dto.CreateTransactionRequest, len(lines)),
		}
		for i, line := range lines {
			journalReq.Transactions[i] = dto.CreateTransactionRequest{
				AccountID:       line.AccountID,
				Amount:          line.Amount,
				TransactionType: line.TransactionType,
				Notes:           line.Notes,
			}
		}

		journal, err := s.journalSvc.CreateJournal(ctx, journalReq, userID)
		if err != nil {
			s.LogError(ctx, err, "Failed to create journal for voucher", slog.String("voucher_id", voucherID))
			return nil, fmt.Errorf("failed to create voucher journal: %w", err)
		}

		// Record the link while the voucher keeps its current status. Until
		// this write succeeds no balances have moved, so the worst outcome of
		// a crash here is an orphaned draft journal.
		if err := s.voucherRepo.UpdateVoucherStatus(ctx, voucherID, voucher.Status, &journal.JournalID, userID, now); err != nil {
			s.LogError(ctx, err, "Failed to link voucher journal",
				slog.String("voucher_id", voucherID), slog.String("journal_id", journal.JournalID))
			return nil, fmt.Errorf("failed to link voucher journal: %w", err)
		}
		voucher.JournalID = &journal.JournalID
	}

	journal, err := s.journalSvc.GetJournalByID(ctx, *voucher.JournalID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load linked voucher journal",
			slog.String("voucher_id", voucherID), slog.String("journal_id", *voucher.JournalID))
		return nil, fmt.Errorf("failed to load voucher journal: %w", err)
	}
	if journal.Status != domain.StatusPosted {
		if _, err := s.journalSvc.PostJournal(ctx, *voucher.JournalID, userID); err != nil {
			s.LogError(ctx, err, "Failed to post voucher journal",
				slog.String("voucher_id", voucherID), slog.String("journal_id", *voucher.JournalID))
			return nil, fmt.Errorf("failed to post voucher journal: %w", err)
		}
	}

	if err := s.voucherRepo.UpdateVoucherStatus(ctx, voucherID, domain.StatusPosted, voucher.JournalID, userID, now); err != nil {
		s.LogError(ctx, err, "Failed to mark voucher posted after journal posting",
			slog.String("voucher_id", voucherID), slog.String("journal_id", *voucher.JournalID))
		return nil, fmt.Errorf("failed to update voucher status: %w", err)
	}

	metrics.VouchersPosted.WithLabelValues(string(voucher.VoucherType)).Inc()
	s.LogInfo(ctx, "Voucher posted successfully",
		slog.String("voucher_id", voucherID), slog.String("journal_id", *voucher.JournalID))

	voucher.Status = domain.StatusPosted
	voucher.LastUpdatedAt = now
	voucher.LastUpdatedBy = userID
	return voucher, nil
}

// CancelVoucher removes a voucher that is still DRAFT or PENDING.
func (s *voucherService) CancelVoucher(ctx context.Context, voucherID string, userID string) error {
	voucher, err := s.voucherRepo.FindVoucherByID(ctx, voucherID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find voucher for cancellation", slog.String("voucher_id", voucherID))
		}
		return err
	}

	if !voucher.Status.IsDeletable() {
		return fmt.Errorf("%w: cannot cancel a %s voucher", apperrors.ErrConflict, voucher.Status)
	}

	if err := s.voucherRepo.DeleteVoucher(ctx, voucherID); err != nil {
		s.LogError(ctx, err, "Failed to delete voucher", slog.String("voucher_id", voucherID))
		return fmt.Errorf("failed to delete voucher: %w", err)
	}

	s.LogInfo(ctx, "Voucher cancelled", slog.String("voucher_id", voucherID), slog.String("cancelled_by", userID))
	return nil
}

// ReverseVoucher reverses a POSTED voucher: the linked journal is reversed and
// the voucher is marked REVERSED. If the journal was already reversed by an
// attempt whose voucher status update failed, the retry finishes that update
// instead of rejecting the no-longer-POSTED journal.
func (s *voucherService) ReverseVoucher(ctx context.Context, voucherID string, userID string) (*domain.Voucher, error) {
	voucher, err := s.voucherRepo.FindVoucherByID(ctx, voucherID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find voucher for reversal", slog.String("voucher_id", voucherID))
		}
		return nil, err
	}

	if !voucher.Status.CanTransitionTo(domain.StatusReversed) {
		return nil, fmt.Errorf("%w: cannot reverse a %s voucher", ErrIllegalTransition, voucher.Status)
	}
	if voucher.JournalID == nil {
		return nil, fmt.Errorf("%w: posted voucher %s has no linked journal", apperrors.ErrInternal, voucherID)
	}

	linked, err := s.journalSvc.GetJournalByID(ctx, *voucher.JournalID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load linked voucher journal for reversal",
			slog.String("voucher_id", voucherID), slog.String("journal_id", *voucher.JournalID))
		return nil, fmt.Errorf("failed to load voucher journal: %w", err)
	}

	var reversingJournalID string
	if linked.Status == domain.StatusReversed && linked.ReversingJournalID != nil {
		reversingJournalID = *linked.ReversingJournalID
	} else {
		reversingJournal, err := s.journalSvc.ReverseJournal(ctx, *voucher.JournalID, userID)
		if err != nil {
			s.LogError(ctx, err, "Failed to reverse voucher journal",
				slog.String("voucher_id", voucherID), slog.String("journal_id", *voucher.JournalID))
			return nil, fmt.Errorf("failed to reverse voucher journal: %w", err)
		}
		reversingJournalID = reversingJournal.JournalID
	}

	now := time.Now().UTC()
	if err := s.voucherRepo.UpdateVoucherStatus(ctx, voucherID, domain.StatusReversed, voucher.JournalID, userID, now); err != nil {
		s.LogError(ctx, err, "Failed to mark voucher reversed",
			slog.String("voucher_id", voucherID), slog.String("reversing_journal_id", reversingJournalID))
		return nil, fmt.Errorf("failed to update voucher status: %w", err)
	}

	s.LogInfo(ctx, "Voucher reversed successfully",
		slog.String("voucher_id", voucherID), slog.String("reversing_journal_id", reversingJournalID))

	voucher.Status = domain.StatusReversed
	voucher.LastUpdatedAt = now
	voucher.LastUpdatedBy = userID
	return voucher, nil
}

// voucherJournalDescription builds the journal description for a posted
// voucher from its number and narration.
func voucherJournalDescription(v *domain.Voucher) string {
	if v.Narration == "" {
		return fmt.Sprintf("Voucher %s", v.VoucherNo)
	}
	return fmt.Sprintf("Voucher %s: %s", v.VoucherNo, v.Narration)
}
