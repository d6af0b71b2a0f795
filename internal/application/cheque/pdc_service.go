package cheque

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/cheque"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/domain/shared/valueobject"
	"github.com/propman/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// PDCService provides application-level operations over the cheque lifecycle.
// Single-record transitions go straight through the repository; clear and
// replace span two aggregates and run inside a TransactionScope.
type PDCService struct {
	pdcRepo        cheque.PDCRepository
	chainWalker    cheque.ChainWalker
	tenantDir      cheque.TenantDirectory
	bankAccountDir cheque.BankAccountDirectory
	txScope        TransactionScope
	replacementSvc *cheque.ReplacementService
	logger         *zap.Logger
}

// NewPDCService creates a new PDCService
func NewPDCService(
	pdcRepo cheque.PDCRepository,
	chainWalker cheque.ChainWalker,
	tenantDir cheque.TenantDirectory,
	bankAccountDir cheque.BankAccountDirectory,
	txScope TransactionScope,
	logger *zap.Logger,
) *PDCService {
	return &PDCService{
		pdcRepo:        pdcRepo,
		chainWalker:    chainWalker,
		tenantDir:      tenantDir,
		bankAccountDir: bankAccountDir,
		txScope:        txScope,
		replacementSvc: cheque.NewReplacementService(),
		logger:         logger,
	}
}

// checkVersion applies the caller-supplied optimistic pre-check before a
// transition runs. The SaveWithLock predicate still guards the write itself.
func checkVersion(p *cheque.PDC, expected *int) error {
	if expected != nil && *expected != p.Version {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

func duplicateChequeError(chequeNumber string) error {
	return shared.NewDomainError("DUPLICATE_CHEQUE",
		fmt.Sprintf("Cheque number %q is already registered for this tenant", chequeNumber))
}

// Register registers a single cheque in RECEIVED status.
func (s *PDCService) Register(ctx context.Context, tenantID uuid.UUID, req RegisterPDCRequest) (*PDCResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "pdc", "register")
	defer span.End()

	exists, err := s.tenantDir.TenantExists(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.NewDomainError("NOT_FOUND", "Tenant not found")
	}

	dup, err := s.pdcRepo.ExistsByChequeNumber(ctx, tenantID, strings.TrimSpace(req.ChequeNumber))
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, duplicateChequeError(req.ChequeNumber)
	}

	pdc, err := cheque.NewPDC(
		tenantID,
		req.ChequeNumber,
		req.BankName,
		valueobject.NewMoneyAED(req.Amount),
		req.ChequeDate,
		req.InvoiceID,
		req.LeaseID,
		req.Notes,
	)
	if err != nil {
		return nil, err
	}

	if err := s.pdcRepo.Create(ctx, pdc); err != nil {
		return nil, err
	}

	telemetry.SetAttributes(span, "pdc_id", pdc.ID.String(), "cheque_number", pdc.ChequeNumber)

	return toPDCResponse(pdc), nil
}

// RegisterBulk registers a batch of cheques atomically: the whole batch is
// persisted or none of it is. Entries without their own invoice inherit the
// batch-level invoice.
func (s *PDCService) RegisterBulk(ctx context.Context, tenantID uuid.UUID, req BulkRegisterRequest) ([]PDCResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "pdc", "register_bulk")
	defer span.End()

	if len(req.Items) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Bulk registration requires at least one cheque")
	}

	exists, err := s.tenantDir.TenantExists(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.NewDomainError("NOT_FOUND", "Tenant not found")
	}

	// Validate every entry and catch duplicates within the batch before any
	// write happens; the unique index still backstops races.
	seen := make(map[string]int, len(req.Items))
	pdcs := make([]*cheque.PDC, 0, len(req.Items))
	for i, item := range req.Items {
		number := strings.TrimSpace(item.ChequeNumber)
		if prev, ok := seen[number]; ok && number != "" {
			return nil, shared.NewDomainError("DUPLICATE_CHEQUE",
				fmt.Sprintf("Cheque number %q appears twice in the batch (entries %d and %d)", number, prev+1, i+1))
		}
		seen[number] = i

		invoiceID := item.InvoiceID
		if invoiceID == nil {
			invoiceID = req.InvoiceID
		}
		leaseID := item.LeaseID
		if leaseID == nil {
			leaseID = req.LeaseID
		}

		pdc, err := cheque.NewPDC(tenantID, item.ChequeNumber, item.BankName,
			valueobject.NewMoneyAED(item.Amount), item.ChequeDate, invoiceID, leaseID, item.Notes)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_INPUT",
				fmt.Sprintf("Entry %d: %s", i+1, err.Error()))
		}
		pdcs = append(pdcs, pdc)
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		for i, pdc := range pdcs {
			dup, err := repos.PDCRepo().ExistsByChequeNumber(ctx, tenantID, pdc.ChequeNumber)
			if err != nil {
				return err
			}
			if dup {
				return shared.NewDomainError("DUPLICATE_CHEQUE",
					fmt.Sprintf("Entry %d: cheque number %q is already registered for this tenant", i+1, pdc.ChequeNumber))
			}
			if err := repos.PDCRepo().Create(ctx, pdc); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("bulk cheque registration completed",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("count", len(pdcs)))

	out := make([]PDCResponse, len(pdcs))
	for i, pdc := range pdcs {
		out[i] = *toPDCResponse(pdc)
	}
	return out, nil
}

// GetByID returns a single cheque, scoped to a tenant when one is given
func (s *PDCService) GetByID(ctx context.Context, tenantID *uuid.UUID, id uuid.UUID) (*PDCResponse, error) {
	var (
		pdc *cheque.PDC
		err error
	)
	if tenantID != nil {
		pdc, err = s.pdcRepo.FindByIDForTenant(ctx, *tenantID, id)
	} else {
		pdc, err = s.pdcRepo.FindByID(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	return toPDCResponse(pdc), nil
}

// List returns a filtered page of cheques. With a tenant the page is scoped
// to that tenant; without one it spans the whole portfolio.
func (s *PDCService) List(ctx context.Context, tenantID *uuid.UUID, filter PDCListFilter) (*shared.Paginated[PDCResponse], error) {
	repoFilter := cheque.PDCFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
		},
		BankName: strings.TrimSpace(filter.BankName),
		DateFrom: filter.DateFrom,
		DateTo:   filter.DateTo,
	}
	if filter.Status != "" {
		status := cheque.PDCStatus(strings.ToUpper(filter.Status))
		if !status.IsValid() {
			return nil, shared.NewDomainError("INVALID_INPUT",
				fmt.Sprintf("Unknown cheque status %q", filter.Status))
		}
		repoFilter.Status = &status
	}

	var (
		items []cheque.PDC
		total int64
		err   error
	)
	if tenantID != nil {
		items, total, err = s.pdcRepo.FindByTenant(ctx, *tenantID, repoFilter)
	} else {
		items, total, err = s.pdcRepo.FindAll(ctx, repoFilter)
	}
	if err != nil {
		return nil, err
	}

	page := shared.NewPaginated(toPDCResponses(items), total, repoFilter.Page, repoFilter.PageSize)
	return &page, nil
}

// ListByInvoice returns every cheque linked to an invoice
func (s *PDCService) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]PDCResponse, error) {
	items, err := s.pdcRepo.FindByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	return toPDCResponses(items), nil
}

// CheckDuplicate reports whether a cheque number is already registered for
// the tenant. Used by the registration form's pre-flight check.
func (s *PDCService) CheckDuplicate(ctx context.Context, tenantID uuid.UUID, chequeNumber string) (bool, error) {
	number := strings.TrimSpace(chequeNumber)
	if number == "" {
		return false, shared.NewDomainError("INVALID_CHEQUE_NUMBER", "Cheque number cannot be empty")
	}
	return s.pdcRepo.ExistsByChequeNumber(ctx, tenantID, number)
}

// GetChain returns the replacement chain containing the given cheque, ordered
// from the first bounced cheque to the latest replacement.
func (s *PDCService) GetChain(ctx context.Context, tenantID, id uuid.UUID) ([]ChainLinkResponse, error) {
	links, err := s.chainWalker.FindChain(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return nil, shared.NewDomainError("NOT_FOUND", "Cheque not found")
	}

	out := make([]ChainLinkResponse, len(links))
	for i, link := range links {
		out[i] = ChainLinkResponse{
			Position: link.Position,
			PDC:      *toPDCResponse(&link.PDC),
		}
	}
	return out, nil
}

// Deposit records that the cheque was handed to the bank.
func (s *PDCService) Deposit(ctx context.Context, tenantID, id uuid.UUID, req DepositRequest) (*PDCResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "pdc", "deposit")
	defer span.End()

	if req.BankAccountID != uuid.Nil {
		exists, err := s.bankAccountDir.AccountExists(ctx, req.BankAccountID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, shared.NewDomainError("NOT_FOUND", "Bank account not found")
		}
	}

	pdc, err := s.pdcRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := checkVersion(pdc, req.ExpectedVersion); err != nil {
		return nil, err
	}

	if err := pdc.Deposit(req.DepositDate, req.BankAccountID); err != nil {
		return nil, err
	}

	if err := s.pdcRepo.SaveWithLock(ctx, pdc); err != nil {
		return nil, err
	}

	return toPDCResponse(pdc), nil
}

// Clear records bank clearance and reconciles the linked invoice in the same
// transaction. When the cheque has no invoice, or the invoice cannot be
// found, the clear still stands and the result carries a warning instead.
func (s *PDCService) Clear(ctx context.Context, tenantID, id uuid.UUID, req ClearRequest) (*ClearResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "pdc", "clear")
	defer span.End()

	result := &ClearResult{}

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		pdc, err := repos.PDCRepo().FindByIDForTenant(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if err := checkVersion(pdc, req.ExpectedVersion); err != nil {
			return err
		}

		if err := pdc.Clear(req.ClearedDate); err != nil {
			return err
		}
		if err := repos.PDCRepo().SaveWithLock(ctx, pdc); err != nil {
			return err
		}
		result.PDC = toPDCResponse(pdc)

		if pdc.InvoiceID == nil {
			result.Warning = "cheque cleared without a linked invoice; no reconciliation performed"
			return nil
		}

		invoice, err := repos.InvoiceRepo().FindByIDForUpdate(ctx, *pdc.InvoiceID)
		if errors.Is(err, shared.ErrNotFound) {
			result.Warning = fmt.Sprintf("linked invoice %s not found; cheque cleared without reconciliation", pdc.InvoiceID)
			s.logger.Warn("cleared cheque references a missing invoice",
				zap.String("pdc_id", pdc.ID.String()),
				zap.String("invoice_id", pdc.InvoiceID.String()))
			return nil
		}
		if err != nil {
			return err
		}

		if err := invoice.ApplyPayment(pdc.GetAmountMoney()); err != nil {
			return err
		}
		if err := repos.InvoiceRepo().Save(ctx, invoice); err != nil {
			return err
		}

		result.InvoiceUpdated = true
		result.Invoice = &InvoiceSnapshot{
			ID:            invoice.ID,
			InvoiceNumber: invoice.InvoiceNumber,
			TotalAmount:   invoice.TotalAmount,
			PaidAmount:    invoice.PaidAmount,
			BalanceAmount: invoice.BalanceAmount,
			Status:        invoice.Status.String(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Bounce records that the bank returned the cheque unpaid.
func (s *PDCService) Bounce(ctx context.Context, tenantID, id uuid.UUID, req BounceRequest) (*PDCResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "pdc", "bounce")
	defer span.End()

	pdc, err := s.pdcRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := checkVersion(pdc, req.ExpectedVersion); err != nil {
		return nil, err
	}

	if err := pdc.Bounce(req.BouncedDate, req.Reason); err != nil {
		return nil, err
	}

	if err := s.pdcRepo.SaveWithLock(ctx, pdc); err != nil {
		return nil, err
	}

	s.logger.Info("cheque bounced",
		zap.String("pdc_id", pdc.ID.String()),
		zap.String("reason", pdc.BounceReason))

	return toPDCResponse(pdc), nil
}

// Replace issues a replacement cheque for a bounced original. Both records
// are written in one transaction so the chain pointers never land half-wired.
func (s *PDCService) Replace(ctx context.Context, tenantID, id uuid.UUID, req ReplaceRequest) (*ReplaceResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "pdc", "replace")
	defer span.End()

	result := &ReplaceResult{}

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		original, err := repos.PDCRepo().FindByIDForTenant(ctx, tenantID, id)
		if err != nil {
			return err
		}

		dup, err := repos.PDCRepo().ExistsByChequeNumber(ctx, tenantID, strings.TrimSpace(req.ChequeNumber))
		if err != nil {
			return err
		}
		if dup {
			return duplicateChequeError(req.ChequeNumber)
		}

		replacement, err := s.replacementSvc.Replace(original, cheque.ReplacementInput{
			ChequeNumber: req.ChequeNumber,
			BankName:     req.BankName,
			Amount:       valueobject.NewMoneyAED(req.Amount),
			ChequeDate:   req.ChequeDate,
			InvoiceID:    req.InvoiceID,
			Notes:        req.Notes,
		})
		if err != nil {
			return err
		}

		if err := repos.PDCRepo().Create(ctx, replacement); err != nil {
			return err
		}
		if err := repos.PDCRepo().SaveWithLock(ctx, original); err != nil {
			return err
		}

		result.Original = toPDCResponse(original)
		result.Replacement = toPDCResponse(replacement)
		return nil
	})
	if err != nil {
		return nil, err
	}

	telemetry.SetAttributes(span,
		"original_id", result.Original.ID.String(),
		"replacement_id", result.Replacement.ID.String())

	return result, nil
}

// Withdraw pulls the cheque back before deposit, or settles a bounced one
// through an alternate payment.
func (s *PDCService) Withdraw(ctx context.Context, tenantID, id uuid.UUID, req WithdrawRequest) (*PDCResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "pdc", "withdraw")
	defer span.End()

	pdc, err := s.pdcRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := checkVersion(pdc, req.ExpectedVersion); err != nil {
		return nil, err
	}

	method := cheque.PaymentMethod(strings.ToUpper(strings.TrimSpace(req.NewPaymentMethod)))
	if err := pdc.Withdraw(req.WithdrawalDate, req.Reason, method, req.TransactionID); err != nil {
		return nil, err
	}

	if err := s.pdcRepo.SaveWithLock(ctx, pdc); err != nil {
		return nil, err
	}

	return toPDCResponse(pdc), nil
}

// Cancel voids a cheque that was never deposited.
func (s *PDCService) Cancel(ctx context.Context, tenantID, id uuid.UUID) (*PDCResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "pdc", "cancel")
	defer span.End()

	pdc, err := s.pdcRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := pdc.Cancel(); err != nil {
		return nil, err
	}

	if err := s.pdcRepo.SaveWithLock(ctx, pdc); err != nil {
		return nil, err
	}

	return toPDCResponse(pdc), nil
}

// ReclassifyDue moves RECEIVED cheques whose cheque date has arrived to DUE.
// Called by the scheduler; each cheque goes through the same transition
// authority and optimistic lock as a manual transition. A conflict on one
// cheque is skipped and picked up on the next pass.
func (s *PDCService) ReclassifyDue(ctx context.Context, asOf time.Time, batchSize int) (int, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "pdc", "reclassify_due")
	defer span.End()

	if batchSize < 1 {
		batchSize = 100
	}

	due, err := s.pdcRepo.FindDueForReclassification(ctx, asOf, batchSize)
	if err != nil {
		return 0, err
	}

	moved := 0
	for i := range due {
		pdc := &due[i]
		if err := pdc.MarkDue(); err != nil {
			continue
		}
		if err := s.pdcRepo.SaveWithLock(ctx, pdc); err != nil {
			if dErr, ok := err.(*shared.DomainError); ok && dErr.Code == shared.ErrConcurrencyConflict.Code {
				s.logger.Debug("due reclassification skipped a concurrently modified cheque",
					zap.String("pdc_id", pdc.ID.String()))
				continue
			}
			return moved, err
		}
		moved++
	}

	if moved > 0 {
		s.logger.Info("due reclassification pass completed",
			zap.Int("moved", moved),
			zap.Time("as_of", asOf))
	}
	return moved, nil
}
