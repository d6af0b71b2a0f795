package cheque

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/billing"
	"github.com/propman/backend/internal/domain/cheque"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// =============================================================================
// Mock Repositories
// =============================================================================

type MockPDCRepository struct {
	mock.Mock
}

func (m *MockPDCRepository) FindByID(ctx context.Context, id uuid.UUID) (*cheque.PDC, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cheque.PDC), args.Error(1)
}

func (m *MockPDCRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*cheque.PDC, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cheque.PDC), args.Error(1)
}

func (m *MockPDCRepository) FindAll(ctx context.Context, filter cheque.PDCFilter) ([]cheque.PDC, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]cheque.PDC), args.Get(1).(int64), args.Error(2)
}

func (m *MockPDCRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID, filter cheque.PDCFilter) ([]cheque.PDC, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]cheque.PDC), args.Get(1).(int64), args.Error(2)
}

func (m *MockPDCRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]cheque.PDC, error) {
	args := m.Called(ctx, invoiceID)
	return args.Get(0).([]cheque.PDC), args.Error(1)
}

func (m *MockPDCRepository) FindDueForReclassification(ctx context.Context, asOf time.Time, limit int) ([]cheque.PDC, error) {
	args := m.Called(ctx, asOf, limit)
	return args.Get(0).([]cheque.PDC), args.Error(1)
}

func (m *MockPDCRepository) ExistsByChequeNumber(ctx context.Context, tenantID uuid.UUID, chequeNumber string) (bool, error) {
	args := m.Called(ctx, tenantID, chequeNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockPDCRepository) Create(ctx context.Context, pdc *cheque.PDC) error {
	args := m.Called(ctx, pdc)
	return args.Error(0)
}

func (m *MockPDCRepository) SaveWithLock(ctx context.Context, pdc *cheque.PDC) error {
	args := m.Called(ctx, pdc)
	return args.Error(0)
}

type MockChainWalker struct {
	mock.Mock
}

func (m *MockChainWalker) FindChain(ctx context.Context, tenantID, id uuid.UUID) ([]cheque.ChainLink, error) {
	args := m.Called(ctx, tenantID, id)
	return args.Get(0).([]cheque.ChainLink), args.Error(1)
}

type MockTenantDirectory struct {
	mock.Mock
}

func (m *MockTenantDirectory) TenantExists(ctx context.Context, tenantID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID)
	return args.Bool(0), args.Error(1)
}

type MockBankAccountDirectory struct {
	mock.Mock
}

func (m *MockBankAccountDirectory) AccountExists(ctx context.Context, accountID uuid.UUID) (bool, error) {
	args := m.Called(ctx, accountID)
	return args.Bool(0), args.Error(1)
}

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

// =============================================================================
// Fixtures
// =============================================================================

type serviceFixture struct {
	svc         *PDCService
	pdcRepo     *MockPDCRepository
	chainWalker *MockChainWalker
	tenantDir   *MockTenantDirectory
	bankDir     *MockBankAccountDirectory
	invoiceRepo *MockInvoiceRepository
}

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		pdcRepo:     new(MockPDCRepository),
		chainWalker: new(MockChainWalker),
		tenantDir:   new(MockTenantDirectory),
		bankDir:     new(MockBankAccountDirectory),
		invoiceRepo: new(MockInvoiceRepository),
	}
	f.svc = NewPDCService(
		f.pdcRepo,
		f.chainWalker,
		f.tenantDir,
		f.bankDir,
		NewNoOpTransactionScope(f.pdcRepo, f.invoiceRepo),
		zap.NewNop(),
	)
	return f
}

func newStoredPDC(t *testing.T, tenantID uuid.UUID, invoiceID *uuid.UUID) *cheque.PDC {
	t.Helper()
	p, err := cheque.NewPDC(
		tenantID,
		"CHQ-500",
		"Emirates NBD",
		valueobject.NewMoneyAEDFromFloat(5000),
		time.Now().AddDate(0, 0, 10),
		invoiceID,
		nil,
		"",
	)
	require.NoError(t, err)
	p.ClearDomainEvents()
	return p
}

func newDepositedStoredPDC(t *testing.T, tenantID uuid.UUID, invoiceID *uuid.UUID) *cheque.PDC {
	t.Helper()
	p := newStoredPDC(t, tenantID, invoiceID)
	require.NoError(t, p.Deposit(time.Now(), uuid.New()))
	return p
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
}

// =============================================================================
// Register
// =============================================================================

func TestPDCService_Register(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	req := RegisterPDCRequest{
		ChequeNumber: "CHQ-500",
		BankName:     "Emirates NBD",
		Amount:       decimal.NewFromInt(5000),
		ChequeDate:   time.Now().AddDate(0, 0, 10),
	}

	t.Run("registers a cheque", func(t *testing.T) {
		f := newServiceFixture()
		f.tenantDir.On("TenantExists", mock.Anything, tenantID).Return(true, nil)
		f.pdcRepo.On("ExistsByChequeNumber", mock.Anything, tenantID, "CHQ-500").Return(false, nil)
		f.pdcRepo.On("Create", mock.Anything, mock.AnythingOfType("*cheque.PDC")).Return(nil)

		resp, err := f.svc.Register(ctx, tenantID, req)
		require.NoError(t, err)
		assert.Equal(t, "RECEIVED", resp.Status)
		assert.Equal(t, "CHQ-500", resp.ChequeNumber)
		assert.Equal(t, 1, resp.Version)
		f.pdcRepo.AssertExpectations(t)
	})

	t.Run("rejects an unknown tenant", func(t *testing.T) {
		f := newServiceFixture()
		f.tenantDir.On("TenantExists", mock.Anything, tenantID).Return(false, nil)

		_, err := f.svc.Register(ctx, tenantID, req)
		assertCode(t, err, "NOT_FOUND")
		f.pdcRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects a duplicate cheque number", func(t *testing.T) {
		f := newServiceFixture()
		f.tenantDir.On("TenantExists", mock.Anything, tenantID).Return(true, nil)
		f.pdcRepo.On("ExistsByChequeNumber", mock.Anything, tenantID, "CHQ-500").Return(true, nil)

		_, err := f.svc.Register(ctx, tenantID, req)
		assertCode(t, err, "DUPLICATE_CHEQUE")
		f.pdcRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("propagates validation errors", func(t *testing.T) {
		f := newServiceFixture()
		f.tenantDir.On("TenantExists", mock.Anything, tenantID).Return(true, nil)
		f.pdcRepo.On("ExistsByChequeNumber", mock.Anything, tenantID, "CHQ-500").Return(false, nil)

		bad := req
		bad.Amount = decimal.Zero
		_, err := f.svc.Register(ctx, tenantID, bad)
		assertCode(t, err, "INVALID_AMOUNT")
	})
}

// =============================================================================
// RegisterBulk
// =============================================================================

func TestPDCService_RegisterBulk(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	batchInvoice := uuid.New()
	chequeDate := time.Now().AddDate(0, 0, 30)

	entry := func(number string) RegisterPDCRequest {
		return RegisterPDCRequest{
			ChequeNumber: number,
			BankName:     "ADCB",
			Amount:       decimal.NewFromInt(1000),
			ChequeDate:   chequeDate,
		}
	}

	t.Run("registers the whole batch with inherited invoice", func(t *testing.T) {
		f := newServiceFixture()
		f.tenantDir.On("TenantExists", mock.Anything, tenantID).Return(true, nil)
		f.pdcRepo.On("ExistsByChequeNumber", mock.Anything, tenantID, mock.Anything).Return(false, nil)
		f.pdcRepo.On("Create", mock.Anything, mock.AnythingOfType("*cheque.PDC")).Return(nil)

		resp, err := f.svc.RegisterBulk(ctx, tenantID, BulkRegisterRequest{
			InvoiceID: &batchInvoice,
			Items:     []RegisterPDCRequest{entry("CHQ-1"), entry("CHQ-2"), entry("CHQ-3")},
		})
		require.NoError(t, err)
		require.Len(t, resp, 3)
		for _, r := range resp {
			assert.Equal(t, &batchInvoice, r.InvoiceID)
			assert.Equal(t, "RECEIVED", r.Status)
		}
		f.pdcRepo.AssertNumberOfCalls(t, "Create", 3)
	})

	t.Run("entry-level invoice overrides the batch invoice", func(t *testing.T) {
		f := newServiceFixture()
		own := uuid.New()
		f.tenantDir.On("TenantExists", mock.Anything, tenantID).Return(true, nil)
		f.pdcRepo.On("ExistsByChequeNumber", mock.Anything, tenantID, mock.Anything).Return(false, nil)
		f.pdcRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

		withOwn := entry("CHQ-1")
		withOwn.InvoiceID = &own
		resp, err := f.svc.RegisterBulk(ctx, tenantID, BulkRegisterRequest{
			InvoiceID: &batchInvoice,
			Items:     []RegisterPDCRequest{withOwn, entry("CHQ-2")},
		})
		require.NoError(t, err)
		assert.Equal(t, &own, resp[0].InvoiceID)
		assert.Equal(t, &batchInvoice, resp[1].InvoiceID)
	})

	t.Run("rejects an empty batch", func(t *testing.T) {
		f := newServiceFixture()
		_, err := f.svc.RegisterBulk(ctx, tenantID, BulkRegisterRequest{})
		assertCode(t, err, "INVALID_INPUT")
	})

	t.Run("rejects duplicates within the batch before any write", func(t *testing.T) {
		f := newServiceFixture()
		f.tenantDir.On("TenantExists", mock.Anything, tenantID).Return(true, nil)

		_, err := f.svc.RegisterBulk(ctx, tenantID, BulkRegisterRequest{
			Items: []RegisterPDCRequest{entry("CHQ-1"), entry("CHQ-1")},
		})
		assertCode(t, err, "DUPLICATE_CHEQUE")
		f.pdcRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("one invalid entry fails the batch with its index", func(t *testing.T) {
		f := newServiceFixture()
		f.tenantDir.On("TenantExists", mock.Anything, tenantID).Return(true, nil)

		bad := entry("CHQ-2")
		bad.Amount = decimal.NewFromInt(-1)
		_, err := f.svc.RegisterBulk(ctx, tenantID, BulkRegisterRequest{
			Items: []RegisterPDCRequest{entry("CHQ-1"), bad},
		})
		assertCode(t, err, "INVALID_INPUT")
		assert.Contains(t, err.Error(), "Entry 2")
		f.pdcRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("an already registered number fails the batch", func(t *testing.T) {
		f := newServiceFixture()
		f.tenantDir.On("TenantExists", mock.Anything, tenantID).Return(true, nil)
		f.pdcRepo.On("ExistsByChequeNumber", mock.Anything, tenantID, "CHQ-1").Return(false, nil)
		f.pdcRepo.On("ExistsByChequeNumber", mock.Anything, tenantID, "CHQ-2").Return(true, nil)
		f.pdcRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

		_, err := f.svc.RegisterBulk(ctx, tenantID, BulkRegisterRequest{
			Items: []RegisterPDCRequest{entry("CHQ-1"), entry("CHQ-2")},
		})
		assertCode(t, err, "DUPLICATE_CHEQUE")
	})
}

// =============================================================================
// Transitions
// =============================================================================

func TestPDCService_Deposit(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	accountID := uuid.New()

	t.Run("deposits a received cheque", func(t *testing.T) {
		f := newServiceFixture()
		stored := newStoredPDC(t, tenantID, nil)
		f.bankDir.On("AccountExists", mock.Anything, accountID).Return(true, nil)
		f.pdcRepo.On("FindByIDForTenant", mock.Anything, tenantID, stored.ID).Return(stored, nil)
		f.pdcRepo.On("SaveWithLock", mock.Anything, stored).Return(nil)

		resp, err := f.svc.Deposit(ctx, tenantID, stored.ID, DepositRequest{
			DepositDate:   time.Now(),
			BankAccountID: accountID,
		})
		require.NoError(t, err)
		assert.Equal(t, "DEPOSITED", resp.Status)
		assert.Equal(t, 2, resp.Version)
	})

	t.Run("rejects an unknown bank account", func(t *testing.T) {
		f := newServiceFixture()
		f.bankDir.On("AccountExists", mock.Anything, accountID).Return(false, nil)

		_, err := f.svc.Deposit(ctx, tenantID, uuid.New(), DepositRequest{
			DepositDate:   time.Now(),
			BankAccountID: accountID,
		})
		assertCode(t, err, "NOT_FOUND")
	})

	t.Run("stale expected version fails before the transition", func(t *testing.T) {
		f := newServiceFixture()
		stored := newStoredPDC(t, tenantID, nil)
		stale := stored.Version - 1
		f.bankDir.On("AccountExists", mock.Anything, accountID).Return(true, nil)
		f.pdcRepo.On("FindByIDForTenant", mock.Anything, tenantID, stored.ID).Return(stored, nil)

		_, err := f.svc.Deposit(ctx, tenantID, stored.ID, DepositRequest{
			DepositDate:     time.Now(),
			BankAccountID:   accountID,
			ExpectedVersion: &stale,
		})
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.Equal(t, cheque.PDCStatusReceived, stored.Status)
		f.pdcRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("lock conflict surfaces from the repository", func(t *testing.T) {
		f := newServiceFixture()
		stored := newStoredPDC(t, tenantID, nil)
		f.bankDir.On("AccountExists", mock.Anything, accountID).Return(true, nil)
		f.pdcRepo.On("FindByIDForTenant", mock.Anything, tenantID, stored.ID).Return(stored, nil)
		f.pdcRepo.On("SaveWithLock", mock.Anything, stored).Return(shared.ErrConcurrencyConflict)

		_, err := f.svc.Deposit(ctx, tenantID, stored.ID, DepositRequest{
			DepositDate:   time.Now(),
			BankAccountID: accountID,
		})
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})
}

func TestPDCService_Clear(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("clears and reconciles the linked invoice", func(t *testing.T) {
		f := newServiceFixture()
		invoice, err := billing.NewInvoice(tenantID, "INV-1", valueobject.NewMoneyAEDFromFloat(12000), nil)
		require.NoError(t, err)
		stored := newDepositedStoredPDC(t, tenantID, &invoice.ID)

		f.pdcRepo.On("FindByIDForTenant", mock.Anything, tenantID, stored.ID).Return(stored, nil)
		f.pdcRepo.On("SaveWithLock", mock.Anything, stored).Return(nil)
		f.invoiceRepo.On("FindByIDForUpdate", mock.Anything, invoice.ID).Return(invoice, nil)
		f.invoiceRepo.On("Save", mock.Anything, invoice).Return(nil)

		result, err := f.svc.Clear(ctx, tenantID, stored.ID, ClearRequest{ClearedDate: time.Now()})
		require.NoError(t, err)

		assert.Equal(t, "CLEARED", result.PDC.Status)
		assert.True(t, result.InvoiceUpdated)
		assert.Empty(t, result.Warning)
		require.NotNil(t, result.Invoice)
		assert.Equal(t, "PARTIALLY_PAID", result.Invoice.Status)
		assert.True(t, result.Invoice.PaidAmount.Equal(decimal.NewFromInt(5000)))
		assert.True(t, result.Invoice.BalanceAmount.Equal(decimal.NewFromInt(7000)))
	})

	t.Run("clearing the final cheque pays the invoice off", func(t *testing.T) {
		f := newServiceFixture()
		invoice, err := billing.NewInvoice(tenantID, "INV-1", valueobject.NewMoneyAEDFromFloat(5000), nil)
		require.NoError(t, err)
		stored := newDepositedStoredPDC(t, tenantID, &invoice.ID)

		f.pdcRepo.On("FindByIDForTenant", mock.Anything, tenantID, stored.ID).Return(stored, nil)
		f.pdcRepo.On("SaveWithLock", mock.Anything, stored).Return(nil)
		f.invoiceRepo.On("FindByIDForUpdate", mock.Anything, invoice.ID).Return(invoice, nil)
		f.invoiceRepo.On("Save", mock.Anything, invoice).Return(nil)

		result, err := f.svc.Clear(ctx, tenantID, stored.ID, ClearRequest{ClearedDate: time.Now()})
		require.NoError(t, err)
		assert.Equal(t, "PAID", result.Invoice.Status)
		assert.True(t, result.Invoice.BalanceAmount.IsZero())
	})

	t.Run("clear without a linked invoice warns", func(t *testing.T) {
		f := newServiceFixture()
		stored := newDepositedStoredPDC(t, tenantID, nil)
		f.pdcRepo.On("FindByIDForTenant", mock.Anything, tenantID, stored.ID).Return(stored, nil)
		f.pdcRepo.On("SaveWithLock", mock.Anything, stored).Return(nil)

		result, err := f.svc.Clear(ctx, tenantID, stored.ID, ClearRequest{ClearedDate: time.Now()})
		require.NoError(t, err)
		assert.Equal(t, "CLEARED", result.PDC.Status)
		assert.False(t, result.InvoiceUpdated)
		assert.NotEmpty(t, result.Warning)
		f.invoiceRepo.AssertNotCalled(t, "FindByIDForUpdate", mock.Anything, mock.Anything)
	})

	t.Run("missing invoice warns but the clear stands", func(t *testing.T) {
		f := newServiceFixture()
		invoiceID := uuid.New()
		stored := newDepositedStoredPDC(t, tenantID, &invoiceID)
		f.pdcRepo.On("FindByIDForTenant", mock.Anything, tenantID, stored.ID).Return(stored, nil)
		f.pdcRepo.On("SaveWithLock", mock.Anything, stored).Return(nil)
		f.invoiceRepo.On("FindByIDForUpdate", mock.Anything, invoiceID).Return(nil, shared.ErrNotFound)

		result, err := f.svc.Clear(ctx, tenantID, stored.ID, ClearRequest{ClearedDate: time.Now()})
		require.NoError(t, err)
		assert.Equal(t, "CLEARED", result.PDC.Status)
		assert.False(t, result.InvoiceUpdated)
		assert.Contains(t, result.Warning, "not found")
		f.invoiceRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects clearing an undeposited cheque", func(t *testing.T) {
		f := newServiceFixture()
		stored := newStoredPDC(t, tenantID, nil)
		f.pdcRepo.On("FindByIDForTenant", mock.Anything, tenantID, stored.ID).Return(stored, nil)

		_, err := f.svc.Clear(ctx, tenantID, stored.ID, ClearRequest{ClearedDate: time.Now()})
		assertCode(t, err, "INVALID_TRANSITION")
	})

	t.Run("not found", func(t *testing.T) {
		f := newServiceFixture()
		id := uuid.New()
		f.pdcRepo.On("FindByIDForTenant", mock.Anything, tenantID, id).Return(nil, shared.ErrNotFound)

		_, err := f.svc.Clear(ctx, tenantID, id, ClearRequest{ClearedDate: time.Now()})
		assertCode(t, err, "NOT_FOUND")
	})
}

func TestPDCService_Bounce(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("bounces a deposited cheque", func(t *testing.T) {
		f := newServiceFixture()
		stored := newDepositedStoredPDC(t, tenantID, nil)
		f.pdcRepo.On("FindByIDForTenant", mock.Anything, tenantID, stored.ID).Return(stored, nil)
		f.pdcRepo.On("SaveWithLock", mock.Anything, stored).Return(nil)

		resp, err := f.svc.Bounce(ctx, tenantID, stored.ID, BounceRequest{
			BouncedDate: time.Now(),
			Reason:      "insufficient funds",
		})
		require.NoError(t, err)
		assert.Equal(t, "BOUNCED", resp.Status)
		assert.Equal(t, "insufficient funds", resp.BounceReason)
	})

	t.Run("requires a reason", func(t *testing.T) {
		f := newServiceFixture()
		stored := newDepositedStoredPDC(t, tenantID, nil)
		f.pdcRepo.On("FindByIDForTenant", mock.Anything, tenantID, stored.ID).Return(stored, nil)

		_, err := f.svc.Bounce(ctx, tenantID, stored.ID, BounceRequest{BouncedDate: time.Now()})
		assertCode(t, err, "INVALID_BOUNCE_REASON")
	})
}

func TestPDCService_Replace(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	bounced := func(t *testing.T, invoiceID *uuid.UUID) *cheque.PDC {
		p := newDepositedStoredPDC(t, tenantID, invoiceID)
		require.NoError(t, p.Bounce(time.Now(), "insufficient funds"))
		return p
	}

	req := ReplaceRequest{
		ChequeNumber: "CHQ-900",
		BankName:     "Mashreq",
		Amount:       decimal.NewFromInt(5000),
		ChequeDate:   time.Now().AddDate(0, 1, 0),
	}

	t.Run("replaces a bounced cheque atomically", func(t *testing.T) {
		f := newServiceFixture()
		invoiceID := uuid.New()
		original := bounced(t, &invoiceID)

		f.pdcRepo.On("FindByIDForTenant", mock.Anything, tenantID, original.ID).Return(original, nil)
		f.pdcRepo.On("ExistsByChequeNumber", mock.Anything, tenantID, "CHQ-900").Return(false, nil)
		f.pdcRepo.On("Create", mock.Anything, mock.AnythingOfType("*cheque.PDC")).Return(nil)
		f.pdcRepo.On("SaveWithLock", mock.Anything, original).Return(nil)

		result, err := f.svc.Replace(ctx, tenantID, original.ID, req)
		require.NoError(t, err)

		assert.Equal(t, "REPLACED", result.Original.Status)
		assert.Equal(t, "RECEIVED", result.Replacement.Status)
		assert.Equal(t, result.Replacement.ID, *result.Original.ReplacementPDCID)
		assert.Equal(t, result.Original.ID, *result.Replacement.OriginalPDCID)
		assert.Equal(t, &invoiceID, result.Replacement.InvoiceID)
		f.pdcRepo.AssertExpectations(t)
	})

	t.Run("rejects a duplicate replacement number", func(t *testing.T) {
		f := newServiceFixture()
		original := bounced(t, nil)
		f.pdcRepo.On("FindByIDForTenant", mock.Anything, tenantID, original.ID).Return(original, nil)
		f.pdcRepo.On("ExistsByChequeNumber", mock.Anything, tenantID, "CHQ-900").Return(true, nil)

		_, err := f.svc.Replace(ctx, tenantID, original.ID, req)
		assertCode(t, err, "DUPLICATE_CHEQUE")
		assert.Equal(t, cheque.PDCStatusBounced, original.Status)
	})

	t.Run("rejects a second replacement", func(t *testing.T) {
		f := newServiceFixture()
		original := bounced(t, nil)
		f.pdcRepo.On("FindByIDForTenant", mock.Anything, tenantID, original.ID).Return(original, nil)
		f.pdcRepo.On("ExistsByChequeNumber", mock.Anything, tenantID, mock.Anything).Return(false, nil)
		f.pdcRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.pdcRepo.On("SaveWithLock", mock.Anything, original).Return(nil)

		_, err := f.svc.Replace(ctx, tenantID, original.ID, req)
		require.NoError(t, err)

		second := req
		second.ChequeNumber = "CHQ-901"
		_, err = f.svc.Replace(ctx, tenantID, original.ID, second)
		assertCode(t, err, "ALREADY_REPLACED")
	})
}

func TestPDCService_Withdraw(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("withdraws with a normalized payment method", func(t *testing.T) {
		f := newServiceFixture()
		stored := newStoredPDC(t, tenantID, nil)
		f.pdcRepo.On("FindByIDForTenant", mock.Anything, tenantID, stored.ID).Return(stored, nil)
		f.pdcRepo.On("SaveWithLock", mock.Anything, stored).Return(nil)

		resp, err := f.svc.Withdraw(ctx, tenantID, stored.ID, WithdrawRequest{
			WithdrawalDate:   time.Now(),
			Reason:           "settled by transfer",
			NewPaymentMethod: "bank_transfer",
			TransactionID:    "TXN-77",
		})
		require.NoError(t, err)
		assert.Equal(t, "WITHDRAWN", resp.Status)
		assert.Equal(t, "BANK_TRANSFER", resp.NewPaymentMethod)
		assert.Equal(t, "TXN-77", resp.TransactionID)
	})

	t.Run("rejects withdrawing a deposited cheque", func(t *testing.T) {
		f := newServiceFixture()
		stored := newDepositedStoredPDC(t, tenantID, nil)
		f.pdcRepo.On("FindByIDForTenant", mock.Anything, tenantID, stored.ID).Return(stored, nil)

		_, err := f.svc.Withdraw(ctx, tenantID, stored.ID, WithdrawRequest{
			WithdrawalDate: time.Now(),
			Reason:         "tenant requested",
		})
		assertCode(t, err, "INVALID_TRANSITION")
	})
}

func TestPDCService_Cancel(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	f := newServiceFixture()
	stored := newStoredPDC(t, tenantID, nil)
	f.pdcRepo.On("FindByIDForTenant", mock.Anything, tenantID, stored.ID).Return(stored, nil)
	f.pdcRepo.On("SaveWithLock", mock.Anything, stored).Return(nil)

	resp, err := f.svc.Cancel(ctx, tenantID, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", resp.Status)
}

// =============================================================================
// Queries
// =============================================================================

func TestPDCService_List(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("maps the status filter", func(t *testing.T) {
		f := newServiceFixture()
		f.pdcRepo.On("FindByTenant", mock.Anything, tenantID, mock.MatchedBy(func(filter cheque.PDCFilter) bool {
			return filter.Status != nil && *filter.Status == cheque.PDCStatusDue
		})).Return([]cheque.PDC{}, int64(0), nil)

		_, err := f.svc.List(ctx, &tenantID, PDCListFilter{Status: "due", Page: 1, PageSize: 20})
		require.NoError(t, err)
		f.pdcRepo.AssertExpectations(t)
	})

	t.Run("rejects an unknown status", func(t *testing.T) {
		f := newServiceFixture()
		_, err := f.svc.List(ctx, &tenantID, PDCListFilter{Status: "FLOATING"})
		assertCode(t, err, "INVALID_INPUT")
	})

	t.Run("paginates results", func(t *testing.T) {
		f := newServiceFixture()
		stored := newStoredPDC(t, tenantID, nil)
		f.pdcRepo.On("FindByTenant", mock.Anything, tenantID, mock.Anything).
			Return([]cheque.PDC{*stored}, int64(41), nil)

		page, err := f.svc.List(ctx, &tenantID, PDCListFilter{Page: 2, PageSize: 20})
		require.NoError(t, err)
		assert.Equal(t, int64(41), page.Total)
		assert.Equal(t, 2, page.Page)
		assert.Equal(t, 3, page.TotalPages)
		require.Len(t, page.Items, 1)
	})

	t.Run("spans all tenants when unscoped", func(t *testing.T) {
		f := newServiceFixture()
		mine := newStoredPDC(t, tenantID, nil)
		theirs := newStoredPDC(t, uuid.New(), nil)
		f.pdcRepo.On("FindAll", mock.Anything, mock.Anything).
			Return([]cheque.PDC{*mine, *theirs}, int64(2), nil)

		page, err := f.svc.List(ctx, nil, PDCListFilter{Page: 1, PageSize: 20})
		require.NoError(t, err)
		assert.Equal(t, int64(2), page.Total)
		require.Len(t, page.Items, 2)
		f.pdcRepo.AssertNotCalled(t, "FindByTenant", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestPDCService_CheckDuplicate(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	f := newServiceFixture()
	f.pdcRepo.On("ExistsByChequeNumber", mock.Anything, tenantID, "CHQ-1").Return(true, nil)

	exists, err := f.svc.CheckDuplicate(ctx, tenantID, " CHQ-1 ")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = f.svc.CheckDuplicate(ctx, tenantID, "  ")
	assertCode(t, err, "INVALID_CHEQUE_NUMBER")
}

func TestPDCService_GetChain(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("returns the ordered chain", func(t *testing.T) {
		f := newServiceFixture()
		first := newStoredPDC(t, tenantID, nil)
		second := newStoredPDC(t, tenantID, nil)
		f.chainWalker.On("FindChain", mock.Anything, tenantID, second.ID).Return([]cheque.ChainLink{
			{PDC: *first, Position: 0},
			{PDC: *second, Position: 1},
		}, nil)

		links, err := f.svc.GetChain(ctx, tenantID, second.ID)
		require.NoError(t, err)
		require.Len(t, links, 2)
		assert.Equal(t, 0, links[0].Position)
		assert.Equal(t, first.ID, links[0].PDC.ID)
	})

	t.Run("empty chain means not found", func(t *testing.T) {
		f := newServiceFixture()
		id := uuid.New()
		f.chainWalker.On("FindChain", mock.Anything, tenantID, id).Return([]cheque.ChainLink{}, nil)

		_, err := f.svc.GetChain(ctx, tenantID, id)
		assertCode(t, err, "NOT_FOUND")
	})
}

// =============================================================================
// Scheduled reclassification
// =============================================================================

func TestPDCService_ReclassifyDue(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	asOf := time.Now()

	duePDC := func(t *testing.T) cheque.PDC {
		p := newStoredPDC(t, tenantID, nil)
		p.ChequeDate = asOf.AddDate(0, 0, -1)
		return *p
	}

	t.Run("moves matured cheques to DUE", func(t *testing.T) {
		f := newServiceFixture()
		batch := []cheque.PDC{duePDC(t), duePDC(t)}
		f.pdcRepo.On("FindDueForReclassification", mock.Anything, asOf, 100).Return(batch, nil)
		f.pdcRepo.On("SaveWithLock", mock.Anything, mock.MatchedBy(func(p *cheque.PDC) bool {
			return p.Status == cheque.PDCStatusDue
		})).Return(nil)

		moved, err := f.svc.ReclassifyDue(ctx, asOf, 0)
		require.NoError(t, err)
		assert.Equal(t, 2, moved)
	})

	t.Run("skips conflicting cheques and keeps going", func(t *testing.T) {
		f := newServiceFixture()
		batch := []cheque.PDC{duePDC(t), duePDC(t)}
		f.pdcRepo.On("FindDueForReclassification", mock.Anything, asOf, 100).Return(batch, nil)
		f.pdcRepo.On("SaveWithLock", mock.Anything, mock.Anything).Return(shared.ErrConcurrencyConflict).Once()
		f.pdcRepo.On("SaveWithLock", mock.Anything, mock.Anything).Return(nil).Once()

		moved, err := f.svc.ReclassifyDue(ctx, asOf, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, moved)
	})

	t.Run("other storage errors abort the pass", func(t *testing.T) {
		f := newServiceFixture()
		batch := []cheque.PDC{duePDC(t)}
		f.pdcRepo.On("FindDueForReclassification", mock.Anything, asOf, 100).Return(batch, nil)
		f.pdcRepo.On("SaveWithLock", mock.Anything, mock.Anything).Return(errors.New("connection reset"))

		_, err := f.svc.ReclassifyDue(ctx, asOf, 0)
		assert.Error(t, err)
	})
}
