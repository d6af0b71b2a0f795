package cheque

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func replacementInput() ReplacementInput {
	return ReplacementInput{
		ChequeNumber: "CHQ-2001",
		BankName:     "Emirates NBD",
		Amount:       valueobject.NewMoneyAEDFromFloat(5000),
		ChequeDate:   time.Now().AddDate(0, 1, 0),
		Notes:        "reissued after bounce",
	}
}

func TestReplacementService_Replace(t *testing.T) {
	svc := NewReplacementService()

	t.Run("links both directions", func(t *testing.T) {
		original := createBouncedPDC(t)

		replacement, err := svc.Replace(original, replacementInput())
		require.NoError(t, err)

		assert.Equal(t, PDCStatusReplaced, original.Status)
		require.NotNil(t, original.ReplacementPDCID)
		assert.Equal(t, replacement.ID, *original.ReplacementPDCID)

		assert.Equal(t, PDCStatusReceived, replacement.Status)
		require.NotNil(t, replacement.OriginalPDCID)
		assert.Equal(t, original.ID, *replacement.OriginalPDCID)

		assert.True(t, original.HasReplacement())
		assert.True(t, replacement.IsReplacement())
	})

	t.Run("replacement inherits tenant invoice and lease", func(t *testing.T) {
		invoiceID := uuid.New()
		leaseID := uuid.New()
		original := createBouncedPDC(t)
		original.InvoiceID = &invoiceID
		original.LeaseID = &leaseID

		replacement, err := svc.Replace(original, replacementInput())
		require.NoError(t, err)

		assert.Equal(t, original.TenantID, replacement.TenantID)
		assert.Equal(t, &invoiceID, replacement.InvoiceID)
		assert.Equal(t, &leaseID, replacement.LeaseID)
	})

	t.Run("invoice override wins over inheritance", func(t *testing.T) {
		originalInvoice := uuid.New()
		override := uuid.New()
		original := createBouncedPDC(t)
		original.InvoiceID = &originalInvoice

		input := replacementInput()
		input.InvoiceID = &override

		replacement, err := svc.Replace(original, input)
		require.NoError(t, err)
		assert.Equal(t, &override, replacement.InvoiceID)
	})

	t.Run("amount may differ from the original", func(t *testing.T) {
		original := createBouncedPDC(t)
		input := replacementInput()
		input.Amount = valueobject.NewMoneyAEDFromFloat(5150)

		replacement, err := svc.Replace(original, input)
		require.NoError(t, err)
		assert.True(t, replacement.Amount.Equal(valueobject.NewMoneyAEDFromFloat(5150).Amount()))
	})

	t.Run("rejects a second replacement", func(t *testing.T) {
		original := createBouncedPDC(t)
		_, err := svc.Replace(original, replacementInput())
		require.NoError(t, err)

		input := replacementInput()
		input.ChequeNumber = "CHQ-2002"
		_, err = svc.Replace(original, input)
		assertDomainErrorCode(t, err, "ALREADY_REPLACED")
	})

	t.Run("rejects non-bounced originals", func(t *testing.T) {
		for name, build := range map[string]func(t *testing.T) *PDC{
			"RECEIVED":  createTestPDC,
			"DEPOSITED": createDepositedPDC,
			"CLEARED": func(t *testing.T) *PDC {
				p := createDepositedPDC(t)
				require.NoError(t, p.Clear(time.Now()))
				return p
			},
		} {
			t.Run(name, func(t *testing.T) {
				_, err := svc.Replace(build(t), replacementInput())
				assertDomainErrorCode(t, err, "INVALID_TRANSITION")
			})
		}
	})

	t.Run("rejects reusing the bounced cheque number", func(t *testing.T) {
		original := createBouncedPDC(t)
		input := replacementInput()
		input.ChequeNumber = " " + original.ChequeNumber + " "
		_, err := svc.Replace(original, input)
		assertDomainErrorCode(t, err, "INVALID_CHEQUE_NUMBER")
		assert.Equal(t, PDCStatusBounced, original.Status)
	})

	t.Run("nil original", func(t *testing.T) {
		_, err := svc.Replace(nil, replacementInput())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("invalid replacement fields leave the original untouched", func(t *testing.T) {
		original := createBouncedPDC(t)
		input := replacementInput()
		input.Amount = valueobject.ZeroAED()

		_, err := svc.Replace(original, input)
		assertDomainErrorCode(t, err, "INVALID_AMOUNT")
		assert.Equal(t, PDCStatusBounced, original.Status)
		assert.Nil(t, original.ReplacementPDCID)
	})
}

func TestReplacementService_ChainOfReplacements(t *testing.T) {
	svc := NewReplacementService()

	first := createBouncedPDC(t)
	second, err := svc.Replace(first, replacementInput())
	require.NoError(t, err)

	// The replacement itself bounces and gets replaced again.
	require.NoError(t, second.Deposit(time.Now(), uuid.New()))
	require.NoError(t, second.Bounce(time.Now(), "account closed"))

	input := replacementInput()
	input.ChequeNumber = "CHQ-3001"
	third, err := svc.Replace(second, input)
	require.NoError(t, err)

	// Walkable in both directions with no cycles.
	assert.Equal(t, second.ID, *first.ReplacementPDCID)
	assert.Equal(t, first.ID, *second.OriginalPDCID)
	assert.Equal(t, third.ID, *second.ReplacementPDCID)
	assert.Equal(t, second.ID, *third.OriginalPDCID)
	assert.Nil(t, first.OriginalPDCID)
	assert.Nil(t, third.ReplacementPDCID)

	// A REPLACED record rejects every further transition, including another replace.
	_, err = svc.Replace(first, ReplacementInput{
		ChequeNumber: "CHQ-4001",
		BankName:     "ADCB",
		Amount:       valueobject.NewMoneyAEDFromFloat(5000),
		ChequeDate:   time.Now().AddDate(0, 1, 0),
	})
	assertDomainErrorCode(t, err, "ALREADY_REPLACED")
	assertDomainErrorCode(t, first.Cancel(), "INVALID_TRANSITION")
	assertDomainErrorCode(t, first.Withdraw(time.Now(), "reason", "", ""), "INVALID_TRANSITION")
}
