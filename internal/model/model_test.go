package model_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/afip-client/internal/model"
)

func TestEnvironmentEndpoints(t *testing.T) {
	assert.Contains(t, model.EnvironmentTesting.WSAAEndpoint(), "wsaahomo")
	assert.Contains(t, model.EnvironmentProduction.WSAAEndpoint(), "wsaa.afip.gov.ar")
	assert.Contains(t, model.EnvironmentTesting.WSFEEndpoint(), "wswhomo")
	assert.Contains(t, model.EnvironmentProduction.WSFEEndpoint(), "servicios1")

	assert.True(t, model.EnvironmentTesting.Valid())
	assert.True(t, model.EnvironmentProduction.Valid())
	assert.False(t, model.Environment("staging").Valid())
}

func TestInvoiceTypeClassification(t *testing.T) {
	assert.True(t, model.InvoiceTypeFacturaA.DiscriminatesVAT())
	assert.True(t, model.InvoiceTypeFacturaB.DiscriminatesVAT())
	assert.False(t, model.InvoiceTypeFacturaC.DiscriminatesVAT())

	assert.True(t, model.InvoiceTypeNotaCredB.IsCreditNote())
	assert.True(t, model.InvoiceTypeNotaDebitoA.IsDebitNote())
	assert.False(t, model.InvoiceTypeFacturaC.IsCreditNote())

	assert.True(t, model.InvoiceTypeNotaCredC.RequiresAssociated())
	assert.False(t, model.InvoiceTypeFacturaA.RequiresAssociated())
}

func TestTicketValidFor(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	buffer := 5 * time.Minute

	fresh := &model.Ticket{ExpiresAt: now.Add(time.Hour)}
	assert.True(t, fresh.ValidFor(now, buffer))

	// Inside the renewal buffer counts as invalid.
	closing := &model.Ticket{ExpiresAt: now.Add(4 * time.Minute)}
	assert.False(t, closing.ValidFor(now, buffer))

	boundary := &model.Ticket{ExpiresAt: now.Add(buffer)}
	assert.False(t, boundary.ValidFor(now, buffer))

	expired := &model.Ticket{ExpiresAt: now.Add(-time.Minute)}
	assert.False(t, expired.ValidFor(now, buffer))

	var nilTicket *model.Ticket
	assert.False(t, nilTicket.ValidFor(now, buffer))
}

func TestFinalConsumer(t *testing.T) {
	buyer := model.FinalConsumer()
	assert.Equal(t, model.DocTypeFinalConsumer, buyer.DocType)
	assert.Equal(t, "0", buyer.DocNumber)
}

func TestVATCodeForRate(t *testing.T) {
	tests := []struct {
		rate float64
		code int
		ok   bool
	}{
		{0, 3, true},
		{10.5, 4, true},
		{21, 5, true},
		{27, 6, true},
		{15, 0, false},
		{5, 0, false},
	}
	for _, tt := range tests {
		code, ok := model.VATCodeForRate(decimal.NewFromFloat(tt.rate))
		assert.Equal(t, tt.ok, ok, "rate %v", tt.rate)
		assert.Equal(t, tt.code, code, "rate %v", tt.rate)
	}
}

func TestNormalizeCUIT(t *testing.T) {
	assert.Equal(t, "20111111112", model.NormalizeCUIT("20-11111111-2"))
	assert.Equal(t, "20111111112", model.NormalizeCUIT("20.11111111.2"))
	assert.Equal(t, "", model.NormalizeCUIT("no digits"))
}

func TestValidCUIT(t *testing.T) {
	// Known-valid tax ids (correct mod-11 check digit).
	assert.True(t, model.ValidCUIT("20111111112"))
	assert.True(t, model.ValidCUIT("30500010912"))
	assert.True(t, model.ValidCUIT("20-11111111-2"))

	assert.False(t, model.ValidCUIT("20111111113"))
	assert.False(t, model.ValidCUIT("2011111111"))
	assert.False(t, model.ValidCUIT(""))
	assert.False(t, model.ValidCUIT("201111111120"))
}

func TestErrorFormatting(t *testing.T) {
	err := model.NewRemoteError(10016, "CbteDesde inconsistente", "re-query the last number")
	require.Contains(t, err.Error(), "remote")
	require.Contains(t, err.Error(), "10016")
	require.Contains(t, err.Error(), "CbteDesde")
	assert.Equal(t, "re-query the last number", err.Hint)
}

func TestErrorUnwrap(t *testing.T) {
	cause := assert.AnError
	err := model.NewNetworkError("request failed", cause)
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "network")
}

func TestErrorKinds(t *testing.T) {
	assert.True(t, model.IsValidation(model.NewValidationError("total", "must be positive")))
	assert.True(t, model.IsAuthentication(model.NewAuthError("bad key", nil)))
	assert.True(t, model.IsNetwork(model.NewNetworkError("timeout", nil)))
	assert.True(t, model.IsRemote(model.NewRemoteError(600, "token invalid", "")))

	assert.False(t, model.IsRemote(model.NewValidationError("x", "y")))
	assert.Equal(t, model.Kind(""), model.KindOf(assert.AnError))
}

func TestValidationErrorCarriesField(t *testing.T) {
	err := model.NewValidationError("point_of_sale", "must be between 1 and 9999")
	require.Contains(t, err.Error(), "point_of_sale")
	assert.Equal(t, "point_of_sale", err.Details["field"])
}
