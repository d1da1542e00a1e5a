package wsfe

import (
	"errors"
	"fmt"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/afip-client/internal/model"
	"github.com/rezonia/afip-client/internal/soap"
)

var testTicket = &model.Ticket{Token: "tok", Sign: "sig"}

func findText(t *testing.T, body []byte, local string) string {
	t.Helper()
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(body))
	require.NotNil(t, doc.Root())
	return soap.Text(doc.Root(), local)
}

func TestBuildCAERequest(t *testing.T) {
	det := voucherDetail{
		Concept:     model.ConceptProducts,
		DocType:     model.DocTypeCUIT,
		DocNumber:   "30500010912",
		Number:      15,
		Date:        "20260829",
		TotalAmount: "894.50",
		NetAmount:   "800.00",
		ExemptNet:   "0.00",
		VATAmount:   "94.50",
		VAT: []vatBlock{
			{Code: 5, Base: "200.00", Amount: "42.00"},
			{Code: 4, Base: "500.00", Amount: "52.50"},
		},
	}

	body, err := BuildCAERequest(testTicket, "20111111112", model.InvoiceTypeFacturaB, 3, det)
	require.NoError(t, err)

	assert.Equal(t, "tok", findText(t, body, "Token"))
	assert.Equal(t, "20111111112", findText(t, body, "Cuit"))
	assert.Equal(t, "1", findText(t, body, "CantReg"))
	assert.Equal(t, "3", findText(t, body, "PtoVta"))
	assert.Equal(t, "6", findText(t, body, "CbteTipo"))
	assert.Equal(t, "15", findText(t, body, "CbteDesde"))
	assert.Equal(t, "15", findText(t, body, "CbteHasta"))
	assert.Equal(t, "894.50", findText(t, body, "ImpTotal"))
	assert.Equal(t, "94.50", findText(t, body, "ImpIVA"))
	assert.Equal(t, "PES", findText(t, body, "MonId"))

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(body))
	blocks := soap.FindAllLocal(doc.Root(), "AlicIva")
	require.Len(t, blocks, 2)
	assert.Equal(t, "5", soap.Text(blocks[0], "Id"))
	assert.Equal(t, "4", soap.Text(blocks[1], "Id"))

	// Products never carry service dates.
	assert.Equal(t, "", findText(t, body, "FchServDesde"))
}

func TestBuildCAERequestServiceDates(t *testing.T) {
	det := voucherDetail{
		Concept:     model.ConceptServices,
		DocType:     model.DocTypeFinalConsumer,
		DocNumber:   "0",
		Number:      1,
		Date:        "20260829",
		TotalAmount: "100.00",
		NetAmount:   "100.00",
		ExemptNet:   "0.00",
		VATAmount:   "0.00",
		ServiceFrom: "20260801",
		ServiceTo:   "20260831",
		PaymentDue:  "20260910",
	}

	body, err := BuildCAERequest(testTicket, "20111111112", model.InvoiceTypeFacturaC, 1, det)
	require.NoError(t, err)

	assert.Equal(t, "20260801", findText(t, body, "FchServDesde"))
	assert.Equal(t, "20260831", findText(t, body, "FchServHasta"))
	assert.Equal(t, "20260910", findText(t, body, "FchVtoPago"))
}

func TestBuildCAERequestAssociated(t *testing.T) {
	det := voucherDetail{
		Concept:     model.ConceptProducts,
		DocType:     model.DocTypeCUIT,
		DocNumber:   "30500010912",
		Number:      2,
		Date:        "20260829",
		TotalAmount: "100.00",
		NetAmount:   "82.64",
		ExemptNet:   "0.00",
		VATAmount:   "17.36",
		Associated: []model.AssociatedInvoice{
			{Type: model.InvoiceTypeFacturaA, PointOfSale: 3, Number: 15},
		},
	}

	body, err := BuildCAERequest(testTicket, "20111111112", model.InvoiceTypeNotaCredA, 3, det)
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(body))
	assoc := soap.FindLocal(doc.Root(), "CbteAsoc")
	require.NotNil(t, assoc)
	assert.Equal(t, "1", soap.Text(assoc, "Tipo"))
	assert.Equal(t, "15", soap.Text(assoc, "Nro"))
}

func caeResponseBody(result, cae, obs string) []byte {
	return []byte(fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <FECAESolicitarResponse xmlns="http://ar.gov.afip.dif.FEV1/">
      <FECAESolicitarResult>
        <FeCabResp><Resultado>%s</Resultado></FeCabResp>
        <FeDetResp>
          <FECAEDetResponse>
            <Concepto>1</Concepto>
            <CbteDesde>16</CbteDesde>
            <CbteHasta>16</CbteHasta>
            <CbteFch>20260829</CbteFch>
            <Resultado>%s</Resultado>
            <CAE>%s</CAE>
            <CAEFchVto>20260908</CAEFchVto>
            %s
          </FECAEDetResponse>
        </FeDetResp>
      </FECAESolicitarResult>
    </FECAESolicitarResponse>
  </soap:Body>
</soap:Envelope>`, result, result, cae, obs))
}

func TestParseCAEResponseApproved(t *testing.T) {
	res, err := ParseCAEResponse(caeResponseBody("A", "71234567890123", ""))
	require.NoError(t, err)

	assert.Equal(t, model.ResultApproved, res.Result)
	assert.Equal(t, int64(16), res.Number)
	assert.Equal(t, "20260829", res.Date)
	assert.Equal(t, "71234567890123", res.CAE)
	assert.Equal(t, "20260908", res.CAEExpiry)
	assert.Empty(t, res.Observations)
}

func TestParseCAEResponseRejectedWithObservations(t *testing.T) {
	obs := `<Observaciones>
      <Obs><Code>10048</Code><Msg>docnro invalido</Msg></Obs>
      <Obs><Code>10018</Code><Msg>otro problema</Msg></Obs>
    </Observaciones>`

	res, err := ParseCAEResponse(caeResponseBody("R", "", obs))
	require.NoError(t, err)

	assert.Equal(t, model.ResultRejected, res.Result)
	assert.Empty(t, res.CAE)
	require.Len(t, res.Observations, 2)
	assert.Equal(t, 10048, res.Observations[0].Code)
	assert.Equal(t, "docnro invalido", res.Observations[0].Message)
	assert.Equal(t, 10018, res.Observations[1].Code)
}

func TestParseCAEResponseRemoteErrorWins(t *testing.T) {
	body := []byte(`<?xml version="1.0"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <FECAESolicitarResponse xmlns="http://ar.gov.afip.dif.FEV1/">
      <FECAESolicitarResult>
        <Errors>
          <Err><Code>600</Code><Msg>ValidacionDeToken: no validado</Msg></Err>
          <Err><Code>602</Code><Msg>segundo error</Msg></Err>
        </Errors>
      </FECAESolicitarResult>
    </FECAESolicitarResponse>
  </soap:Body>
</soap:Envelope>`)

	_, err := ParseCAEResponse(body)
	require.Error(t, err)
	assert.True(t, model.IsRemote(err))

	var remote *model.Error
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, 600, remote.Code)
	assert.Contains(t, remote.Message, "ValidacionDeToken")
	assert.Equal(t, HintForCode(600), remote.Hint)
	assert.NotEmpty(t, remote.Hint)
}

func TestParseCAEResponseFault(t *testing.T) {
	body := []byte(`<?xml version="1.0"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <soap:Fault>
      <faultcode>soap:Server</faultcode>
      <faultstring>internal error</faultstring>
    </soap:Fault>
  </soap:Body>
</soap:Envelope>`)

	_, err := ParseCAEResponse(body)
	require.Error(t, err)
	assert.True(t, model.IsRemote(err))
	assert.Contains(t, err.Error(), "internal error")
}

func TestParseCAEResponseMissingResult(t *testing.T) {
	_, err := ParseCAEResponse([]byte(`<Envelope><Body></Body></Envelope>`))
	require.Error(t, err)
	assert.True(t, model.IsNetwork(err))
}

func TestParseLastAuthorized(t *testing.T) {
	body := []byte(`<?xml version="1.0"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <FECompUltimoAutorizadoResponse xmlns="http://ar.gov.afip.dif.FEV1/">
      <FECompUltimoAutorizadoResult>
        <PtoVta>3</PtoVta>
        <CbteTipo>6</CbteTipo>
        <CbteNro>15</CbteNro>
      </FECompUltimoAutorizadoResult>
    </FECompUltimoAutorizadoResponse>
  </soap:Body>
</soap:Envelope>`)

	n, err := ParseLastAuthorized(body)
	require.NoError(t, err)
	assert.Equal(t, int64(15), n)
}

func TestParseLastAuthorizedZero(t *testing.T) {
	body := []byte(`<Envelope><Body>
    <FECompUltimoAutorizadoResult><CbteNro>0</CbteNro></FECompUltimoAutorizadoResult>
  </Body></Envelope>`)

	n, err := ParseLastAuthorized(body)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestParseQueryResponse(t *testing.T) {
	body := []byte(`<?xml version="1.0"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <FECompConsultarResponse xmlns="http://ar.gov.afip.dif.FEV1/">
      <FECompConsultarResult>
        <ResultGet>
          <CbteTipo>6</CbteTipo>
          <PtoVta>3</PtoVta>
          <CbteDesde>15</CbteDesde>
          <CbteFch>20260829</CbteFch>
          <ImpTotal>894.50</ImpTotal>
          <Resultado>A</Resultado>
          <CodAutorizacion>71234567890123</CodAutorizacion>
          <EmisionTipo>CAE</EmisionTipo>
          <FchVto>20260908</FchVto>
        </ResultGet>
      </FECompConsultarResult>
    </FECompConsultarResponse>
  </soap:Body>
</soap:Envelope>`)

	inv, err := ParseQueryResponse(body)
	require.NoError(t, err)

	assert.Equal(t, model.InvoiceTypeFacturaB, inv.InvoiceType)
	assert.Equal(t, 3, inv.PointOfSale)
	assert.Equal(t, int64(15), inv.InvoiceNumber)
	assert.Equal(t, "71234567890123", inv.CAE)
	assert.Equal(t, "20260908", inv.CAEExpiry)
	assert.Equal(t, model.ResultApproved, inv.Result)
	assert.Equal(t, "CAE", inv.EmissionType)
	assert.Equal(t, "894.5", inv.Total.String())
}

func TestParseQueryResponseNotFound(t *testing.T) {
	body := []byte(`<Envelope><Body>
    <FECompConsultarResult>
      <Errors><Err><Code>602</Code><Msg>No existen datos</Msg></Err></Errors>
    </FECompConsultarResult>
  </Body></Envelope>`)

	_, err := ParseQueryResponse(body)
	require.Error(t, err)
	assert.True(t, model.IsRemote(err))

	var remote *model.Error
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, 602, remote.Code)
}

func TestParsePointsOfSaleSingle(t *testing.T) {
	// The service collapses single-element collections; arity must not
	// be assumed.
	body := []byte(`<Envelope><Body>
    <FEParamGetPtosVentaResult>
      <ResultGet>
        <PtoVenta><Nro>1</Nro><EmisionTipo>CAE</EmisionTipo><Bloqueado>N</Bloqueado></PtoVenta>
      </ResultGet>
    </FEParamGetPtosVentaResult>
  </Body></Envelope>`)

	pos, err := ParsePointsOfSale(body)
	require.NoError(t, err)
	require.Len(t, pos, 1)
	assert.Equal(t, 1, pos[0].Number)
	assert.Equal(t, "CAE", pos[0].EmissionType)
	assert.False(t, pos[0].Blocked)
}

func TestParsePointsOfSaleMultiple(t *testing.T) {
	body := []byte(`<Envelope><Body>
    <FEParamGetPtosVentaResult>
      <ResultGet>
        <PtoVenta><Nro>1</Nro><EmisionTipo>CAE</EmisionTipo><Bloqueado>N</Bloqueado></PtoVenta>
        <PtoVenta><Nro>2</Nro><EmisionTipo>CAEA</EmisionTipo><Bloqueado>S</Bloqueado></PtoVenta>
      </ResultGet>
    </FEParamGetPtosVentaResult>
  </Body></Envelope>`)

	pos, err := ParsePointsOfSale(body)
	require.NoError(t, err)
	require.Len(t, pos, 2)
	assert.True(t, pos[1].Blocked)
	assert.Equal(t, "CAEA", pos[1].EmissionType)
}

func TestParseDummy(t *testing.T) {
	body := []byte(`<Envelope><Body>
    <FEDummyResult>
      <AppServer>OK</AppServer>
      <DbServer>OK</DbServer>
      <AuthServer>OK</AuthServer>
    </FEDummyResult>
  </Body></Envelope>`)

	st, err := ParseDummy(body)
	require.NoError(t, err)
	assert.True(t, st.OK())

	st.DbServer = "DOWN"
	assert.False(t, st.OK())
}

func TestHintForCode(t *testing.T) {
	assert.NotEmpty(t, HintForCode(600))
	assert.NotEmpty(t, HintForCode(10048))
	assert.Empty(t, HintForCode(99999))
}
