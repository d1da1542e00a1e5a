// Package wsfe implements AFIP's electronic invoicing service (WSFEv1):
// envelope codec, VAT aggregation, the issuance engine and the fiscal
// QR payload.
package wsfe

import (
	"fmt"
	"strconv"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/rezonia/afip-client/internal/model"
	"github.com/rezonia/afip-client/internal/soap"
)

const (
	feNamespace = "http://ar.gov.afip.dif.FEV1/"
)

// Action returns the SOAPAction header value for a WSFE operation.
func Action(op string) string {
	return feNamespace + op
}

func newEnvelope(op string) (*etree.Document, *etree.Element) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	env := doc.CreateElement("soapenv:Envelope")
	env.CreateAttr("xmlns:soapenv", "http://schemas.xmlsoap.org/soap/envelope/")
	env.CreateAttr("xmlns:ar", feNamespace)

	body := env.CreateElement("soapenv:Body")
	opElem := body.CreateElement("ar:" + op)
	return doc, opElem
}

func addAuth(parent *etree.Element, ticket *model.Ticket, cuit string) {
	auth := parent.CreateElement("ar:Auth")
	auth.CreateElement("ar:Token").SetText(ticket.Token)
	auth.CreateElement("ar:Sign").SetText(ticket.Sign)
	auth.CreateElement("ar:Cuit").SetText(cuit)
}

// voucherDetail is the outbound FECAEDetRequest, assembled by the
// engine. Monetary fields are preformatted 2-decimal strings; dates are
// fixed 8-digit strings.
type voucherDetail struct {
	Concept     model.Concept
	DocType     model.DocType
	DocNumber   string
	Number      int64
	Date        string
	TotalAmount string
	NetAmount   string
	ExemptNet   string
	VATAmount   string
	ServiceFrom string
	ServiceTo   string
	PaymentDue  string
	Associated  []model.AssociatedInvoice
	VAT         []vatBlock
}

type vatBlock struct {
	Code   int
	Base   string
	Amount string
}

// BuildCAERequest builds the FECAESolicitar envelope for a single
// voucher (CantReg is always 1).
func BuildCAERequest(ticket *model.Ticket, cuit string, invoiceType model.InvoiceType, pointOfSale int, det voucherDetail) ([]byte, error) {
	doc, op := newEnvelope("FECAESolicitar")
	addAuth(op, ticket, cuit)

	req := op.CreateElement("ar:FeCAEReq")

	cab := req.CreateElement("ar:FeCabReq")
	cab.CreateElement("ar:CantReg").SetText("1")
	cab.CreateElement("ar:PtoVta").SetText(strconv.Itoa(pointOfSale))
	cab.CreateElement("ar:CbteTipo").SetText(strconv.Itoa(int(invoiceType)))

	detReq := req.CreateElement("ar:FeDetReq")
	d := detReq.CreateElement("ar:FECAEDetRequest")
	d.CreateElement("ar:Concepto").SetText(strconv.Itoa(int(det.Concept)))
	d.CreateElement("ar:DocTipo").SetText(strconv.Itoa(int(det.DocType)))
	d.CreateElement("ar:DocNro").SetText(det.DocNumber)
	d.CreateElement("ar:CbteDesde").SetText(strconv.FormatInt(det.Number, 10))
	d.CreateElement("ar:CbteHasta").SetText(strconv.FormatInt(det.Number, 10))
	d.CreateElement("ar:CbteFch").SetText(det.Date)
	d.CreateElement("ar:ImpTotal").SetText(det.TotalAmount)
	d.CreateElement("ar:ImpTotConc").SetText("0.00")
	d.CreateElement("ar:ImpNeto").SetText(det.NetAmount)
	d.CreateElement("ar:ImpOpEx").SetText(det.ExemptNet)
	d.CreateElement("ar:ImpTrib").SetText("0.00")
	d.CreateElement("ar:ImpIVA").SetText(det.VATAmount)

	if det.Concept.IncludesServices() {
		d.CreateElement("ar:FchServDesde").SetText(det.ServiceFrom)
		d.CreateElement("ar:FchServHasta").SetText(det.ServiceTo)
		d.CreateElement("ar:FchVtoPago").SetText(det.PaymentDue)
	}

	d.CreateElement("ar:MonId").SetText("PES")
	d.CreateElement("ar:MonCotiz").SetText("1")

	if len(det.Associated) > 0 {
		assoc := d.CreateElement("ar:CbtesAsoc")
		for _, a := range det.Associated {
			e := assoc.CreateElement("ar:CbteAsoc")
			e.CreateElement("ar:Tipo").SetText(strconv.Itoa(int(a.Type)))
			e.CreateElement("ar:PtoVta").SetText(strconv.Itoa(a.PointOfSale))
			e.CreateElement("ar:Nro").SetText(strconv.FormatInt(a.Number, 10))
		}
	}

	if len(det.VAT) > 0 {
		iva := d.CreateElement("ar:Iva")
		for _, v := range det.VAT {
			e := iva.CreateElement("ar:AlicIva")
			e.CreateElement("ar:Id").SetText(strconv.Itoa(v.Code))
			e.CreateElement("ar:BaseImp").SetText(v.Base)
			e.CreateElement("ar:Importe").SetText(v.Amount)
		}
	}

	return doc.WriteToBytes()
}

// BuildLastAuthorizedRequest builds the FECompUltimoAutorizado envelope.
func BuildLastAuthorizedRequest(ticket *model.Ticket, cuit string, invoiceType model.InvoiceType, pointOfSale int) ([]byte, error) {
	doc, op := newEnvelope("FECompUltimoAutorizado")
	addAuth(op, ticket, cuit)
	op.CreateElement("ar:PtoVta").SetText(strconv.Itoa(pointOfSale))
	op.CreateElement("ar:CbteTipo").SetText(strconv.Itoa(int(invoiceType)))
	return doc.WriteToBytes()
}

// BuildQueryRequest builds the FECompConsultar envelope.
func BuildQueryRequest(ticket *model.Ticket, cuit string, invoiceType model.InvoiceType, pointOfSale int, number int64) ([]byte, error) {
	doc, op := newEnvelope("FECompConsultar")
	addAuth(op, ticket, cuit)
	cmp := op.CreateElement("ar:FeCompConsReq")
	cmp.CreateElement("ar:CbteTipo").SetText(strconv.Itoa(int(invoiceType)))
	cmp.CreateElement("ar:CbteNro").SetText(strconv.FormatInt(number, 10))
	cmp.CreateElement("ar:PtoVta").SetText(strconv.Itoa(pointOfSale))
	return doc.WriteToBytes()
}

// BuildPointsOfSaleRequest builds the FEParamGetPtosVenta envelope.
func BuildPointsOfSaleRequest(ticket *model.Ticket, cuit string) ([]byte, error) {
	doc, op := newEnvelope("FEParamGetPtosVenta")
	addAuth(op, ticket, cuit)
	return doc.WriteToBytes()
}

// BuildDummyRequest builds the parameterless FEDummy envelope.
func BuildDummyRequest() ([]byte, error) {
	doc, _ := newEnvelope("FEDummy")
	return doc.WriteToBytes()
}

// caeResult is the decoded FECAESolicitar response before the engine
// composes the public CAEResponse.
type caeResult struct {
	Result       model.Result
	Number       int64
	Date         string
	CAE          string
	CAEExpiry    string
	Observations []model.Observation
}

// ParseCAEResponse decodes a FECAESolicitar response. A non-empty
// remote error list wins and surfaces as a remote error with the first
// entry's code, message and static hint.
func ParseCAEResponse(body []byte) (*caeResult, error) {
	root, err := parseBody(body, "FECAESolicitarResult")
	if err != nil {
		return nil, err
	}
	if err := remoteErrors(root); err != nil {
		return nil, err
	}

	dets := soap.FindAllLocal(root, "FECAEDetResponse")
	if len(dets) == 0 {
		return nil, model.NewNetworkError("response missing voucher detail", nil)
	}
	det := dets[0]

	res := &caeResult{
		Result:    model.Result(soap.Text(det, "Resultado")),
		Date:      soap.Text(det, "CbteFch"),
		CAE:       soap.Text(det, "CAE"),
		CAEExpiry: soap.Text(det, "CAEFchVto"),
	}
	if res.Result == "" {
		res.Result = model.Result(soap.Text(root, "Resultado"))
	}
	res.Number, _ = strconv.ParseInt(soap.Text(det, "CbteDesde"), 10, 64)

	// Observations arrive on approved vouchers too.
	for _, obs := range soap.FindAllLocal(det, "Obs") {
		code, _ := strconv.Atoi(soap.Text(obs, "Code"))
		res.Observations = append(res.Observations, model.Observation{
			Code:    code,
			Message: soap.Text(obs, "Msg"),
		})
	}

	return res, nil
}

// ParseLastAuthorized decodes a FECompUltimoAutorizado response into
// the last authorized voucher number (0 when none was ever issued).
func ParseLastAuthorized(body []byte) (int64, error) {
	root, err := parseBody(body, "FECompUltimoAutorizadoResult")
	if err != nil {
		return 0, err
	}
	if err := remoteErrors(root); err != nil {
		return 0, err
	}

	nro := soap.Text(root, "CbteNro")
	if nro == "" {
		return 0, model.NewNetworkError("response missing CbteNro", nil)
	}
	n, err := strconv.ParseInt(nro, 10, 64)
	if err != nil {
		return 0, model.NewNetworkError(fmt.Sprintf("unparseable CbteNro %q", nro), err)
	}
	return n, nil
}

// ParseQueryResponse decodes a FECompConsultar response.
func ParseQueryResponse(body []byte) (*model.IssuedInvoice, error) {
	root, err := parseBody(body, "FECompConsultarResult")
	if err != nil {
		return nil, err
	}
	if err := remoteErrors(root); err != nil {
		return nil, err
	}

	info := soap.FindLocal(root, "ResultGet")
	if info == nil {
		return nil, model.NewNetworkError("response missing voucher data", nil)
	}

	inv := &model.IssuedInvoice{
		Date:         soap.Text(info, "CbteFch"),
		CAE:          soap.Text(info, "CodAutorizacion"),
		CAEExpiry:    soap.Text(info, "FchVto"),
		Result:       model.Result(soap.Text(info, "Resultado")),
		EmissionType: soap.Text(info, "EmisionTipo"),
	}
	if t, err := strconv.Atoi(soap.Text(info, "CbteTipo")); err == nil {
		inv.InvoiceType = model.InvoiceType(t)
	}
	if p, err := strconv.Atoi(soap.Text(info, "PtoVta")); err == nil {
		inv.PointOfSale = p
	}
	inv.InvoiceNumber, _ = strconv.ParseInt(soap.Text(info, "CbteDesde"), 10, 64)
	if total, err := decimal.NewFromString(soap.Text(info, "ImpTotal")); err == nil {
		inv.Total = total
	}

	return inv, nil
}

// ParsePointsOfSale decodes a FEParamGetPtosVenta response. The service
// returns a single PtoVenta element when only one channel exists, so
// arity is never assumed.
func ParsePointsOfSale(body []byte) ([]model.PointOfSale, error) {
	root, err := parseBody(body, "FEParamGetPtosVentaResult")
	if err != nil {
		return nil, err
	}
	if err := remoteErrors(root); err != nil {
		return nil, err
	}

	var out []model.PointOfSale
	for _, e := range soap.FindAllLocal(root, "PtoVenta") {
		nro, _ := strconv.Atoi(soap.Text(e, "Nro"))
		out = append(out, model.PointOfSale{
			Number:       nro,
			EmissionType: soap.Text(e, "EmisionTipo"),
			Blocked:      soap.Text(e, "Bloqueado") == "S",
		})
	}
	return out, nil
}

// ParseDummy decodes a FEDummy response.
func ParseDummy(body []byte) (*model.ServiceStatus, error) {
	root, err := parseBody(body, "FEDummyResult")
	if err != nil {
		return nil, err
	}
	return &model.ServiceStatus{
		AppServer:  soap.Text(root, "AppServer"),
		DbServer:   soap.Text(root, "DbServer"),
		AuthServer: soap.Text(root, "AuthServer"),
	}, nil
}

// parseBody decodes a response body and locates the named result
// element, with fault detection taking priority.
func parseBody(body []byte, result string) (*etree.Element, error) {
	// A fault wins over any structural mismatch. The service accepted
	// the call and rejected it, so it classifies as remote.
	if fault, ok := soap.ParseFault(body); ok {
		return nil, model.NewRemoteError(0, fmt.Sprintf("service fault %s: %s", fault.Code, fault.Message), "")
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, model.NewNetworkError("failed to parse response", err)
	}
	if doc.Root() == nil {
		return nil, model.NewNetworkError("empty response", nil)
	}

	elem := soap.FindLocal(doc.Root(), result)
	if elem == nil {
		return nil, model.NewNetworkError(fmt.Sprintf("response missing %s", result), nil)
	}
	return elem, nil
}

// remoteErrors maps a non-empty Errors list to a remote error built
// from the first entry. Unknown codes degrade to no hint.
func remoteErrors(result *etree.Element) error {
	errs := soap.FindLocal(result, "Errors")
	if errs == nil {
		return nil
	}
	entries := soap.FindAllLocal(errs, "Err")
	if len(entries) == 0 {
		return nil
	}
	code, _ := strconv.Atoi(soap.Text(entries[0], "Code"))
	msg := soap.Text(entries[0], "Msg")
	return model.NewRemoteError(code, msg, HintForCode(code))
}
