package wsfe

import (
	"context"
	"log"
	"time"

	"github.com/shopspring/decimal"

	money "github.com/rezonia/afip-client/internal/decimal"
	"github.com/rezonia/afip-client/internal/model"
	"github.com/rezonia/afip-client/internal/soap"
	"github.com/rezonia/afip-client/internal/wsaa"
)

// Engine orchestrates voucher issuance: next-number query, VAT
// aggregation, request build, submission and QR generation.
//
// Numbering caveat: "read last number" and "authorize" are two separate
// round trips with no remote-side reservation. Two processes issuing
// against the same point of sale can both read the same last number and
// collide; the collision comes back as a remote error (code 10016), it
// is never silently corrupted. Callers sharing a point of sale across
// processes must serialize externally.
type Engine struct {
	cuit      string
	env       model.Environment
	auth      *wsaa.Manager
	transport *soap.Client
	endpoint  string
	verbose   bool

	now func() time.Time
}

// EngineOption configures the engine
type EngineOption func(*Engine)

// WithEngineEndpoint overrides the WSFE service URL, mainly for tests.
func WithEngineEndpoint(url string) EngineOption {
	return func(e *Engine) {
		e.endpoint = url
	}
}

// WithEngineClock replaces the time source, for tests.
func WithEngineClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// WithEngineVerbose enables request logging.
func WithEngineVerbose(verbose bool) EngineOption {
	return func(e *Engine) {
		e.verbose = verbose
	}
}

// NewEngine creates an issuance engine.
func NewEngine(cuit string, env model.Environment, auth *wsaa.Manager, transport *soap.Client, opts ...EngineOption) *Engine {
	e := &Engine{
		cuit:      cuit,
		env:       env,
		auth:      auth,
		transport: transport,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.endpoint == "" {
		e.endpoint = env.WSFEEndpoint()
	}
	return e
}

// IssueSimple authorizes a flat-total voucher for an anonymous final
// consumer.
func (e *Engine) IssueSimple(ctx context.Context, invoiceType model.InvoiceType, pointOfSale int, total decimal.Decimal) (*model.CAEResponse, error) {
	return e.Issue(ctx, model.InvoiceRequest{
		Type:        invoiceType,
		PointOfSale: pointOfSale,
		Total:       total,
	})
}

// IssueCreditNote authorizes a credit note. The request must reference
// at least one associated voucher.
func (e *Engine) IssueCreditNote(ctx context.Context, req model.InvoiceRequest) (*model.CAEResponse, error) {
	if !req.Type.IsCreditNote() {
		return nil, model.NewValidationError("type", "not a credit note voucher type")
	}
	return e.Issue(ctx, req)
}

// IssueDebitNote authorizes a debit note. The request must reference at
// least one associated voucher.
func (e *Engine) IssueDebitNote(ctx context.Context, req model.InvoiceRequest) (*model.CAEResponse, error) {
	if !req.Type.IsDebitNote() {
		return nil, model.NewValidationError("type", "not a debit note voucher type")
	}
	return e.Issue(ctx, req)
}

// Issue authorizes one voucher. Every public issuance operation
// converges here.
func (e *Engine) Issue(ctx context.Context, req model.InvoiceRequest) (*model.CAEResponse, error) {
	agg, err := e.prepare(&req)
	if err != nil {
		return nil, err
	}

	ticket, err := e.auth.Ticket(ctx)
	if err != nil {
		return nil, err
	}

	last, err := e.lastAuthorized(ctx, ticket, req.Type, req.PointOfSale)
	if err != nil {
		return nil, err
	}
	next := last + 1

	det, err := e.buildDetail(&req, agg, next)
	if err != nil {
		return nil, err
	}

	envelope, err := BuildCAERequest(ticket, e.cuit, req.Type, req.PointOfSale, det)
	if err != nil {
		return nil, model.NewNetworkError("failed to build request envelope", err)
	}

	if e.verbose {
		log.Printf("[WSFE] authorizing voucher type=%d pos=%d nro=%d total=%s",
			req.Type, req.PointOfSale, next, det.TotalAmount)
	}

	resp, err := e.transport.Call(ctx, e.endpoint, Action("FECAESolicitar"), envelope)
	if err != nil {
		return nil, err
	}

	res, err := ParseCAEResponse(resp.Body)
	if err != nil {
		return nil, err
	}
	if res.Number == 0 {
		res.Number = next
	}
	if res.Date == "" {
		res.Date = det.Date
	}

	out := &model.CAEResponse{
		InvoiceType:   req.Type,
		PointOfSale:   req.PointOfSale,
		InvoiceNumber: res.Number,
		Date:          res.Date,
		CAE:           res.CAE,
		CAEExpiry:     res.CAEExpiry,
		Result:        res.Result,
		Observations:  res.Observations,
		Items:         req.Items,
		VAT:           agg.ByRate,
		Total:         agg.Total,
	}

	// Rejected vouchers carry no CAE, so there is nothing to encode.
	if out.CAE != "" {
		qr, err := BuildQRURL(res, req.Type, req.PointOfSale, e.cuit, agg.Total, req.Buyer)
		if err != nil {
			return nil, err
		}
		out.QRURL = qr
	}

	return out, nil
}

// LastAuthorized returns the last authorized voucher number for a type
// and point of sale, 0 when none was ever issued.
func (e *Engine) LastAuthorized(ctx context.Context, invoiceType model.InvoiceType, pointOfSale int) (int64, error) {
	ticket, err := e.auth.Ticket(ctx)
	if err != nil {
		return 0, err
	}
	return e.lastAuthorized(ctx, ticket, invoiceType, pointOfSale)
}

func (e *Engine) lastAuthorized(ctx context.Context, ticket *model.Ticket, invoiceType model.InvoiceType, pointOfSale int) (int64, error) {
	envelope, err := BuildLastAuthorizedRequest(ticket, e.cuit, invoiceType, pointOfSale)
	if err != nil {
		return 0, model.NewNetworkError("failed to build request envelope", err)
	}
	resp, err := e.transport.Call(ctx, e.endpoint, Action("FECompUltimoAutorizado"), envelope)
	if err != nil {
		return 0, err
	}
	return ParseLastAuthorized(resp.Body)
}

// Query fetches a previously issued voucher.
func (e *Engine) Query(ctx context.Context, invoiceType model.InvoiceType, pointOfSale int, number int64) (*model.IssuedInvoice, error) {
	ticket, err := e.auth.Ticket(ctx)
	if err != nil {
		return nil, err
	}
	envelope, err := BuildQueryRequest(ticket, e.cuit, invoiceType, pointOfSale, number)
	if err != nil {
		return nil, model.NewNetworkError("failed to build request envelope", err)
	}
	resp, err := e.transport.Call(ctx, e.endpoint, Action("FECompConsultar"), envelope)
	if err != nil {
		return nil, err
	}
	return ParseQueryResponse(resp.Body)
}

// PointsOfSale lists the registered sales channels.
func (e *Engine) PointsOfSale(ctx context.Context) ([]model.PointOfSale, error) {
	ticket, err := e.auth.Ticket(ctx)
	if err != nil {
		return nil, err
	}
	envelope, err := BuildPointsOfSaleRequest(ticket, e.cuit)
	if err != nil {
		return nil, model.NewNetworkError("failed to build request envelope", err)
	}
	resp, err := e.transport.Call(ctx, e.endpoint, Action("FEParamGetPtosVenta"), envelope)
	if err != nil {
		return nil, err
	}
	return ParsePointsOfSale(resp.Body)
}

// Status runs the parameterless health check. No ticket is required.
func (e *Engine) Status(ctx context.Context) (*model.ServiceStatus, error) {
	envelope, err := BuildDummyRequest()
	if err != nil {
		return nil, model.NewNetworkError("failed to build request envelope", err)
	}
	resp, err := e.transport.Call(ctx, e.endpoint, Action("FEDummy"), envelope)
	if err != nil {
		return nil, err
	}
	return ParseDummy(resp.Body)
}

// prepare validates the request and settles totals. Nothing here
// touches the network; every defect is a validation error.
func (e *Engine) prepare(req *model.InvoiceRequest) (Aggregation, error) {
	var agg Aggregation

	if req.PointOfSale < 1 || req.PointOfSale > 9999 {
		return agg, model.NewValidationError("point_of_sale", "must be between 1 and 9999")
	}
	if req.Concept == 0 {
		req.Concept = model.ConceptProducts
	}
	if req.Type.RequiresAssociated() && len(req.Associated) == 0 {
		return agg, model.NewValidationError("associated", "credit and debit notes require at least one associated invoice")
	}

	if len(req.Items) > 0 {
		if req.Type.DiscriminatesVAT() {
			for _, item := range req.Items {
				if item.VATRate == nil {
					return agg, model.NewValidationError("items", "every item needs a vat_rate for this voucher type")
				}
				if _, ok := model.VATCodeForRate(*item.VATRate); !ok {
					return agg, model.NewValidationError("items", "unmapped VAT rate "+item.VATRate.String())
				}
			}
		}
		agg = Aggregate(req.Items, req.PricesIncludeVAT)
	} else {
		total := money.Round2(req.Total)
		agg = Aggregation{Subtotal: total, Total: total, Tax: money.Zero}
	}

	if !money.IsPositive(agg.Total) {
		return agg, model.NewValidationError("total", "must be greater than zero")
	}

	return agg, nil
}

// buildDetail assembles the outbound voucher detail from a validated
// request and its settled totals.
func (e *Engine) buildDetail(req *model.InvoiceRequest, agg Aggregation, number int64) (voucherDetail, error) {
	issueDate := req.IssueDate
	if issueDate.IsZero() {
		issueDate = e.now()
	}

	buyer := model.FinalConsumer()
	if req.Buyer != nil {
		buyer = *req.Buyer
	}

	det := voucherDetail{
		Concept:     req.Concept,
		DocType:     buyer.DocType,
		DocNumber:   buyer.DocNumber,
		Number:      number,
		Date:        issueDate.Format("20060102"),
		TotalAmount: money.Format(agg.Total),
		NetAmount:   money.Format(agg.Subtotal),
		ExemptNet:   "0.00",
		VATAmount:   money.Format(agg.Tax),
		Associated:  req.Associated,
	}

	if req.Concept.IncludesServices() {
		det.ServiceFrom = orDate(req.ServiceFrom, issueDate)
		det.ServiceTo = orDate(req.ServiceTo, issueDate)
		det.PaymentDue = orDate(req.PaymentDue, issueDate)
	}

	// The tax-breakdown block is only emitted when some rate is
	// actually non-zero; an all-zero item set is sent untaxed.
	if hasNonZeroRate(agg.ByRate) {
		for _, entry := range agg.ByRate {
			code, ok := model.VATCodeForRate(entry.Rate)
			if !ok {
				return det, model.NewValidationError("items", "unmapped VAT rate "+entry.Rate.String())
			}
			det.VAT = append(det.VAT, vatBlock{
				Code:   code,
				Base:   money.Format(entry.Base),
				Amount: money.Format(entry.Amount),
			})
		}
	}

	return det, nil
}

func hasNonZeroRate(entries []model.VATEntry) bool {
	for _, e := range entries {
		if !e.Rate.IsZero() {
			return true
		}
	}
	return false
}

func orDate(t, fallback time.Time) string {
	if t.IsZero() {
		return fallback.Format("20060102")
	}
	return t.Format("20060102")
}
