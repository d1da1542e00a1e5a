package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Environment selects the AFIP deployment target. It is immutable for
// the lifetime of a client instance.
type Environment string

const (
	EnvironmentTesting    Environment = "testing"
	EnvironmentProduction Environment = "production"
)

// Valid reports whether the environment is one of the two known targets.
func (e Environment) Valid() bool {
	return e == EnvironmentTesting || e == EnvironmentProduction
}

// WSAAEndpoint returns the LoginCms URL for the environment.
func (e Environment) WSAAEndpoint() string {
	if e == EnvironmentProduction {
		return "https://wsaa.afip.gov.ar/ws/services/LoginCms"
	}
	return "https://wsaahomo.afip.gov.ar/ws/services/LoginCms"
}

// WSFEEndpoint returns the WSFEv1 service URL for the environment.
func (e Environment) WSFEEndpoint() string {
	if e == EnvironmentProduction {
		return "https://servicios1.afip.gov.ar/wsfev1/service.asmx"
	}
	return "https://wswhomo.afip.gov.ar/wsfev1/service.asmx"
}

// PadronEndpoint returns the ws_sr_padron_a13 service URL for the environment.
func (e Environment) PadronEndpoint() string {
	if e == EnvironmentProduction {
		return "https://aws.afip.gov.ar/sr-padron/webservices/personaServiceA13"
	}
	return "https://awshomo.afip.gov.ar/sr-padron/webservices/personaServiceA13"
}

// QRBaseURL is the fixed prefix of the fiscal QR URL. The base64 payload
// is appended verbatim, never percent-encoded.
const QRBaseURL = "https://www.afip.gob.ar/fe/qr/?p="

// InvoiceType is the AFIP voucher type code (CbteTipo).
type InvoiceType int

const (
	InvoiceTypeFacturaA    InvoiceType = 1
	InvoiceTypeNotaDebitoA InvoiceType = 2
	InvoiceTypeNotaCredA   InvoiceType = 3
	InvoiceTypeFacturaB    InvoiceType = 6
	InvoiceTypeNotaDebitoB InvoiceType = 7
	InvoiceTypeNotaCredB   InvoiceType = 8
	InvoiceTypeFacturaC    InvoiceType = 11
	InvoiceTypeNotaDebitoC InvoiceType = 12
	InvoiceTypeNotaCredC   InvoiceType = 13
)

// DiscriminatesVAT reports whether the voucher type carries a VAT
// breakdown. Class A and B vouchers do; class C (monotributo) does not.
func (t InvoiceType) DiscriminatesVAT() bool {
	switch t {
	case InvoiceTypeFacturaA, InvoiceTypeNotaDebitoA, InvoiceTypeNotaCredA,
		InvoiceTypeFacturaB, InvoiceTypeNotaDebitoB, InvoiceTypeNotaCredB:
		return true
	}
	return false
}

// IsCreditNote reports whether the type is a credit note.
func (t InvoiceType) IsCreditNote() bool {
	return t == InvoiceTypeNotaCredA || t == InvoiceTypeNotaCredB || t == InvoiceTypeNotaCredC
}

// IsDebitNote reports whether the type is a debit note.
func (t InvoiceType) IsDebitNote() bool {
	return t == InvoiceTypeNotaDebitoA || t == InvoiceTypeNotaDebitoB || t == InvoiceTypeNotaDebitoC
}

// RequiresAssociated reports whether the voucher must reference a
// previously issued document.
func (t InvoiceType) RequiresAssociated() bool {
	return t.IsCreditNote() || t.IsDebitNote()
}

// DocType is the AFIP identity-document type code (DocTipo).
type DocType int

const (
	DocTypeCUIT          DocType = 80
	DocTypeCUIL          DocType = 86
	DocTypeDNI           DocType = 96
	DocTypeFinalConsumer DocType = 99
)

// Concept is the AFIP billing concept (Concepto).
type Concept int

const (
	ConceptProducts            Concept = 1
	ConceptServices            Concept = 2
	ConceptProductsAndServices Concept = 3
)

// IncludesServices reports whether the concept requires service period dates.
func (c Concept) IncludesServices() bool {
	return c == ConceptServices || c == ConceptProductsAndServices
}

// Credentials holds the caller's PEM-encoded certificate and private
// key. The library never persists either; they are read only while a
// signing operation is in flight.
type Credentials struct {
	Certificate []byte
	PrivateKey  []byte
}

// Ticket is a WSAA authentication ticket. Tickets are never mutated,
// only replaced.
type Ticket struct {
	Token       string    `json:"token"`
	Sign        string    `json:"sign"`
	GeneratedAt time.Time `json:"generated_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// ValidFor reports whether the ticket is still usable at instant now,
// keeping at least buffer of remaining validity.
func (t *Ticket) ValidFor(now time.Time, buffer time.Duration) bool {
	if t == nil {
		return false
	}
	return now.Before(t.ExpiresAt.Add(-buffer))
}

// Buyer identifies the invoice receptor. A nil Buyer on a request means
// an anonymous final consumer.
type Buyer struct {
	DocType   DocType `json:"doc_type"`
	DocNumber string  `json:"doc_number"`
}

// FinalConsumer returns the anonymous final-consumer receptor.
func FinalConsumer() Buyer {
	return Buyer{DocType: DocTypeFinalConsumer, DocNumber: "0"}
}

// InvoiceItem is a single line of an itemized voucher. Items are inputs
// only; the engine never mutates them.
type InvoiceItem struct {
	Description string           `json:"description"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	VATRate     *decimal.Decimal `json:"vat_rate,omitempty"`
}

// Rate is a convenience constructor for an item VAT rate.
func Rate(percent float64) *decimal.Decimal {
	d := decimal.NewFromFloat(percent)
	return &d
}

// AssociatedInvoice references a previously issued voucher. Required on
// credit and debit notes.
type AssociatedInvoice struct {
	Type        InvoiceType `json:"type"`
	PointOfSale int         `json:"point_of_sale"`
	Number      int64       `json:"number"`
}

// InvoiceRequest describes a voucher to authorize. Either Items or
// Total must be supplied; when both are present Items win and Total is
// recomputed.
type InvoiceRequest struct {
	Type             InvoiceType         `json:"type"`
	PointOfSale      int                 `json:"point_of_sale"`
	Concept          Concept             `json:"concept,omitempty"`
	Buyer            *Buyer              `json:"buyer,omitempty"`
	Items            []InvoiceItem       `json:"items,omitempty"`
	Total            decimal.Decimal     `json:"total,omitempty"`
	PricesIncludeVAT bool                `json:"prices_include_vat,omitempty"`
	Associated       []AssociatedInvoice `json:"associated,omitempty"`

	// IssueDate defaults to "now" when zero.
	IssueDate time.Time `json:"issue_date,omitempty"`

	// Service period, only meaningful for concepts 2 and 3. Each
	// defaults to the issue date when zero.
	ServiceFrom time.Time `json:"service_from,omitempty"`
	ServiceTo   time.Time `json:"service_to,omitempty"`
	PaymentDue  time.Time `json:"payment_due,omitempty"`
}

// Result is the remote approval verdict.
type Result string

const (
	ResultApproved Result = "A"
	ResultRejected Result = "R"
)

// VATEntry is one aggregated tax bucket, one per distinct rate.
type VATEntry struct {
	Rate   decimal.Decimal `json:"rate"`
	Base   decimal.Decimal `json:"base"`
	Amount decimal.Decimal `json:"amount"`
}

// Observation is a remote advisory message; present even on approved
// vouchers.
type Observation struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// CAEResponse is the outcome of one issuance call. Date and CAEExpiry
// are kept as the remote's fixed 8-digit strings; coercing them to
// numbers would lose leading zeros.
type CAEResponse struct {
	InvoiceType   InvoiceType     `json:"invoice_type"`
	PointOfSale   int             `json:"point_of_sale"`
	InvoiceNumber int64           `json:"invoice_number"`
	Date          string          `json:"date"`
	CAE           string          `json:"cae"`
	CAEExpiry     string          `json:"cae_expiry"`
	Result        Result          `json:"result"`
	Observations  []Observation   `json:"observations,omitempty"`
	Items         []InvoiceItem   `json:"items,omitempty"`
	VAT           []VATEntry      `json:"vat,omitempty"`
	Total         decimal.Decimal `json:"total"`
	QRURL         string          `json:"qr_url,omitempty"`
}

// IssuedInvoice is a previously authorized voucher returned by the
// query operation.
type IssuedInvoice struct {
	InvoiceType   InvoiceType     `json:"invoice_type"`
	PointOfSale   int             `json:"point_of_sale"`
	InvoiceNumber int64           `json:"invoice_number"`
	Date          string          `json:"date"`
	CAE           string          `json:"cae"`
	CAEExpiry     string          `json:"cae_expiry"`
	Result        Result          `json:"result"`
	Total         decimal.Decimal `json:"total"`
	EmissionType  string          `json:"emission_type,omitempty"`
}

// PointOfSale is a registered sales channel.
type PointOfSale struct {
	Number       int    `json:"number"`
	EmissionType string `json:"emission_type"`
	Blocked      bool   `json:"blocked"`
}

// ServiceStatus is a transient health snapshot of the remote service.
type ServiceStatus struct {
	AppServer  string `json:"app_server"`
	DbServer   string `json:"db_server"`
	AuthServer string `json:"auth_server"`
}

// OK reports whether all three servers answered "OK".
func (s *ServiceStatus) OK() bool {
	return s.AppServer == "OK" && s.DbServer == "OK" && s.AuthServer == "OK"
}

// Taxpayer is a registry record from the padron service.
type Taxpayer struct {
	CUIT       string `json:"cuit"`
	Name       string `json:"name"`
	Kind       string `json:"kind,omitempty"`
	Address    string `json:"address,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Province   string `json:"province,omitempty"`
}

// vatCodes maps a VAT percentage to AFIP's AlicIva Id.
var vatCodes = []struct {
	rate decimal.Decimal
	code int
}{
	{decimal.NewFromInt(0), 3},
	{decimal.NewFromFloat(10.5), 4},
	{decimal.NewFromInt(21), 5},
	{decimal.NewFromInt(27), 6},
}

// VATCodeForRate returns the AFIP numeric code for a VAT percentage.
// Only the legally valid rates are mapped.
func VATCodeForRate(rate decimal.Decimal) (int, bool) {
	for _, m := range vatCodes {
		if m.rate.Equal(rate) {
			return m.code, true
		}
	}
	return 0, false
}
