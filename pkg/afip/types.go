package afip

import (
	"github.com/rezonia/afip-client/internal/model"
	"github.com/rezonia/afip-client/internal/wsaa"
)

// Re-export core types for public API
type (
	Environment       = model.Environment
	InvoiceType       = model.InvoiceType
	DocType           = model.DocType
	Concept           = model.Concept
	Ticket            = model.Ticket
	TokenStore        = wsaa.TokenStore
	Buyer             = model.Buyer
	InvoiceItem       = model.InvoiceItem
	InvoiceRequest    = model.InvoiceRequest
	AssociatedInvoice = model.AssociatedInvoice
	CAEResponse       = model.CAEResponse
	IssuedInvoice     = model.IssuedInvoice
	VATEntry          = model.VATEntry
	Observation       = model.Observation
	PointOfSale       = model.PointOfSale
	ServiceStatus     = model.ServiceStatus
	Taxpayer          = model.Taxpayer
	Error             = model.Error
	Kind              = model.Kind
)

// Re-export environments
const (
	EnvironmentTesting    = model.EnvironmentTesting
	EnvironmentProduction = model.EnvironmentProduction
)

// Re-export voucher types
const (
	InvoiceTypeFacturaA    = model.InvoiceTypeFacturaA
	InvoiceTypeNotaDebitoA = model.InvoiceTypeNotaDebitoA
	InvoiceTypeNotaCredA   = model.InvoiceTypeNotaCredA
	InvoiceTypeFacturaB    = model.InvoiceTypeFacturaB
	InvoiceTypeNotaDebitoB = model.InvoiceTypeNotaDebitoB
	InvoiceTypeNotaCredB   = model.InvoiceTypeNotaCredB
	InvoiceTypeFacturaC    = model.InvoiceTypeFacturaC
	InvoiceTypeNotaDebitoC = model.InvoiceTypeNotaDebitoC
	InvoiceTypeNotaCredC   = model.InvoiceTypeNotaCredC
)

// Re-export document types
const (
	DocTypeCUIT          = model.DocTypeCUIT
	DocTypeCUIL          = model.DocTypeCUIL
	DocTypeDNI           = model.DocTypeDNI
	DocTypeFinalConsumer = model.DocTypeFinalConsumer
)

// Re-export billing concepts
const (
	ConceptProducts            = model.ConceptProducts
	ConceptServices            = model.ConceptServices
	ConceptProductsAndServices = model.ConceptProductsAndServices
)

// Re-export error kinds
const (
	KindValidation     = model.KindValidation
	KindAuthentication = model.KindAuthentication
	KindNetwork        = model.KindNetwork
	KindRemote         = model.KindRemote
)

// Re-export helpers
var (
	Rate          = model.Rate
	FinalConsumer = model.FinalConsumer
	ValidCUIT     = model.ValidCUIT
	NormalizeCUIT = model.NormalizeCUIT

	IsValidation     = model.IsValidation
	IsAuthentication = model.IsAuthentication
	IsNetwork        = model.IsNetwork
	IsRemote         = model.IsRemote

	NewMemoryStore = wsaa.NewMemoryStore
)
