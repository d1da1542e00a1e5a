package server

import (
	"context"

	"github.com/rezonia/afip-client/internal/model"
)

// Issuer is the slice of the issuance engine the HTTP facade consumes.
type Issuer interface {
	Issue(ctx context.Context, req model.InvoiceRequest) (*model.CAEResponse, error)
	LastAuthorized(ctx context.Context, invoiceType model.InvoiceType, pointOfSale int) (int64, error)
	Query(ctx context.Context, invoiceType model.InvoiceType, pointOfSale int, number int64) (*model.IssuedInvoice, error)
	PointsOfSale(ctx context.Context) ([]model.PointOfSale, error)
	Status(ctx context.Context) (*model.ServiceStatus, error)
}

// RegistryLookup resolves taxpayer records.
type RegistryLookup interface {
	GetPersona(ctx context.Context, cuit string) (*model.Taxpayer, error)
}

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Kind    model.Kind             `json:"kind"`
	Code    int                    `json:"code,omitempty"`
	Message string                 `json:"message"`
	Hint    string                 `json:"hint,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthResponse reports local liveness plus the remote status snapshot.
type HealthResponse struct {
	Status string               `json:"status"`
	Remote *model.ServiceStatus `json:"remote,omitempty"`
}
