// Package afip provides the public API for issuing electronic invoices
// through AFIP's web services (WSAA, WSFEv1 and the taxpayer registry).
//
// Example usage:
//
//	client, err := afip.New(afip.Config{
//	    CUIT:        "20111111112",
//	    Certificate: certPEM,
//	    PrivateKey:  keyPEM,
//	    Environment: afip.EnvironmentTesting,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := client.Issue(ctx, afip.InvoiceRequest{
//	    Type:        afip.InvoiceTypeFacturaC,
//	    PointOfSale: 1,
//	    Total:       decimal.NewFromInt(1500),
//	})
package afip

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rezonia/afip-client/internal/model"
	"github.com/rezonia/afip-client/internal/padron"
	"github.com/rezonia/afip-client/internal/soap"
	"github.com/rezonia/afip-client/internal/wsaa"
	"github.com/rezonia/afip-client/internal/wsfe"
)

// Config holds everything a client needs. Certificate and PrivateKey
// are PEM; they are never persisted by the library.
type Config struct {
	CUIT        string
	Certificate []byte
	PrivateKey  []byte
	Environment Environment

	// TokenStore is an optional external ticket cache (best-effort,
	// never authoritative).
	TokenStore TokenStore

	// Timeout bounds every remote round trip; defaults to 15s.
	Timeout time.Duration

	// HTTPClient replaces the transport entirely, including any TLS
	// compatibility behavior needed to reach legacy frontends.
	HTTPClient *http.Client

	// LegacyTLS relaxes TLS negotiation for AFIP's older servers.
	LegacyTLS bool

	Verbose bool
}

// Client is the top-level entry point. Safe for concurrent use; ticket
// acquisition is serialized internally.
type Client struct {
	cuit   string
	engine *wsfe.Engine
	padron *padron.Client
	auth   *wsaa.Manager
}

// New validates credentials and wires a client. Structural defects in
// the tax id are validation errors; unusable certificate or key
// material is an authentication error.
func New(cfg Config) (*Client, error) {
	cuit := model.NormalizeCUIT(cfg.CUIT)
	if !model.ValidCUIT(cuit) {
		return nil, model.NewValidationError("cuit", "not a structurally valid tax id")
	}
	if !cfg.Environment.Valid() {
		return nil, model.NewValidationError("environment", "must be testing or production")
	}

	signer, err := wsaa.NewSigner(model.Credentials{
		Certificate: cfg.Certificate,
		PrivateKey:  cfg.PrivateKey,
	})
	if err != nil {
		return nil, err
	}

	var transportOpts []soap.Option
	if cfg.HTTPClient != nil {
		transportOpts = append(transportOpts, soap.WithHTTPClient(cfg.HTTPClient))
	} else {
		if cfg.Timeout > 0 {
			transportOpts = append(transportOpts, soap.WithTimeout(cfg.Timeout))
		}
		if cfg.LegacyTLS {
			transportOpts = append(transportOpts, soap.WithLegacyTLS())
		}
	}
	transport := soap.NewClient(transportOpts...)

	authOpts := []wsaa.ManagerOption{wsaa.WithVerbose(cfg.Verbose)}
	padronAuthOpts := []wsaa.ManagerOption{
		wsaa.WithService(wsaa.ServicePadronA13),
		wsaa.WithVerbose(cfg.Verbose),
	}
	if cfg.TokenStore != nil {
		authOpts = append(authOpts, wsaa.WithTokenStore(cfg.TokenStore))
	}

	auth := wsaa.NewManager(cuit, cfg.Environment, signer, transport, authOpts...)
	padronAuth := wsaa.NewManager(cuit, cfg.Environment, signer, transport, padronAuthOpts...)

	engine := wsfe.NewEngine(cuit, cfg.Environment, auth, transport,
		wsfe.WithEngineVerbose(cfg.Verbose))

	return &Client{
		cuit:   cuit,
		engine: engine,
		auth:   auth,
		padron: padron.NewClient(cuit, cfg.Environment, padronAuth, transport),
	}, nil
}

// CUIT returns the normalized issuer tax id.
func (c *Client) CUIT() string {
	return c.cuit
}

// Engine exposes the issuance engine for embedding (HTTP facade, CLI).
func (c *Client) Engine() *wsfe.Engine {
	return c.engine
}

// Registry exposes the taxpayer-registry client for embedding.
func (c *Client) Registry() *padron.Client {
	return c.padron
}

// Authenticate forces ticket acquisition and returns the ticket. Most
// callers never need this; issuance acquires tickets on demand.
func (c *Client) Authenticate(ctx context.Context) (*Ticket, error) {
	return c.auth.Ticket(ctx)
}

// InvalidateTicket drops the cached ticket.
func (c *Client) InvalidateTicket() {
	c.auth.Invalidate()
}

// Issue authorizes one voucher.
func (c *Client) Issue(ctx context.Context, req InvoiceRequest) (*CAEResponse, error) {
	return c.engine.Issue(ctx, req)
}

// IssueSimple authorizes a flat-total voucher for an anonymous final
// consumer.
func (c *Client) IssueSimple(ctx context.Context, invoiceType InvoiceType, pointOfSale int, total decimal.Decimal) (*CAEResponse, error) {
	return c.engine.IssueSimple(ctx, invoiceType, pointOfSale, total)
}

// IssueCreditNote authorizes a credit note against associated vouchers.
func (c *Client) IssueCreditNote(ctx context.Context, req InvoiceRequest) (*CAEResponse, error) {
	return c.engine.IssueCreditNote(ctx, req)
}

// IssueDebitNote authorizes a debit note against associated vouchers.
func (c *Client) IssueDebitNote(ctx context.Context, req InvoiceRequest) (*CAEResponse, error) {
	return c.engine.IssueDebitNote(ctx, req)
}

// LastInvoiceNumber returns the last authorized voucher number.
func (c *Client) LastInvoiceNumber(ctx context.Context, invoiceType InvoiceType, pointOfSale int) (int64, error) {
	return c.engine.LastAuthorized(ctx, invoiceType, pointOfSale)
}

// QueryInvoice fetches a previously issued voucher.
func (c *Client) QueryInvoice(ctx context.Context, invoiceType InvoiceType, pointOfSale int, number int64) (*IssuedInvoice, error) {
	return c.engine.Query(ctx, invoiceType, pointOfSale, number)
}

// PointsOfSale lists the registered sales channels.
func (c *Client) PointsOfSale(ctx context.Context) ([]PointOfSale, error) {
	return c.engine.PointsOfSale(ctx)
}

// ServerStatus runs the remote health check.
func (c *Client) ServerStatus(ctx context.Context) (*ServiceStatus, error) {
	return c.engine.Status(ctx)
}

// Taxpayer looks up a registry record.
func (c *Client) Taxpayer(ctx context.Context, cuit string) (*Taxpayer, error) {
	return c.padron.GetPersona(ctx, cuit)
}
