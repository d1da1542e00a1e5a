// Package padron queries AFIP's taxpayer registry (ws_sr_padron_a13).
// It is a thin collaborator: one request/response mapping reusing the
// WSAA ticket manager, with no lifecycle of its own.
package padron

import (
	"context"
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/rezonia/afip-client/internal/model"
	"github.com/rezonia/afip-client/internal/soap"
	"github.com/rezonia/afip-client/internal/wsaa"
)

const padronNamespace = "http://a13.soap.ws.server.puc.sr/"

// Client looks up taxpayer records.
type Client struct {
	cuit      string
	env       model.Environment
	auth      *wsaa.Manager
	transport *soap.Client
	endpoint  string
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithEndpoint overrides the registry service URL, mainly for tests.
func WithEndpoint(url string) ClientOption {
	return func(c *Client) {
		c.endpoint = url
	}
}

// NewClient creates a registry client. auth must be scoped to the
// ws_sr_padron_a13 service.
func NewClient(cuit string, env model.Environment, auth *wsaa.Manager, transport *soap.Client, opts ...ClientOption) *Client {
	c := &Client{cuit: cuit, env: env, auth: auth, transport: transport}
	for _, opt := range opts {
		opt(c)
	}
	if c.endpoint == "" {
		c.endpoint = env.PadronEndpoint()
	}
	return c
}

// GetPersona returns the registry record for a tax id.
func (c *Client) GetPersona(ctx context.Context, cuit string) (*model.Taxpayer, error) {
	queried := model.NormalizeCUIT(cuit)
	if !model.ValidCUIT(queried) {
		return nil, model.NewValidationError("cuit", "not a structurally valid tax id")
	}

	ticket, err := c.auth.Ticket(ctx)
	if err != nil {
		return nil, err
	}

	envelope, err := buildRequest(ticket, c.cuit, queried)
	if err != nil {
		return nil, model.NewNetworkError("failed to build request envelope", err)
	}

	resp, err := c.transport.Call(ctx, c.endpoint, "", envelope)
	if err != nil {
		return nil, err
	}

	return parseResponse(resp.Body, queried)
}

func buildRequest(ticket *model.Ticket, issuerCUIT, queriedCUIT string) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	env := doc.CreateElement("soapenv:Envelope")
	env.CreateAttr("xmlns:soapenv", "http://schemas.xmlsoap.org/soap/envelope/")
	env.CreateAttr("xmlns:a13", padronNamespace)

	body := env.CreateElement("soapenv:Body")
	op := body.CreateElement("a13:getPersona")
	op.CreateElement("token").SetText(ticket.Token)
	op.CreateElement("sign").SetText(ticket.Sign)
	op.CreateElement("cuitRepresentada").SetText(model.NormalizeCUIT(issuerCUIT))
	op.CreateElement("idPersona").SetText(queriedCUIT)

	return doc.WriteToBytes()
}

func parseResponse(body []byte, queried string) (*model.Taxpayer, error) {
	if fault, ok := soap.ParseFault(body); ok {
		if strings.Contains(strings.ToLower(fault.Message), "no existe") {
			return nil, model.NewRemoteError(0, fmt.Sprintf("taxpayer %s not found", queried), "")
		}
		return nil, model.NewRemoteError(0, fmt.Sprintf("registry fault: %s", fault.Message), "")
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, model.NewNetworkError("failed to parse registry response", err)
	}
	if doc.Root() == nil {
		return nil, model.NewNetworkError("empty registry response", nil)
	}

	persona := soap.FindLocal(doc.Root(), "persona")
	if persona == nil {
		return nil, model.NewRemoteError(0, fmt.Sprintf("taxpayer %s not found", queried), "")
	}

	tp := &model.Taxpayer{
		CUIT: queried,
		Kind: soap.Text(persona, "tipoPersona"),
	}

	if razon := soap.Text(persona, "razonSocial"); razon != "" {
		tp.Name = razon
	} else {
		tp.Name = strings.TrimSpace(soap.Text(persona, "apellido") + " " + soap.Text(persona, "nombre"))
	}

	// First registered address, when present.
	if dom := soap.FindLocal(persona, "domicilio"); dom != nil {
		tp.Address = soap.Text(dom, "direccion")
		tp.PostalCode = soap.Text(dom, "codigoPostal")
		tp.Province = soap.Text(dom, "descripcionProvincia")
	}

	return tp, nil
}
