package wsaa

import (
	"fmt"
	"time"

	"github.com/beevik/etree"

	"github.com/rezonia/afip-client/internal/model"
	"github.com/rezonia/afip-client/internal/soap"
)

const loginNamespace = "http://wsaa.view.sua.dvadac.desein.afip.gov"

// BuildLoginEnvelope wraps a base64 CMS blob in the loginCms SOAP
// envelope.
func BuildLoginEnvelope(cms string) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	env := doc.CreateElement("soapenv:Envelope")
	env.CreateAttr("xmlns:soapenv", "http://schemas.xmlsoap.org/soap/envelope/")
	env.CreateAttr("xmlns:wsaa", loginNamespace)

	body := env.CreateElement("soapenv:Body")
	login := body.CreateElement("wsaa:loginCms")
	login.CreateElement("wsaa:in0").SetText(cms)

	return doc.WriteToBytes()
}

// ParseLoginResponse decodes a LoginCms response into a ticket. The
// ticket document arrives XML-escaped inside loginCmsReturn, so two
// sequential decodes are required. A SOAP fault always wins over a
// structural mismatch and surfaces as an authentication error.
func ParseLoginResponse(body []byte) (*model.Ticket, error) {
	if fault, ok := soap.ParseFault(body); ok {
		return nil, model.NewAuthError(fmt.Sprintf("authentication rejected: %s", fault.Message), nil)
	}

	outer := etree.NewDocument()
	if err := outer.ReadFromBytes(body); err != nil {
		return nil, model.NewAuthError("failed to parse authentication response", err)
	}
	if outer.Root() == nil {
		return nil, model.NewAuthError("empty authentication response", nil)
	}

	ret := soap.FindLocal(outer.Root(), "loginCmsReturn")
	if ret == nil {
		return nil, model.NewAuthError("authentication response missing loginCmsReturn", nil)
	}

	// Second decode: the escaped loginTicketResponse document.
	inner := etree.NewDocument()
	if err := inner.ReadFromString(ret.Text()); err != nil {
		return nil, model.NewAuthError("failed to parse login ticket", err)
	}
	root := inner.Root()
	if root == nil {
		return nil, model.NewAuthError("empty login ticket", nil)
	}

	token := soap.Text(root, "token")
	sign := soap.Text(root, "sign")
	if token == "" || sign == "" {
		return nil, model.NewAuthError("login ticket missing credentials", nil)
	}

	generated, err := parseTicketTime(soap.Text(root, "generationTime"))
	if err != nil {
		return nil, model.NewAuthError("invalid generation time in login ticket", err)
	}
	expires, err := parseTicketTime(soap.Text(root, "expirationTime"))
	if err != nil {
		return nil, model.NewAuthError("invalid expiration time in login ticket", err)
	}

	return &model.Ticket{
		Token:       token,
		Sign:        sign,
		GeneratedAt: generated,
		ExpiresAt:   expires,
	}, nil
}

func parseTicketTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	// WSAA sometimes emits sub-second precision without a zone.
	return time.Parse("2006-01-02T15:04:05.999999999", s)
}
