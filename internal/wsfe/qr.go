package wsfe

import (
	"encoding/base64"
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"

	money "github.com/rezonia/afip-client/internal/decimal"
	"github.com/rezonia/afip-client/internal/model"
)

// qrPayload is the canonical QR document. Field order is mandated and
// encoded here by struct declaration order; the receptor pair is
// omitted for anonymous final consumers via the pointer fields.
type qrPayload struct {
	Ver        int     `json:"ver"`
	Fecha      string  `json:"fecha"`
	Cuit       int64   `json:"cuit"`
	PtoVta     int     `json:"ptoVta"`
	TipoCmp    int     `json:"tipoCmp"`
	NroCmp     int64   `json:"nroCmp"`
	Importe    float64 `json:"importe"`
	Moneda     string  `json:"moneda"`
	Ctz        int     `json:"ctz"`
	TipoDocRec *int    `json:"tipoDocRec,omitempty"`
	NroDocRec  *int64  `json:"nroDocRec,omitempty"`
	TipoCodAut string  `json:"tipoCodAut"`
	CodAut     int64   `json:"codAut"`
}

// BuildQRURL produces the fiscal QR URL for an authorized voucher. It
// is a pure function: identical inputs always yield the identical URL.
//
// The base64 payload is embedded verbatim, never percent-encoded. The
// AFIP scanner decodes the query parameter as raw base64; escaping '+',
// '/' or '=' corrupts the decode and silently drops most fields. Do not
// "fix" this with url.Values.
func BuildQRURL(res *caeResult, invoiceType model.InvoiceType, pointOfSale int, issuerCUIT string, total decimal.Decimal, buyer *model.Buyer) (string, error) {
	cuitDigits := model.NormalizeCUIT(issuerCUIT)
	cuit, err := strconv.ParseInt(cuitDigits, 10, 64)
	if err != nil {
		return "", model.NewValidationError("cuit", "issuer tax id has no digits")
	}

	caeDigits := model.NormalizeCUIT(res.CAE)
	cae, err := strconv.ParseInt(caeDigits, 10, 64)
	if err != nil {
		return "", model.NewValidationError("cae", "authorization code has no digits")
	}

	importe, _ := money.Round2(total).Float64()

	payload := qrPayload{
		Ver:        1,
		Fecha:      dashDate(res.Date),
		Cuit:       cuit,
		PtoVta:     pointOfSale,
		TipoCmp:    int(invoiceType),
		NroCmp:     res.Number,
		Importe:    importe,
		Moneda:     "PES",
		Ctz:        1,
		TipoCodAut: "E",
		CodAut:     cae,
	}

	if buyer != nil {
		docDigits := model.NormalizeCUIT(buyer.DocNumber)
		docNro, _ := strconv.ParseInt(docDigits, 10, 64)
		// The pair is only dropped for the anonymous final consumer
		// with a zero document number; any identified buyer is kept.
		if buyer.DocType != model.DocTypeFinalConsumer || docNro != 0 {
			docType := int(buyer.DocType)
			payload.TipoDocRec = &docType
			payload.NroDocRec = &docNro
		}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", model.NewValidationError("qr", "failed to serialize payload")
	}

	return model.QRBaseURL + base64.StdEncoding.EncodeToString(raw), nil
}

// dashDate reformats an 8-digit YYYYMMDD string as YYYY-MM-DD. Inputs
// of any other shape pass through unchanged.
func dashDate(d string) string {
	if len(d) != 8 {
		return d
	}
	return d[0:4] + "-" + d[4:6] + "-" + d[6:8]
}
