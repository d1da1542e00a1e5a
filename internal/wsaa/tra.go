// Package wsaa implements AFIP's authentication service: it builds and
// signs the login ticket request (TRA), exchanges it through LoginCms
// and caches the resulting ticket until shortly before expiry.
package wsaa

import (
	"strconv"
	"time"

	"github.com/beevik/etree"
)

const (
	// ServiceWSFE is the service name the electronic-invoicing ticket
	// is scoped to.
	ServiceWSFE = "wsfe"
	// ServicePadronA13 scopes a ticket to the taxpayer registry.
	ServicePadronA13 = "ws_sr_padron_a13"

	// GenerationSkew backdates the TRA generation time to tolerate
	// clock drift against AFIP's servers.
	GenerationSkew = 10 * time.Minute
	// TicketValidity is WSAA's fixed validity window.
	TicketValidity = 12 * time.Hour
)

// BuildTRA builds the loginTicketRequest document for a service at the
// given instant. uniqueId is the request time in unix seconds, the
// conventional value.
func BuildTRA(service string, now time.Time) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("loginTicketRequest")
	root.CreateAttr("version", "1.0")

	header := root.CreateElement("header")
	header.CreateElement("uniqueId").SetText(formatUnix(now))
	header.CreateElement("generationTime").SetText(now.Add(-GenerationSkew).Format(time.RFC3339))
	header.CreateElement("expirationTime").SetText(now.Add(TicketValidity).Format(time.RFC3339))

	root.CreateElement("service").SetText(service)

	return doc.WriteToBytes()
}

func formatUnix(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10)
}
