package wsfe

// hints maps WSFE rejection codes to remediation guidance. Unknown
// codes simply get no hint; reporting the underlying error is never
// blocked on this table.
var hints = map[int]string{
	600:   "the authentication token is not valid for this service; re-authenticate and retry",
	601:   "the CUIT in Auth does not match the certificate owner; check the configured tax id",
	602:   "the requesting CUIT is not registered for electronic invoicing; enable the service in AFIP's portal",
	1006:  "the point of sale does not exist or is not enabled for WSFEv1; register it under 'Administración de puntos de venta'",
	10004: "CantReg must be 1 for this request shape",
	10015: "DocNro is inconsistent with DocTipo; final consumers use document number 0",
	10016: "CbteDesde is not the next expected number; re-query the last authorized number and retry",
	10018: "CbteFch is outside the allowed window relative to today; check the issue date",
	10048: "ImpTotal does not equal the sum of its components; recompute net, exempt and VAT amounts",
	10051: "invoices above the identification threshold require a named buyer, not a final consumer",
}

// HintForCode returns the static remediation hint for a remote error
// code, or empty when none is known.
func HintForCode(code int) string {
	return hints[code]
}
