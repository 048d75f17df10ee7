package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// The issuance engine and the chain verifier must agree on the exact byte
// sequence covered by an invoice hash. Both call CanonicalPayload; there is
// deliberately no second implementation.

// canonicalDate is the date layout used inside hashed payloads
const canonicalDate = "2006-01-02"

// CanonicalPayload builds the field-order-stable representation of an
// invoice that is covered by its hash: number, issuer identity, recipient
// identity, issue date, amounts, register and printer identifiers, then each
// line item in insertion order. The previous-hash link is stored alongside
// the hash and verified separately; it is not part of the payload.
func CanonicalPayload(inv *Invoice) string {
	var b strings.Builder
	fields := []string{
		inv.Number,
		inv.IssuerRIF,
		inv.IssuerName,
		inv.RecipientRIF,
		inv.RecipientName,
		inv.IssueDate.Format(canonicalDate),
		inv.Subtotal.StringFixed(2),
		inv.Tax.StringFixed(2),
		inv.Total.StringFixed(2),
		inv.RegisterID,
		inv.PrinterID,
	}
	b.WriteString(strings.Join(fields, "|"))
	for _, item := range inv.Items {
		b.WriteString("|item|")
		b.WriteString(item.Description)
		b.WriteString("|")
		b.WriteString(item.Quantity.StringFixed(2))
		b.WriteString("|")
		b.WriteString(item.UnitPrice.StringFixed(2))
		b.WriteString("|")
		b.WriteString(item.Total.StringFixed(2))
	}
	return b.String()
}

// ComputeHash returns the lowercase hex SHA-256 of the canonical payload
func ComputeHash(inv *Invoice) string {
	sum := sha256.Sum256([]byte(CanonicalPayload(inv)))
	return hex.EncodeToString(sum[:])
}
