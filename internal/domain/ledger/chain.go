package ledger

// Chain issue codes reported by verification
const (
	IssueHashMismatch = "hash_actual_mismatch"
	IssueBrokenLink   = "hash_anterior_broken"
)

// ChainIssue is one detected integrity problem
type ChainIssue struct {
	InvoiceID     int64  `json:"invoice_id"`
	InvoiceNumber string `json:"numero_factura"`
	Code          string `json:"code"`
	Detail        string `json:"detail"`
}

// ChainReport is the outcome of verifying a tenant's full invoice history
type ChainReport struct {
	Valid    bool         `json:"valid"`
	Scanned  int          `json:"scanned"`
	Issues   []ChainIssue `json:"issues"`
	TenantID int64        `json:"tenant_id"`
}

// VerifyInvoices recomputes the hash chain over invoices in insertion order.
// Each invoice's hash is recomputed from its stored fields with the same
// canonical payload used at issuance, and its stored previous-hash is
// compared to the predecessor's stored hash. Scanning continues past
// mismatches so every break is reported. An empty history is valid.
func VerifyInvoices(tenantID int64, invoices []*Invoice) *ChainReport {
	report := &ChainReport{
		TenantID: tenantID,
		Scanned:  len(invoices),
		Issues:   []ChainIssue{},
	}

	var expectedPrevious *string
	for _, inv := range invoices {
		recomputed := ComputeHash(inv)
		if recomputed != inv.Hash {
			report.Issues = append(report.Issues, ChainIssue{
				InvoiceID:     inv.ID,
				InvoiceNumber: inv.Number,
				Code:          IssueHashMismatch,
				Detail:        "stored hash does not match the invoice's own fields",
			})
		}
		if !hashPtrEqual(inv.PreviousHash, expectedPrevious) {
			report.Issues = append(report.Issues, ChainIssue{
				InvoiceID:     inv.ID,
				InvoiceNumber: inv.Number,
				Code:          IssueBrokenLink,
				Detail:        "stored previous-hash does not match the predecessor's hash",
			})
		}
		// Chain onto the stored hash even when it mismatched, so a single
		// tampered invoice does not cascade into reports on every successor.
		h := inv.Hash
		expectedPrevious = &h
	}

	report.Valid = len(report.Issues) == 0
	return report
}

func hashPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
