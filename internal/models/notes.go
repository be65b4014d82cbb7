package models

import "strings"

// The billing table packs the client name and invoice number into the
// notes field as "client | invoice-number". These helpers keep the
// packing rule in one place.

const notesSeparator = " | "

// PackInvoiceNotes joins the client name and invoice number, skipping
// empty parts.
func PackInvoiceNotes(clientName, invoiceNumber string) string {
	parts := make([]string, 0, 2)
	if clientName = strings.TrimSpace(clientName); clientName != "" {
		parts = append(parts, clientName)
	}
	if invoiceNumber = strings.TrimSpace(invoiceNumber); invoiceNumber != "" {
		parts = append(parts, invoiceNumber)
	}
	return strings.Join(parts, notesSeparator)
}

// SplitInvoiceNotes recovers the client name and invoice number from a
// packed notes value.
func SplitInvoiceNotes(notes string) (clientName, invoiceNumber string) {
	if notes == "" {
		return "", ""
	}
	parts := strings.SplitN(notes, notesSeparator, 2)
	clientName = strings.TrimSpace(parts[0])
	if len(parts) == 2 {
		invoiceNumber = strings.TrimSpace(parts[1])
	}
	return clientName, invoiceNumber
}
