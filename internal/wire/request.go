// Package wire implements the CSV wire formats of §6: splitting a datagram
// payload into records, parsing each record into a typed Request, and
// formatting core Events back into output lines.
package wire

import (
	"fmt"
	"strconv"
	"strings"

	"vortex/internal/domain/orderbook"
)

// RequestKind discriminates the closed set of inbound request variants
// (§9 "Tagged variants vs runtime polymorphism").
type RequestKind uint8

const (
	RequestNew RequestKind = iota
	RequestCancel
	RequestFlush
)

// Request is the parsed form of one input record (§6.1).
type Request struct {
	Kind RequestKind

	UserID      uint32
	UserOrderID uint32
	Symbol      string
	Price       uint32
	Quantity    uint32
	Side        orderbook.Side
}

// SplitRecords splits a datagram payload into zero or more records,
// delimited by LF or CRLF (§4.2). It performs no trimming or filtering —
// callers pass each returned record to ParseRecord.
func SplitRecords(payload []byte) []string {
	text := string(payload)
	raw := strings.Split(text, "\n")
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		out = append(out, strings.TrimSuffix(r, "\r"))
	}
	return out
}

// skipRecord reports whether a trimmed record should be ignored entirely:
// blank lines and '#' comments (§4.2 step 2).
func skipRecord(trimmed string) bool {
	return trimmed == "" || strings.HasPrefix(trimmed, "#")
}

// ParseRecord parses one trimmed record into a Request. ok is false for
// blank or comment records, which are not errors — the caller should simply
// skip them. A non-nil error indicates a malformed record (§4.2 step 3),
// which callers must log and skip, not treat as fatal.
func ParseRecord(record string) (req Request, ok bool, err error) {
	trimmed := strings.TrimSpace(strings.TrimSuffix(record, "\r"))
	if skipRecord(trimmed) {
		return Request{}, false, nil
	}

	fields := splitFields(trimmed)
	if len(fields) == 0 {
		return Request{}, false, nil
	}

	switch strings.ToUpper(fields[0]) {
	case "N":
		req, err = parseNewOrder(fields)
	case "C":
		req, err = parseCancel(fields)
	case "F":
		req = Request{Kind: RequestFlush}
	default:
		err = fmt.Errorf("wire: unknown record type %q", fields[0])
	}
	if err != nil {
		return Request{}, false, err
	}
	return req, true, nil
}

// splitFields splits on commas and trims surrounding whitespace from each
// field (§6.1 "Leading/trailing whitespace around fields is ignored").
func splitFields(record string) []string {
	parts := strings.Split(record, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func parseNewOrder(fields []string) (Request, error) {
	if len(fields) != 7 {
		return Request{}, fmt.Errorf("wire: N record wants 7 fields, got %d", len(fields))
	}
	userID, err := parseUint32(fields[1])
	if err != nil {
		return Request{}, fmt.Errorf("wire: user_id: %w", err)
	}
	symbol := fields[2]
	if symbol == "" || len(symbol) > 16 {
		return Request{}, fmt.Errorf("wire: invalid symbol %q", symbol)
	}
	price, err := parseUint32(fields[3])
	if err != nil {
		return Request{}, fmt.Errorf("wire: price: %w", err)
	}
	qty, err := parseUint32(fields[4])
	if err != nil {
		return Request{}, fmt.Errorf("wire: quantity: %w", err)
	}
	if qty == 0 {
		return Request{}, fmt.Errorf("wire: quantity must be > 0")
	}
	var side orderbook.Side
	switch strings.ToUpper(fields[5]) {
	case "B":
		side = orderbook.Buy
	case "S":
		side = orderbook.Sell
	default:
		return Request{}, fmt.Errorf("wire: side must be B or S, got %q", fields[5])
	}
	uoid, err := parseUint32(fields[6])
	if err != nil {
		return Request{}, fmt.Errorf("wire: user_order_id: %w", err)
	}
	return Request{
		Kind:        RequestNew,
		UserID:      userID,
		Symbol:      symbol,
		Price:       price,
		Quantity:    qty,
		Side:        side,
		UserOrderID: uoid,
	}, nil
}

func parseCancel(fields []string) (Request, error) {
	if len(fields) != 3 {
		return Request{}, fmt.Errorf("wire: C record wants 3 fields, got %d", len(fields))
	}
	userID, err := parseUint32(fields[1])
	if err != nil {
		return Request{}, fmt.Errorf("wire: user_id: %w", err)
	}
	uoid, err := parseUint32(fields[2])
	if err != nil {
		return Request{}, fmt.Errorf("wire: user_order_id: %w", err)
	}
	return Request{Kind: RequestCancel, UserID: userID, UserOrderID: uoid}, nil
}

func parseUint32(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}
