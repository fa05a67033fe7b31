package payment

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	metaUserID    = "user_id"
	metaAddressID = "address_id"
	metaItems     = "items"
	metaSubtotal  = "subtotal"
	metaShipping  = "shipping"
	metaTax       = "tax"
	metaTotal     = "total"
	metaCurrency  = "currency"

	// Stripe caps metadata values at 500 characters and objects at 50 keys.
	maxMetadataValue = 500
	maxItemChunks    = 40
)

// MetadataItem is a cart line as embedded in the session metadata.
type MetadataItem struct {
	ProductID int64           `json:"p"`
	Quantity  int             `json:"q"`
	UnitPrice decimal.Decimal `json:"u"`
}

// Metadata is the checkout context carried through the processor and
// read back on settlement.
type Metadata struct {
	UserID    uint
	AddressID uuid.UUID
	Items     []MetadataItem
	Subtotal  decimal.Decimal
	Shipping  decimal.Decimal
	Tax       decimal.Decimal
	Total     decimal.Decimal
	Currency  string
}

func itemsKey(i int) string {
	if i == 0 {
		return metaItems
	}
	return metaItems + "_" + strconv.Itoa(i)
}

// EncodeMetadata flattens m into string values. The items list is split
// across items, items_1, ... when it exceeds the per-value limit.
func EncodeMetadata(m Metadata) (map[string]string, error) {
	raw, err := json.Marshal(m.Items)
	if err != nil {
		return nil, err
	}

	out := map[string]string{
		metaUserID:    strconv.FormatUint(uint64(m.UserID), 10),
		metaAddressID: m.AddressID.String(),
		metaSubtotal:  m.Subtotal.StringFixed(2),
		metaShipping:  m.Shipping.StringFixed(2),
		metaTax:       m.Tax.StringFixed(2),
		metaTotal:     m.Total.StringFixed(2),
		metaCurrency:  m.Currency,
	}

	s := string(raw)
	for i := 0; len(s) > 0; i++ {
		if i >= maxItemChunks {
			return nil, ErrMetadataTooLarge
		}
		n := min(len(s), maxMetadataValue)
		out[itemsKey(i)] = s[:n]
		s = s[n:]
	}

	return out, nil
}

func malformed(field string, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedMetadata, field, err)
	}
	return fmt.Errorf("%w: %s", ErrMalformedMetadata, field)
}

func decodeAmount(md map[string]string, key string) (decimal.Decimal, error) {
	v, ok := md[key]
	if !ok {
		return decimal.Zero, malformed(key+" missing", nil)
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, malformed(key, err)
	}
	if d.IsNegative() {
		return decimal.Zero, malformed(key+" negative", nil)
	}
	return d, nil
}

// DecodeMetadata reverses EncodeMetadata. Every error wraps
// ErrMalformedMetadata.
func DecodeMetadata(md map[string]string) (Metadata, error) {
	var m Metadata

	userID, err := strconv.ParseUint(md[metaUserID], 10, 64)
	if err != nil || userID == 0 {
		return m, malformed(metaUserID, err)
	}
	m.UserID = uint(userID)

	if m.AddressID, err = uuid.Parse(md[metaAddressID]); err != nil {
		return m, malformed(metaAddressID, err)
	}

	var sb strings.Builder
	for i := 0; ; i++ {
		chunk, ok := md[itemsKey(i)]
		if !ok {
			break
		}
		sb.WriteString(chunk)
	}
	if sb.Len() == 0 {
		return m, malformed("items missing", nil)
	}
	if err := json.Unmarshal([]byte(sb.String()), &m.Items); err != nil {
		return m, malformed(metaItems, err)
	}
	if len(m.Items) == 0 {
		return m, malformed("items empty", nil)
	}
	for _, it := range m.Items {
		if it.ProductID <= 0 || it.Quantity <= 0 {
			return m, malformed("item", nil)
		}
	}

	if m.Subtotal, err = decodeAmount(md, metaSubtotal); err != nil {
		return m, err
	}
	if m.Shipping, err = decodeAmount(md, metaShipping); err != nil {
		return m, err
	}
	if m.Tax, err = decodeAmount(md, metaTax); err != nil {
		return m, err
	}
	if m.Total, err = decodeAmount(md, metaTotal); err != nil {
		return m, err
	}
	if !m.Subtotal.Add(m.Shipping).Add(m.Tax).Equal(m.Total) {
		return m, malformed("total does not equal subtotal + shipping + tax", nil)
	}

	m.Currency = md[metaCurrency]

	return m, nil
}
