package app

import (
	"strconv"
	"strings"
	"time"

	"quote-engine/internal/core"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// fieldErrors collects malformed request values so every problem is
// reported in one ValidationError.
type fieldErrors []core.FieldError

func (fe *fieldErrors) add(field, message string) {
	*fe = append(*fe, core.FieldError{Field: field, Message: message})
}

func (fe fieldErrors) err() error {
	if len(fe) == 0 {
		return nil
	}
	return &core.ValidationError{Fields: fe}
}

func (fe *fieldErrors) id(field, s string) uuid.UUID {
	s = strings.TrimSpace(s)
	if s == "" {
		fe.add(field, "is required")
		return uuid.Nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		fe.add(field, "must be a valid UUID")
		return uuid.Nil
	}
	return id
}

func (fe *fieldErrors) optionalID(field, s string) *uuid.UUID {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	id := fe.id(field, s)
	return &id
}

func (fe *fieldErrors) date(field, s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		fe.add(field, "must be a date in YYYY-MM-DD format")
		return nil
	}
	return &t
}

func parseID(field, s string) (uuid.UUID, error) {
	var fe fieldErrors
	id := fe.id(field, s)
	return id, fe.err()
}

func (fe *fieldErrors) items(field string, reqs []QuoteItemRequest) []core.ItemInput {
	items := make([]core.ItemInput, 0, len(reqs))
	for i, r := range reqs {
		items = append(items, fe.item(field+"["+strconv.Itoa(i)+"]", r))
	}
	return items
}

func (fe *fieldErrors) item(prefix string, r QuoteItemRequest) core.ItemInput {
	in := core.ItemInput{
		VariantID:  fe.id(prefix+".variant_id", r.VariantID),
		MaterialID: fe.id(prefix+".material_id", r.MaterialID),
		Quantity:   r.Quantity,
		Notes:      r.Notes,
	}
	if r.DiscountPercent != nil {
		in.DiscountPercent = *r.DiscountPercent
	}
	return in
}
