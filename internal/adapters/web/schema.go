package web

import (
	"net/http"
	"reflect"

	"quote-engine/internal/app"

	"github.com/invopop/jsonschema"
	"github.com/shopspring/decimal"
)

var decimalType = reflect.TypeOf(decimal.Decimal{})

// requestSchemas reflects the JSON Schema of every request body the API accepts.
func requestSchemas() map[string]any {
	r := &jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t == decimalType {
				return &jsonschema.Schema{
					Type:    "string",
					Pattern: `^-?[0-9]+(\.[0-9]+)?$`,
				}
			}
			return nil
		},
	}
	return map[string]any{
		"create_quote":    r.Reflect(&app.CreateQuoteRequest{}),
		"update_quote":    r.Reflect(&app.UpdateQuoteRequest{}),
		"quote_item":      r.Reflect(&app.QuoteItemRequest{}),
		"update_item":     r.Reflect(&app.UpdateItemRequest{}),
		"calculate":       r.Reflect(&app.CalculateRequest{}),
		"create_customer": r.Reflect(&app.CreateCustomerRequest{}),
	}
}

// apiSchema handles GET /api/quotes/schema.
func (h *Handler) apiSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.schemas)
}
