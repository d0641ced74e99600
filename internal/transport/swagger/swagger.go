package swagger

import (
	"context"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Docs serves a validated OpenAPI document and the Swagger UI pointing at it.
type Docs struct {
	raw []byte
	doc *openapi3.T
}

// Load parses and validates spec so a broken document fails at startup
// instead of in the browser.
func Load(ctx context.Context, spec []byte) (*Docs, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(spec)
	if err != nil {
		return nil, fmt.Errorf("swagger: parse openapi document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("swagger: invalid openapi document: %w", err)
	}
	return &Docs{raw: spec, doc: doc}, nil
}

func (d *Docs) Document() *openapi3.T {
	return d.doc
}

func (d *Docs) ServeSpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(d.raw)
}

func (d *Docs) UI() http.Handler {
	return httpSwagger.Handler(
		httpSwagger.URL("/openapi.yml"),
	)
}
