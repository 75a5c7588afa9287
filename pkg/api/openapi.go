package api

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

// openapiSpec is the service's OpenAPI description, embedded so the
// binary is self-describing without any files on disk.
//
//go:embed openapi.json
var openapiSpec []byte

var (
	openapiOnce sync.Once
	openapiDoc  *openapi3.T
	openapiErr  error
)

// Document returns the embedded OpenAPI description, loaded and validated
// on first use.
func Document() (*openapi3.T, error) {
	openapiOnce.Do(func() {
		loader := openapi3.NewLoader()
		doc, err := loader.LoadFromData(openapiSpec)
		if err != nil {
			openapiErr = fmt.Errorf("failed to load OpenAPI document: %w", err)
			return
		}
		if err := doc.Validate(context.Background()); err != nil {
			openapiErr = fmt.Errorf("invalid OpenAPI document: %w", err)
			return
		}
		openapiDoc = doc
	})
	return openapiDoc, openapiErr
}

func (a *API) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	if _, err := Document(); err != nil {
		a.log.Error("OpenAPI document failed validation", "error", err)
		writeError(w, http.StatusInternalServerError, "openapi_error", "OpenAPI document unavailable")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(openapiSpec)
}
