// Package api carries the HTTP API description shipped inside the binary.
package api

import _ "embed"

//go:embed openapi.yml
var OpenAPISpec []byte
