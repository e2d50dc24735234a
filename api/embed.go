// Package api carries the HTTP and event contracts of the consignment service.
package api

import _ "embed"

// OpenAPI is the HTTP contract served under /api/v1.
//
//go:embed openapi.yaml
var OpenAPI []byte

// AsyncAPI describes the CloudEvents published on the consignment topic.
//
//go:embed asyncapi.yaml
var AsyncAPI []byte
