// Package api implements the userd HTTP surface.
//
// The API exposes CRUD operations on the user directory plus system
// endpoints (health, status, OpenAPI description) and the request history
// (list, stream, clear). Handler behavior follows the configured mode:
// dto mode validates bodies at the boundary and answers with REST status
// codes, basic mode forwards bodies to the store unchecked and answers
// 200 with a JSON null for absent records.
package api
