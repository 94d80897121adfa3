// Package validation implements stepform.Validator engines for loaded form
// definitions.
//
// Three engines are available:
//
//   - JSONSchema compiles each step's Draft 2020-12 document with
//     santhosh-tekuri/jsonschema.
//   - OpenAPI validates against component schemas of an OpenAPI 3 document
//     via kin-openapi.
//   - Rules checks the field constraints directly, without a schema engine.
//
// All engines report failures as *stepform.ValidationFailure with one message
// per field, resolved through steps.Field.MessageFor, so the same input yields
// the same messages regardless of engine. On success they return only the
// properties the step declares.
package validation
