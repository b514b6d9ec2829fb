// Package ollama is the client side of the inference daemon protocol.
//
// It is split by concern:
//
//   - errors.go: the closed error taxonomy (*Error, Kind) and IsX helpers.
//   - probe.go: the availability probe used as a gate before generation.
//   - daemon.go: shared transport (base URL, http.Client, logger, metrics).
//   - client.go: the generation session (model, optional system prompt).
//   - generate.go: request construction and the non-streaming path.
//   - stream.go: the pull-based chunk iterator over an NDJSON body.
//   - models.go: model listing and pull.
//   - metrics.go: Prometheus instrumentation.
//
// A Client is immutable after New and may be shared; each Generate call owns
// its own request/response exchange. No timeout is applied by default:
// callers bound latency with the context they pass in.
package ollama
