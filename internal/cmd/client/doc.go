// Package client provides the inspection commands of the `rofka` CLI.
//
// The commands talk to the admin HTTP and gRPC endpoints of a running
// ingest process. get and faults can also read a store directly with
// --data-dir when no process holds it open.
//
// # Address configuration
//
// The HTTP base URL is discovered by the application that embeds the
// commands via a BaseURLFunc. When using the standalone binary it comes from
// ROFKA_HTTP (default http://127.0.0.1:8080). The gRPC address is read from
// ROFKA_GRPC (default 127.0.0.1:50051).
//
// Usage
//
//	rofka get 123:1
//	rofka get hex:ff01 --data-dir ./data
//	rofka faults --limit 20
//	rofka faults --start 41 --data-dir ./data
//	rofka stats
//	rofka health
//
// Notes
//
//   - get prints the raw value as payload_json, payload_text or payload_b64,
//     whichever fits first, next to the stored projection.
//   - keys that are not valid UTF-8 are addressed as hex:<lowercase hex>.
package client
