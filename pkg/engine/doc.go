// Package engine provides types, interfaces, and helpers for working with the
// Docker Engine API, focused on the network resource family.
//
// # Overview
//
// The engine package defines the option and result types for network
// operations (e.g., CreateNetworkOptions, InspectNetworkResults) and the
// interfaces for resource-oriented clients (NetworksClient, SystemClient). A
// concrete implementation of these clients is provided by the engineclient
// package, which wires configuration, transport, and API version negotiation.
// Most consumers should import engineclient to construct a client and then
// interact with the resource client interfaces exposed here.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/dockhand-io/dockhand/pkg/engine"
//	  "github.com/dockhand-io/dockhand/pkg/engineclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := engineclient.New(ctx, &engine.Config{Host: "unix:///var/run/docker.sock"})
//	  if err != nil { log.Fatal(err) }
//
//	  // List bridge networks
//	  networks, err := cli.Networks().List(ctx, &engine.ListNetworksOptions[string]{
//	    Filters: map[string][]string{"driver": {"bridge"}},
//	  })
//	  if err != nil { log.Fatal(err) }
//	  _ = networks
//	}
//
// # Typed parameters
//
// Option structs are generic over any string-like type (the Text constraint),
// so applications that define their own name types can use them directly.
// Each options value encodes to an ordered list of query parameters via
// EncodeParams; the order is fixed per operation and independent of map
// iteration. Passing a nil options pointer to an operation that accepts one
// sends no query parameters at all.
//
// # Errors
//
// Every failure is one of three kinds: EncodeError (the request could not be
// serialized and was never sent), DaemonError (the daemon answered with a
// non-2xx status), or DecodeError (the daemon answered 2xx but the body did
// not match the expected shape). Helpers such as IsNotFound, IsConflict, and
// IsForbidden make it easy to branch on common daemon error cases.
//
// # Interceptors and caching
//
// The package includes generic building blocks such as request/response
// interceptors (for logging, headers, metrics, rate limiting) and a simple
// pluggable Cache abstraction with in-memory and NATS JetStream KV backends.
// The engineclient package composes these pieces for a sensible default
// client; applications with advanced needs can also use these primitives
// directly.
//
// # Batches and manifests
//
// BatchExecutor fans network operations out with bounded concurrency, and
// NetworkManifest applies a declarative, compose-flavored YAML description of
// networks against the daemon. Both are layered strictly on top of the
// single-exchange client operations.
package engine
