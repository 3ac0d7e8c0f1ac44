// Package engineclient provides the primary entry point for constructing a
// Docker Engine API client that implements the engine.Client interface.
//
// It layers configuration, HTTP transport, TLS, and response caching on top
// of the resource interfaces and types defined in the engine package. Most
// applications should import engineclient to build a client, then use the
// returned engine.Client to access the resource-specific clients, for
// example Networks() and System().
//
// Quick start
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
//
//	  // Minimal: the platform default daemon socket.
//	  cli, err := engineclient.New(ctx, &engine.Config{})
//	  if err != nil { log.Fatal(err) }
//
//	  // Or a specific daemon:
//	  cli, err = engineclient.New(ctx, &engine.Config{
//	    Host: "tcp://10.0.0.5:2376",
//	    TLSCACertFile: "/certs/ca.pem",
//	    TLSCertFile:   "/certs/cert.pem",
//	    TLSKeyFile:    "/certs/key.pem",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  // Or from DOCKER_HOST and friends:
//	  cli, err = engineclient.FromEnv(ctx)
//	  if err != nil { log.Fatal(err) }
//
//	  // Use resource clients via the engine.Client interface
//	  networks, err := cli.Networks().List(ctx, nil)
//	  if err != nil { log.Fatal(err) }
//	  _ = networks
//	}
//
// # Typed names
//
// The engine package's option structs are generic over string-like types.
// A client always exposes Networks() instantiated for plain strings; use
// Networks[T] to re-instantiate it for a custom name type over the same
// transport:
//
//	type NetworkName string
//
//	typed, err := engineclient.Networks[NetworkName](cli)
//	if err != nil { log.Fatal(err) }
//	_, err = typed.Create(ctx, engine.CreateNetworkOptions[NetworkName]{Name: "backend"})
//
// # Helpers
//
// The package also provides the convenience constructors NewWithHost and
// FromEnv that wrap New with the appropriate configuration.
package engineclient
