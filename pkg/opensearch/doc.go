// Package opensearch builds lifecycle-managed clients for OpenSearch on top
// of github.com/opensearch-project/opensearch-go/v2.
//
// A Config is translated into client settings by an ordered list of build
// steps: addresses, timeouts, default headers, per-host connection limits,
// rack-aware node selection, basic authentication, a TLS trust store, AWS
// SigV4 signing, retries and request logging. Config carries env tags for
// github.com/dmitrymomot/searchkit/pkg/config and yaml tags for file-based
// configuration.
//
// # Usage
//
//	var cfg opensearch.Config
//	if err := config.LoadFile("search.yaml", &cfg); err != nil {
//	    return err
//	}
//
//	mc, err := opensearch.NewManaged(ctx, &cfg, opensearch.WithLogger(log))
//	if err != nil {
//	    // errors.Is(err, opensearch.ErrInvalidConfig), ErrTrustStore, ...
//	}
//	defer mc.Stop(ctx)
//
//	client, err := mc.Client()
//	res, err := client.Info()
//
// ManagedClient implements lifecycle.Managed, so a host can start and stop
// it alongside its other components. After Stop, Client returns
// ErrClientClosed and requests through a retained client fail with the
// same error.
//
// # Node selection
//
// Setting Node restricts requests to discovered nodes whose NodeAttribute
// (rack_id by default) equals it. When no node matches, all nodes are used.
// See package nodeselect for the filter itself.
//
// # Topology refresh
//
// Sniffer re-discovers cluster nodes either every interval or a fixed delay
// after a failed request. NewManaged wires it from SnifferConfig.
//
// # Error Handling
//
// Errors are sentinel values joined with their cause; use errors.Is:
//
//	if err := opensearch.Healthcheck(client)(ctx); err != nil {
//	    if errors.Is(err, opensearch.ErrHealthcheckFailed) {
//	        // handle health-check failure
//	    }
//	}
package opensearch
