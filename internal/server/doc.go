// Package server implements the melia daemon's accept engine and HTTP service.
//
// [Server.Run] serves a set of listener descriptors concurrently. Every
// listener gets its own accept loop, and every accepted connection gets its own
// goroutine that serves that single connection from start to finish. A
// connection speaks HTTP/1.1 or HTTP/2 with prior knowledge. Accept errors are
// logged and retried with a capped backoff. Connection errors are logged and
// affect only that connection. Run returns once every listener is closed,
// which happens when its context is cancelled. Connections still in flight at
// that point are not drained.
//
// The HTTP surface is small:
//
//	GET  /            usage hint
//	POST /echo        streams the request body back
//	GET  /api?config  effective configuration as JSON (Unix listeners only)
//
// Whether /api is reachable is decided by the listener's profile, so the same
// handler code runs on every listener while the control API stays confined to
// Unix domain sockets.
//
// Example usage:
//
//	shared := config.NewShared(cfg)
//	ds, err := listener.Open(ctx, sockets, shared)
//	if err != nil {
//	    return err
//	}
//
//	srv := server.New(shared)
//	if err := srv.Run(ctx, ds); err != nil {
//	    return err
//	}
package server
