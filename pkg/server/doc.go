// Package server hosts reflow applications over HTTP and WebSocket.
//
// Each WebSocket connection gets its own Session: a runtime.Loop, an
// application instance driven by it, and a backend that encodes every diff
// into a Patches frame. Event frames from the client are posted to the loop
// and fire handlers by id; stale ids are ignored.
//
// The HTTP side is a chi router:
//
//	GET /          server-rendered first paint of the initial state
//	GET /live      WebSocket endpoint (ServerConfig.LivePath)
//	GET /healthz   liveness probe
//
// Additional routes, such as a Prometheus /metrics handler, can be mounted
// on Router().
//
// Basic usage:
//
//	prog := server.NewProgram(app, func() State { return State{} })
//	srv := server.New(prog, server.DefaultServerConfig(), server.WithLogger(logger))
//	err := srv.ListenAndServe(ctx)
package server
