// Package server is the HTTP and WebSocket front end of yui.
//
// Every engine call goes through a Controller, which runs it on a single
// Loop goroutine so the engine is never touched concurrently. The Server
// exposes the controller over a chi router:
//
//	GET  /api/status            engine and theme summary
//	POST /api/render/{container} render a tree document
//	POST /api/update            apply one patch or an array of patches
//	GET  /api/state             live tree
//	POST /api/state             diff a full tree against the live one and apply
//	GET  /api/elements/{id}     one live element
//	POST /api/theme/{name}      switch theme
//	GET  /preview               HTML rendering of the live tree
//	GET  /ws                    frame stream
//	GET  /metrics               Prometheus
//
// Successful renders and updates are broadcast to WebSocket clients as
// protocol frames. Clients may send render and update frames too; each is
// acknowledged with an ack or error frame carrying the request seq.
package server
