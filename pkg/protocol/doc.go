// Package protocol decodes patch input and defines the JSON frames
// exchanged over the preview websocket.
//
// # Patch Input
//
// DecodeUpdate accepts every shape the update interface allows:
//
//	{"target": "btn3", "change": {"visible": null}}
//	[{"target": "title", "change": {"text": "Hi"}}, ...]
//
// as JSON text, bytes, an already decoded object or array, a vdom.Patch
// or a []vdom.Patch. Each array element is decoded on its own; a broken
// element is reported and the rest are kept.
//
// # Frames
//
// Every websocket message is one JSON object with a "type" field:
//
//   - render: a tree for a container (both directions)
//   - update: a list of patches (both directions)
//   - state: the full live tree (server to client on connect)
//   - ack: render status or update report for a client request
//   - error: a request that could not be handled
//
// Frames carry a sequence number assigned by the sender so acks can be
// matched with requests.
package protocol
