// Package rpc exposes the engine to a host process over JSON-RPC 2.0.
//
// Messages use the Content-Length framing of the language server protocol,
// so the binding runs equally over stdio, a pipe or a socket.
//
// Methods:
//
//	renderFromJson {containerId, json}  -> {status, statusText}
//	update         patch | [patch] | "json" -> {applied, skipped, failed}
//	getState                            -> live tree
//	setState       tree                 -> {patches, report, rendered, status}
//	setTheme       {name}               -> {applied, skipped, failed}
//	getStatus                           -> {root, elements, theme, themes}
package rpc
