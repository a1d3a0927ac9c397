// Package engine keeps a live element registry in sync with declarative
// trees and sparse patches.
//
// Render reconciles a vdom.Node tree into a container: unknown ids are
// created, known ids with the same type get only their changed properties
// re-applied, and ids whose type changed are destroyed and recreated.
// Elements the tree does not mention are left alone.
//
// ApplyUpdate mutates live elements by id (or by dotted path such as
// "menu.children.0"). Missing targets are logged and skipped, never
// returned as errors, so a batch keeps going.
//
// Every effect is forwarded to a Host, the widget toolkit that actually
// draws things. MemoryHost keeps an inspectable copy for the CLI, the
// server preview and tests.
//
// An Engine is not safe for concurrent use. Callers that share one engine
// between goroutines must serialise calls, as server.Loop does.
package engine
