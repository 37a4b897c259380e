// Package broadcast fans out board.updated events to live subscribers.
//
// The server wraps its ConfigStore with store.WithNotifier(s, broadcaster), so
// every accepted create, update and delete is published. The SSE stream
// handler subscribes per board and forwards events until the client leaves.
package broadcast
