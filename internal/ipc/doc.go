// Package ipc coordinates single-instance startup over a Unix domain socket.
//
// A Communicator determines its own role at construction: it becomes a
// Client when another process already serves one of the candidate socket
// locations, otherwise it binds the socket itself and becomes the Server.
// Clients hand their launch arguments to the running instance and ask it to
// reveal itself; the Server runs an accept loop that decodes these frames
// and dispatches them to a MessageHandler.
//
// The package owns socket lifecycle management, including race-safe stale
// socket takeover guarded by a sidecar lock file, and guarantees the bound
// endpoint is released exactly once.
package ipc
