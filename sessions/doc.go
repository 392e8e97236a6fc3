// Package sessions defines the session abstraction shared by the stdio
// transport and capability code in mcpservice. A session represents the
// negotiated protocol version, the local principal and the client identity
// for one connected peer.
package sessions
