package sessions

// Session is the per-connection view handed to capability code. A stdio
// connection carries exactly one session for its lifetime.
type Session interface {
	SessionID() string
	UserID() string
	// ProtocolVersion is the negotiated MCP protocol version baked into the session.
	ProtocolVersion() string
	// ClientInfo identifies the connected client as reported during initialize.
	ClientInfo() ClientInfo
}

// ClientInfo identifies the client connecting to the server.
type ClientInfo struct {
	Name    string
	Version string
}
