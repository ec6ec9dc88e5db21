package domain

// Action websocket request action
type Action string

const (
	// SendMessage websocket action send_message
	SendMessage Action = "send_message"
)

// Websocket close codes sent while establishing a session.
// After the connection is accepted the gateway never sends error frames,
// malformed input is dropped.
const (
	// CloseUnauthenticated no authenticated member on the connection
	CloseUnauthenticated = 4001
	// CloseForbidden authenticated member is not a participant
	CloseForbidden = 4003
	// CloseBadConversation conversation id missing or non-numeric
	CloseBadConversation = 4004
)

// WSRequest websocket inbound frame
type WSRequest struct {
	Action  string `json:"action"`
	Content string `json:"content"`
}

// WSEnvelope websocket outbound frame wrapping a delivered message
type WSEnvelope struct {
	Type    string      `json:"type"`
	Message MessageView `json:"message"`
}
