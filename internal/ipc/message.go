package ipc

import "fmt"

// MessageType tags the variant carried by a Message.
type MessageType byte

const (
	// MessageLaunchArgs carries the command-line arguments of another
	// invocation for the running instance to handle.
	MessageLaunchArgs MessageType = 0x01
	// MessageRevealApp asks the running instance to bring its primary
	// surface to the foreground. It has no payload.
	MessageRevealApp MessageType = 0x02
)

func (t MessageType) String() string {
	switch t {
	case MessageLaunchArgs:
		return "launch_args"
	case MessageRevealApp:
		return "reveal_app"
	default:
		return fmt.Sprintf("unknown(0x%02x)", byte(t))
	}
}

// Message is the unit exchanged over the endpoint. Args is only populated
// for MessageLaunchArgs.
type Message struct {
	Type MessageType
	Args []string
}

// MessageHandler receives decoded messages from the server accept loop.
// OnMessage may be invoked concurrently with the workload's own startup;
// implementations must synchronize any workload-state mutation themselves.
type MessageHandler interface {
	OnMessage(msg Message)
}
