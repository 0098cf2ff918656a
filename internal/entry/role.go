package entry

import "fmt"

// Role classifies who authored a message.
type Role string

const (
	RoleEndUser Role = "EndUser"
	RoleAgent   Role = "Agent"
	RoleChatbot Role = "Chatbot"
)

// UnsupportedSenderError is returned for a sender role outside the participant set.
type UnsupportedSenderError struct {
	Role string
}

func (e *UnsupportedSenderError) Error() string {
	return fmt.Sprintf("unsupported participant type passed in: %s", e.Role)
}

// ParseRole maps a raw sender role onto the closed participant set.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleEndUser, RoleAgent, RoleChatbot:
		return r, nil
	default:
		return "", &UnsupportedSenderError{Role: s}
	}
}
