package activation

import (
	"fmt"
	"os"

	"github.com/One-com/gone/sd"
)

// Service manager notification states.
const (
	Ready    = "READY=1"
	Stopping = "STOPPING=1"
)

// Sends a state update to the service manager.
//
// Returns false without error when $NOTIFY_SOCKET is unset, which is the case
// for any process not started as a notify-type service.
func Notify(state string) (bool, error) {
	if os.Getenv("NOTIFY_SOCKET") == "" {
		return false, nil
	}
	if err := sd.Notify(0, state); err != nil {
		return false, fmt.Errorf("notify %s: %w", state, err)
	}
	return true, nil
}
