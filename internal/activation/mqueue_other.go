//go:build !linux

package activation

// Message queues are not file descriptors outside Linux.
func isMessageQueue(int) bool {
	return false
}
