package activation

import "golang.org/x/sys/unix"

// Superblock magic of the mqueue filesystem.
const mqueueMagic = 0x19800202

// POSIX message queue descriptors live on the mqueue pseudo filesystem.
func isMessageQueue(fd int) bool {
	var fs unix.Statfs_t
	if err := unix.Fstatfs(fd, &fs); err != nil {
		return false
	}
	return uint32(fs.Type) == mqueueMagic
}
