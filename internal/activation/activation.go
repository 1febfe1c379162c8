package activation

import (
	"os"
	"strings"

	sdactivation "github.com/coreos/go-systemd/v22/activation"
)

// Name go-systemd gives descriptors that LISTEN_FDNAMES does not name.
const unnamedPrefix = "LISTEN_FD_"

// Collects the sockets the service manager passed to this process.
//
// Returns no sockets and no error when the process was not socket activated,
// when LISTEN_PID names another process, or when the variables cannot be
// parsed. The activation variables are removed from the environment in every
// case. If any descriptor cannot be served, all inherited descriptors are
// closed and the error is returned.
func Collect() ([]*Socket, error) {
	return collect(sdactivation.Files(true))
}

// Probes inherited files in descriptor order and takes ownership of them.
func collect(files []*os.File) ([]*Socket, error) {
	sockets := make([]*Socket, 0, len(files))
	for i, f := range files {
		name := f.Name()
		if name == "" || strings.HasPrefix(name, unnamedPrefix) {
			name = "unknown"
		}
		s, err := probe(int(f.Fd()), name)
		if err != nil {
			for _, s := range sockets {
				_ = s.Close()
			}
			for _, rest := range files[i:] {
				_ = rest.Close()
			}
			return nil, err
		}
		s.file = f
		sockets = append(sockets, s)
	}
	return sockets, nil
}
