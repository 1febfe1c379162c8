// Package config resolves the daemon's effective configuration.
//
// Five sources contribute to every directory the daemon uses, from highest to
// lowest priority:
//
//  1. an explicit override (command line),
//  2. the TOML configuration file,
//  3. the environment variable systemd sets for the service
//     (RUNTIME_DIRECTORY, STATE_DIRECTORY, CACHE_DIRECTORY, LOGS_DIRECTORY,
//     CONFIGURATION_DIRECTORY),
//  4. the per-user project directory,
//  5. the compiled-in system default.
//
// The first source that provides a value wins; values are never merged across
// sources. Depending on the directory creation mode, missing directories are
// created, and every directory is then canonicalized. A directory that does not
// exist after this step is a fatal error.
//
// Listen addresses are URLs. Addresses given on the command line come first,
// followed by those from the configuration file:
//
//	http://127.0.0.1:8080
//	https://[::1]
//	unix:control?user=melia,group=melia,mode=0660
//	unix:///run/melia/control
//
// HTTP and HTTPS addresses must use a literal IP address. Relative Unix socket
// paths are resolved against the runtime directory, which is why directories
// are resolved first.
//
// The result is a [Config]. Once the daemon is running it lives inside a
// [Shared], which lets every connection read it concurrently while listener
// setup records addresses the operating system picked.
//
// Example usage:
//
//	cfg, err := config.Resolve(config.Options{
//	    File:      "/etc/melia/config.toml",
//	    Addresses: []string{"http://127.0.0.1:8080"},
//	})
//	if err != nil {
//	    return err
//	}
//	shared := config.NewShared(cfg)
package config
