// Parses flags, configures logging, and runs melia's commands.
//
// Global flags:
//
//	--log-filter    Log filter, e.g. "warn,melia=info" ($MELIA_LOG_FILTER).
//	--log-format    compact, full, pretty, or json.
//	--runtime-dir   Directory overrides; likewise --state-dir, --cache-dir,
//	                --logs-dir, and --config-dir.
//	--create-dirs   no, non-recursive, or recursive.
//	-c, --config    TOML configuration file ($MELIA_CONFIG).
//
// Commands:
//
//	daemon [-a URL]...        Serve (default when no command is given).
//	ctl --socket PATH [print-cfg]
//	                          Query a running daemon over its control socket.
//	version                   Print version information.
//
// The default log filter comes from build-time linker flags. After parsing,
// the global logger is rebuilt from the flags before the command runs.
package cli
