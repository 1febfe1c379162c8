// Provides the well-known directory locations the daemon falls back to when
// nothing more specific is configured.
//
// Two families of locations exist. [User] returns the per-user project
// directories following XDG conventions on Linux and platform-native
// conventions elsewhere, for example $XDG_STATE_HOME/melia. [System] returns
// the directories systemd assigns to services (see RuntimeDirectory= and
// friends in systemd.exec(5)), for example /var/lib/melia.
//
// Both are discovered once, on first use, and never change afterwards. Callers
// receive copies, so the result can be treated as immutable input.
package paths
