// Package listener opens every socket the daemon serves and tags each one with
// what it may be used for.
//
// Listeners come from two places: sockets inherited from the service manager
// (see the activation package) and addresses in the resolved configuration.
// [Open] turns both into a list of [Descriptor] values. Each descriptor carries
// a [Profile] fixed at creation: whether the listener is meant for TLS and
// whether it may expose the control API. Only Unix domain listeners expose the
// control API, since file permissions are their access control.
//
// Unix sockets are bound after removing any stale socket file left by a
// previous run, then receive the owner, group, and mode from their address.
//
// Addresses the operating system fills in (port 0) and addresses of inherited
// sockets are written back into the shared configuration, so the control API
// reports what is actually being served.
package listener
