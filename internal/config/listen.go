package config

import (
	"fmt"
	"net/netip"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
)

// Protocol a listen address selects.
type Scheme string

const (
	SchemeHTTP  Scheme = "http"
	SchemeHTTPS Scheme = "https"
	SchemeUnix  Scheme = "unix"
)

// One parsed listen address. AddrPort is set for HTTP and HTTPS, Unix for
// Unix domain sockets.
type Address struct {
	Scheme   Scheme
	AddrPort netip.AddrPort
	Unix     UnixAddress
}

// Parses a listen address URL.
//
// HTTP and HTTPS addresses require a literal IPv4 or IPv6 host; the port
// defaults to 80 and 443 respectively. A Unix address carries the socket path
// and optional user, group, and mode parameters separated by ',' or '&'.
// Relative socket paths are joined to runtimeDir.
func ParseAddress(raw, runtimeDir string) (Address, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Address{}, newError(raw, ErrMalformedURL, err)
	}
	switch Scheme(strings.ToLower(u.Scheme)) {
	case SchemeHTTP:
		ap, err := parseInet(u, 80)
		if err != nil {
			return Address{}, &Error{Path: raw, Err: err}
		}
		return Address{Scheme: SchemeHTTP, AddrPort: ap}, nil
	case SchemeHTTPS:
		ap, err := parseInet(u, 443)
		if err != nil {
			return Address{}, &Error{Path: raw, Err: err}
		}
		return Address{Scheme: SchemeHTTPS, AddrPort: ap}, nil
	case SchemeUnix:
		ua, err := parseUnix(u, runtimeDir)
		if err != nil {
			return Address{}, &Error{Path: raw, Err: err}
		}
		return Address{Scheme: SchemeUnix, Unix: ua}, nil
	case "":
		return Address{}, newError(raw, ErrMalformedURL, fmt.Errorf("missing scheme"))
	default:
		return Address{}, newError(raw, ErrUnsupportedScheme, fmt.Errorf("%q", u.Scheme))
	}
}

func parseInet(u *url.URL, defaultPort uint16) (netip.AddrPort, error) {
	host := u.Hostname()
	if host == "" {
		return netip.AddrPort{}, fmt.Errorf("%w: missing host", ErrInvalidURLHost)
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("%w: %q is not an IP address", ErrInvalidURLHost, host)
	}
	port := defaultPort
	if p := u.Port(); p != "" {
		n, err := strconv.ParseUint(p, 10, 16)
		if err != nil {
			return netip.AddrPort{}, fmt.Errorf("%w: port %q out of range", ErrMalformedURL, p)
		}
		port = uint16(n)
	}
	return netip.AddrPortFrom(addr, port), nil
}

// Accepts both "unix:relative?..." and "unix:///absolute?...". A host
// component is never meaningful for a socket path.
func parseUnix(u *url.URL, runtimeDir string) (UnixAddress, error) {
	if u.Host != "" {
		return UnixAddress{}, fmt.Errorf("%w: unix addresses take no host, got %q", ErrInvalidURLHost, u.Host)
	}
	p := u.Path
	if u.Opaque != "" {
		unescaped, err := url.PathUnescape(u.Opaque)
		if err != nil {
			return UnixAddress{}, fmt.Errorf("%w: %w", ErrMalformedURL, err)
		}
		p = unescaped
	}
	if p == "" {
		return UnixAddress{}, fmt.Errorf("%w: empty socket path", ErrMalformedURL)
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(runtimeDir, p)
	}

	ua := UnixAddress{Path: filepath.Clean(p)}
	params := strings.FieldsFunc(u.RawQuery, func(r rune) bool { return r == ',' || r == '&' })
	for _, param := range params {
		key, value, ok := strings.Cut(param, "=")
		if !ok {
			return UnixAddress{}, fmt.Errorf("%w: %q has no value", ErrInvalidParameter, param)
		}
		value, err := url.QueryUnescape(value)
		if err != nil {
			return UnixAddress{}, fmt.Errorf("%w: %w", ErrInvalidParameter, err)
		}
		switch key {
		case "user":
			ua.User = value
		case "group":
			ua.Group = value
		case "mode":
			mode, err := parseMode(value)
			if err != nil {
				return UnixAddress{}, err
			}
			ua.Mode = &mode
		default:
			return UnixAddress{}, fmt.Errorf("%w: unknown parameter %q", ErrInvalidParameter, key)
		}
	}
	return ua, nil
}

// Parses every address in order and sorts them into protocol buckets.
func resolveListen(addresses []string, runtimeDir string) (Listen, error) {
	var l Listen
	for _, raw := range addresses {
		a, err := ParseAddress(raw, runtimeDir)
		if err != nil {
			return Listen{}, err
		}
		l.Add(a)
	}
	return l, nil
}

// Appends a to the bucket matching its scheme.
func (l *Listen) Add(a Address) {
	switch a.Scheme {
	case SchemeHTTP:
		l.HTTP = append(l.HTTP, a.AddrPort)
	case SchemeHTTPS:
		l.HTTPS = append(l.HTTPS, a.AddrPort)
	case SchemeUnix:
		l.Unix = append(l.Unix, a.Unix)
	}
}
