package service

import (
	"fmt"
	"net"
	"net/url"
	"sort"
	"strconv"
)

// DefaultTimeout is the wait budget in seconds when none is configured.
const DefaultTimeout = 15

var defaultPorts = map[string]int{
	"amqp":       5672,
	"http":       80,
	"https":      443,
	"mysql":      3306,
	"mysql2":     3306,
	"pgsql":      5432,
	"postgres":   5432,
	"postgresql": 5432,
	"redis":      6379,
	"hiredis":    6379,
}

// DefaultPort returns the well-known port for a URL scheme.
func DefaultPort(scheme string) (int, bool) {
	port, ok := defaultPorts[scheme]
	return port, ok
}

// Schemes returns the schemes that have a default port, sorted by name.
func Schemes() []string {
	schemes := make([]string, 0, len(defaultPorts))
	for s := range defaultPorts {
		schemes = append(schemes, s)
	}
	sort.Strings(schemes)
	return schemes
}

// ConfigError reports a problem with the requested target or settings.
// It is never retried.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return e.Msg
}

// Configf builds a ConfigError from a format string.
func Configf(format string, args ...any) error {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

// Address is the host and port derived from a connection URL.
type Address struct {
	Scheme         string
	Host           string
	Port           int // 0 when neither the URL nor the scheme supplies one
	TimeoutSeconds int
}

// Parse builds an Address from a connection URL such as redis://cache:6379/0.
// A missing port is filled from the scheme's default; Parse does not fail
// when no default exists, HostPort does.
func Parse(rawURL string, timeoutSeconds int) (*Address, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, Configf("invalid service URL %q: %v", rawURL, err)
	}

	addr := &Address{
		Scheme:         u.Scheme,
		Host:           u.Hostname(),
		TimeoutSeconds: timeoutSeconds,
	}

	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil || port < 1 || port > 65535 {
			return nil, Configf("invalid port %q in service URL %q: must be 1-65535", p, rawURL)
		}
		addr.Port = port
	} else if port, ok := DefaultPort(addr.Scheme); ok {
		addr.Port = port
	}

	return addr, nil
}

// ForHost builds the tcp://host:port address used when the caller already
// knows both parts.
func ForHost(host string, port, timeoutSeconds int) (*Address, error) {
	u := url.URL{Scheme: "tcp", Host: net.JoinHostPort(host, strconv.Itoa(port))}
	return Parse(u.String(), timeoutSeconds)
}

// Resolved reports whether a port is known.
func (a *Address) Resolved() bool {
	return a.Port > 0
}

// HostPort returns the dial target, or a ConfigError when the port is unknown.
func (a *Address) HostPort() (string, error) {
	if !a.Resolved() {
		if a.Scheme == "" {
			return "", Configf("port is required")
		}
		return "", Configf("could not guess port for scheme %q", a.Scheme)
	}
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port)), nil
}

func (a *Address) String() string {
	if !a.Resolved() {
		return a.Host
	}
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}
