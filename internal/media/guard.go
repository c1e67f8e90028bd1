package media

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"
)

// ErrBlockedAddress is returned for media hosts on loopback, private,
// link-local or otherwise non-public addresses.
var ErrBlockedAddress = errors.New("media: address not allowed")

const maxRedirects = 3

var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

func blockedAddr(a netip.Addr) bool {
	a = a.Unmap()
	return !a.IsValid() ||
		a.IsLoopback() ||
		a.IsPrivate() ||
		a.IsUnspecified() ||
		a.IsLinkLocalUnicast() ||
		a.IsLinkLocalMulticast() ||
		a.IsInterfaceLocalMulticast() ||
		a.IsMulticast() ||
		sharedAddressSpace.Contains(a)
}

// CheckURL rejects URLs whose host is localhost or a literal non-public
// address. Names resolving to such addresses are refused at dial time by
// the default client.
func CheckURL(u *url.URL) error {
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return fmt.Errorf("media: url has no host")
	}
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return fmt.Errorf("%s: %w", host, ErrBlockedAddress)
	}
	if a, err := netip.ParseAddr(host); err == nil && blockedAddr(a) {
		return fmt.Errorf("%s: %w", host, ErrBlockedAddress)
	}
	return nil
}

// dialControl runs after name resolution, so it sees the address actually
// dialed, including every redirect hop.
func dialControl(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	a, err := netip.ParseAddr(host)
	if err != nil || blockedAddr(a) {
		return fmt.Errorf("dial %s: %w", address, ErrBlockedAddress)
	}
	return nil
}

// PublicHTTPClient returns the client used for media outside the bucket.
// It only connects to public addresses and ignores proxy settings.
func PublicHTTPClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
		Control:   dialControl,
	}
	return &http.Client{
		Transport: &http.Transport{
			DialContext:         dialer.DialContext,
			TLSHandshakeTimeout: 10 * time.Second,
			MaxIdleConns:        10,
			IdleConnTimeout:     90 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("media: stopped after %d redirects", maxRedirects)
			}
			return CheckURL(req.URL)
		},
	}
}
