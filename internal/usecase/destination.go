package usecase

import (
	"fmt"
	"net"
	"net/url"

	"golang.org/x/net/idna"

	"autotask-relay/internal/domain/model"
)

// validateDestination checks that raw is an absolute http(s) URL with a
// well-formed host.
func validateDestination(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: destination url does not parse: %v", model.ErrInvalidConfiguration, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: destination url must use http or https", model.ErrInvalidConfiguration)
	}
	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("%w: destination url has no host", model.ErrInvalidConfiguration)
	}
	if net.ParseIP(host) != nil {
		return nil
	}
	if _, err := idna.Lookup.ToASCII(host); err != nil {
		return fmt.Errorf("%w: destination host %q: %v", model.ErrInvalidConfiguration, host, err)
	}
	return nil
}
