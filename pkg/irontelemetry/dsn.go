// dsn.go parses DSN connection strings.

package irontelemetry

import (
	"net/url"

	"github.com/pkg/errors"
)

// ErrInvalidDSN is returned when a DSN cannot be parsed or is missing a
// valid public key.
var ErrInvalidDSN = errors.New("invalid DSN")

// ParsedDSN holds the components of a parsed DSN. Derived once at client
// construction and immutable thereafter.
type ParsedDSN struct {
	// PublicKey authenticates the client to the collection endpoint.
	PublicKey string

	// Host is the collection endpoint host.
	Host string

	// Protocol is the URL scheme (http or https).
	Protocol string

	// APIBaseURL is "<protocol>://<host>".
	APIBaseURL string
}

// ParseDSN parses a DSN of the form "https://pk_live_xxx@irontelemetry.com".
// The user-info portion is the public key and must start with "pk_".
func ParseDSN(dsn string) (ParsedDSN, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return ParsedDSN{}, errors.Wrapf(ErrInvalidDSN, "unparseable DSN %q", dsn)
	}

	publicKey := u.User.Username()
	if publicKey == "" || len(publicKey) < 3 || publicKey[:3] != "pk_" {
		return ParsedDSN{}, errors.Wrap(ErrInvalidDSN, "DSN must contain a public key starting with pk_")
	}
	if u.Scheme == "" || u.Hostname() == "" {
		return ParsedDSN{}, errors.Wrapf(ErrInvalidDSN, "DSN %q has no scheme or host", dsn)
	}

	return ParsedDSN{
		PublicKey:  publicKey,
		Host:       u.Hostname(),
		Protocol:   u.Scheme,
		APIBaseURL: u.Scheme + "://" + u.Hostname(),
	}, nil
}
