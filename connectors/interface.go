package connectors

import (
	"encoding/json"
	"fmt"
	"net/url"

	"taskbridge/backend/sync"
)

type UnsupportedSchemeError struct {
	Scheme string
}

func (e *UnsupportedSchemeError) Error() string {
	return fmt.Sprintf("unsupported scheme: %q", e.Scheme)
}

// ConnectorConfig selects and configures a remote connector by URL scheme.
type ConnectorConfig struct {
	URL                *url.URL `json:"url"`
	InsecureSkipVerify bool     `json:"insecure_skip_verify,omitempty"` // WARNING: Only use for self-signed certificates in dev
}

func (c *ConnectorConfig) UnmarshalJSON(data []byte) error {
	type ConnConfig ConnectorConfig

	tmp := struct {
		*ConnConfig
		URL                string `json:"url"`
		InsecureSkipVerify bool   `json:"insecure_skip_verify,omitempty"`
	}{
		ConnConfig: (*ConnConfig)(c),
	}

	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}

	u, err := url.Parse(tmp.URL)
	if err != nil {
		return err
	}

	tmp.ConnConfig.URL = u
	tmp.ConnConfig.InsecureSkipVerify = tmp.InsecureSkipVerify

	return nil
}

// RemoteAdapter constructs the adapter for this connector. The token comes
// from credential resolution; transport specifics stay behind the scheme.
func (c *ConnectorConfig) RemoteAdapter(providerID int64, token string) (sync.RemoteAdapter, error) {
	if c.URL == nil {
		return nil, fmt.Errorf("connector URL is not set")
	}
	switch c.URL.Scheme {
	case "http", "https":
		return NewRESTConnector(providerID, c.URL.String(), token, c.InsecureSkipVerify), nil
	default:
		return nil, &UnsupportedSchemeError{
			Scheme: c.URL.Scheme,
		}
	}
}
