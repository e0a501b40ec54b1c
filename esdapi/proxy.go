package esdapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// NoProxy returns a mapping that sends every request directly, ignoring
// proxy environment variables.
func NoProxy() map[string]string {
	return map[string]string{"all": ""}
}

var proxyUserinfo = regexp.MustCompile(`://[^/@"\s]+@`)

// redactProxies masks credentials embedded in proxy URLs.
func redactProxies(raw string) string {
	return proxyUserinfo.ReplaceAllString(raw, "://[REDACTED]@")
}

// ParseProxies decodes a JSON object mapping URL scheme to proxy URL, as
// accepted by --proxies: {"http": "http://proxy:8080", "https": "..."}.
// An empty string yields a nil map. Anything else that does not decode,
// or names a proxy that is not an absolute URL, yields *ConfigError.
func ParseProxies(raw string) (map[string]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var proxies map[string]string
	if err := json.Unmarshal([]byte(raw), &proxies); err != nil {
		return nil, &ConfigError{Field: "proxies", Value: redactProxies(raw), Err: err}
	}

	for scheme, p := range proxies {
		if p == "" {
			continue
		}
		u, err := url.Parse(p)
		if err != nil {
			// *url.Error repeats the URL, credentials included.
			var ue *url.Error
			if errors.As(err, &ue) {
				err = ue.Err
			}
			return nil, &ConfigError{Field: "proxies", Value: redactProxies(raw), Err: fmt.Errorf("%s: %w", scheme, err)}
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, &ConfigError{Field: "proxies", Value: redactProxies(raw), Err: fmt.Errorf("%s: %w", scheme, errors.New("proxy must be an absolute URL"))}
		}
	}

	return proxies, nil
}
