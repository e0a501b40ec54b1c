package esdapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
)

// ErrDevicesConsumed is yielded when a device sequence is ranged over a
// second time.
var ErrDevicesConsumed = errors.New("esdapi: device sequence already consumed")

// Device is one device record as returned by the server.
type Device map[string]any

// String returns the value of key rendered as text, or "".
func (d Device) String(key string) string {
	v, ok := d[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// devicePage is the envelope of the device endpoint.
type devicePage struct {
	Data []Device `json:"data"`
}

// DevicesURL returns endpoint with the flexera_id query parameter added.
func DevicesURL(endpoint, flexeraID string) string {
	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}
	return endpoint + sep + "flexera_id=" + url.QueryEscape(flexeraID)
}

// Devices returns the devices that have flexeraID installed. The request
// is sent when the sequence is first ranged over; one response carries the
// whole result. The sequence is finite and cannot be restarted: a second
// range yields ErrDevicesConsumed. A failed request is yielded once as
// (nil, err).
func (s *Session) Devices(ctx context.Context, endpoint, flexeraID string) iter.Seq2[Device, error] {
	var used atomic.Bool
	return func(yield func(Device, error) bool) {
		if used.Swap(true) {
			yield(nil, ErrDevicesConsumed)
			return
		}

		resp, err := s.do(ctx, "devices", http.MethodGet, DevicesURL(endpoint, flexeraID), nil, nil)
		if err != nil {
			yield(nil, err)
			return
		}

		var page devicePage
		if err := json.Unmarshal(resp.Body, &page); err != nil {
			yield(nil, fmt.Errorf("devices: decode response: %w", err))
			return
		}

		for _, d := range page.Data {
			if !yield(d, nil) {
				return
			}
		}
	}
}
