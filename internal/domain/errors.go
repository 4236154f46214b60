package domain

import "errors"

var (
	// ErrNotFound means a name lookup returned zero candidates.
	ErrNotFound = errors.New("location not found")

	// ErrTransport covers network failures, non-2xx statuses and malformed payloads.
	ErrTransport = errors.New("transport error")

	// ErrEmptyData means a well-formed response lacked the expected payload.
	ErrEmptyData = errors.New("empty data")

	// ErrGeolocationDenied means the location source refused or could not locate the device.
	ErrGeolocationDenied = errors.New("geolocation denied")

	// ErrGeolocationTimeout means the location source did not answer in time.
	ErrGeolocationTimeout = errors.New("geolocation timed out")

	// ErrGeolocationUnavailable means no location source is configured.
	ErrGeolocationUnavailable = errors.New("geolocation unavailable")
)
