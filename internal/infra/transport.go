package infra

import (
	"errors"
	"net/url"
)

// TransportMessage describes a failed HTTP round trip without the request
// URL, which may carry credentials such as a bot token.
func TransportMessage(err error) string {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Op + ": " + uerr.Err.Error()
	}
	return err.Error()
}
