package service

import "errors"

var (
	errEmptyAuthResponse = errors.New("service: auth response has no token")
	errConnectExpected   = errors.New("service: realtime stream did not start with PB_CONNECT")
	errNoClientID        = errors.New("service: realtime connect event has no clientId")
)
