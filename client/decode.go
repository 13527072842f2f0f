package client

import (
	"bytes"
	"encoding/json"
	"io"

	pberrors "github.com/kbukum/gopocket/errors"
	"github.com/kbukum/gopocket/transport"
)

// maxDrain bounds how much Discard reads so a connection can be reused.
const maxDrain = 64 << 10

// Decode reads and closes the body and unmarshals it into T. An empty body
// yields the zero T.
func Decode[T any](resp *transport.HTTPResponse) (T, error) {
	var out T
	if resp == nil || resp.Body == nil {
		return out, nil
	}
	defer closeBody(resp)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return out, pberrors.Transport("response.read", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, pberrors.Serialization("response.decode", err)
	}
	return out, nil
}

// Discard drains and closes the body without decoding it.
func Discard(resp *transport.HTTPResponse) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrain))
	_ = resp.Body.Close()
}
