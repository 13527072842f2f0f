package transport

import (
	"io"
	"net/http"
	"net/url"
)

// Request is the envelope every layer operates on. HTTPRequest is the only
// variant; layers that need HTTP detail use AsHTTP.
type Request interface {
	isRequest()
}

// Response mirrors Request. HTTPResponse is the only variant.
type Response interface {
	isResponse()
}

// QueryParam is one query pair. Order is preserved and duplicate keys are
// allowed.
type QueryParam struct {
	Key   string
	Value string
}

// Q is shorthand for building query pairs: Q("filter", "a=1", "sort", "-created").
// A trailing key without a value is dropped.
func Q(kv ...string) []QueryParam {
	params := make([]QueryParam, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		params = append(params, QueryParam{Key: kv[i], Value: kv[i+1]})
	}
	return params
}

// HTTPRequest describes one outbound HTTP call.
type HTTPRequest struct {
	Method string
	// URL is absolute and carries no query; Query is appended on send.
	URL    string
	Header http.Header
	Query  []QueryParam
	Body   Body
}

func (*HTTPRequest) isRequest() {}

// NewHTTPRequest returns a request with an empty header map.
func NewHTTPRequest(method, rawURL string) *HTTPRequest {
	return &HTTPRequest{Method: method, URL: rawURL, Header: make(http.Header)}
}

// AddQuery appends query pairs after the existing ones.
func (r *HTTPRequest) AddQuery(params ...QueryParam) *HTTPRequest {
	r.Query = append(r.Query, params...)
	return r
}

// SetHeader replaces a header value.
func (r *HTTPRequest) SetHeader(key, value string) *HTTPRequest {
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	r.Header.Set(key, value)
	return r
}

// FullURL parses URL and appends Query in order.
func (r *HTTPRequest) FullURL() (*url.URL, error) {
	u, err := url.Parse(r.URL)
	if err != nil {
		return nil, err
	}
	if len(r.Query) == 0 {
		return u, nil
	}
	encoded := encodeQuery(r.Query)
	if u.RawQuery != "" {
		u.RawQuery += "&" + encoded
	} else {
		u.RawQuery = encoded
	}
	return u, nil
}

// Clone returns a copy with its own header and query slices. The body is
// shared; RawBody and file readers cannot be replayed.
func (r *HTTPRequest) Clone() *HTTPRequest {
	c := *r
	c.Header = r.Header.Clone()
	if c.Header == nil {
		c.Header = make(http.Header)
	}
	c.Query = append([]QueryParam(nil), r.Query...)
	return &c
}

// encodeQuery keeps insertion order, unlike url.Values.Encode which sorts keys.
func encodeQuery(params []QueryParam) string {
	buf := make([]byte, 0, 16*len(params))
	for i, p := range params {
		if i > 0 {
			buf = append(buf, '&')
		}
		buf = append(buf, url.QueryEscape(p.Key)...)
		buf = append(buf, '=')
		buf = append(buf, url.QueryEscape(p.Value)...)
	}
	return string(buf)
}

// AsHTTP returns the HTTP variant of req.
func AsHTTP(req Request) (*HTTPRequest, bool) {
	r, ok := req.(*HTTPRequest)
	return r, ok && r != nil
}

// HTTPResponse is a raw response. Body is never nil and must be closed by
// whoever consumes it.
type HTTPResponse struct {
	StatusCode int
	Header     http.Header
	Body       io.ReadCloser
}

func (*HTTPResponse) isResponse() {}

// IsSuccess reports a 2xx status.
func (r *HTTPResponse) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// AsHTTPResponse returns the HTTP variant of resp.
func AsHTTPResponse(resp Response) (*HTTPResponse, bool) {
	r, ok := resp.(*HTTPResponse)
	return r, ok && r != nil
}

// Body is the request payload. A nil Body sends nothing.
type Body interface {
	isBody()
}

// JSONBody is encoded with encoding/json.
type JSONBody struct {
	Value any
}

// MultipartBody is sent as multipart/form-data. Fields are written before
// files, both in order.
type MultipartBody struct {
	Fields []FormField
	Files  []FileField
}

// FormField is a plain form value.
type FormField struct {
	Name  string
	Value string
}

// FileField is a file upload part.
type FileField struct {
	// FieldName is the form field name (e.g., "avatar", "documents").
	FieldName string
	// FileName is the file name sent to the server.
	FileName string
	// ContentType defaults to application/octet-stream.
	ContentType string
	// Data is the file content. Used if Reader is nil.
	Data []byte
	// Reader streams the content for large files.
	Reader io.Reader
}

// RawBody is sent as-is.
type RawBody struct {
	Reader      io.Reader
	ContentType string
}

func (JSONBody) isBody()       {}
func (*MultipartBody) isBody() {}
func (RawBody) isBody()        {}

// AddField appends a form value.
func (m *MultipartBody) AddField(name, value string) *MultipartBody {
	m.Fields = append(m.Fields, FormField{Name: name, Value: value})
	return m
}

// AddFile appends an in-memory file part.
func (m *MultipartBody) AddFile(field, fileName string, data []byte) *MultipartBody {
	m.Files = append(m.Files, FileField{FieldName: field, FileName: fileName, Data: data})
	return m
}
