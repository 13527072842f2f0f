// Package httpclient is the terminal stage of the request pipeline: it turns
// a transport.HTTPRequest into a net/http call and hands back the raw
// response.
//
// The executor performs exactly one network attempt per call and never
// interprets status codes. Retries, rate limits and status classification
// belong to the layers and to the client above it.
//
//	exec, err := httpclient.New(httpclient.Config{
//		Timeout: 10 * time.Second,
//		Proxy:   "http://proxy.internal:3128",
//	})
//	resp, err := exec.Call(ctx, transport.NewHTTPRequest(http.MethodGet, "http://127.0.0.1:8090/api/health"))
//
// The sse subpackage reads Server-Sent Events from a streaming response body.
package httpclient
