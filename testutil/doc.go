// Package testutil provides a fake backend for exercising the client over
// real HTTP.
//
// MockServer is a gin engine behind an httptest.Server. Routes are
// registered per test and every request is recorded for later assertions:
//
//	func TestHealth(t *testing.T) {
//	    srv := testutil.NewMockServer()
//	    srv.JSON(http.MethodGet, "/api/health", http.StatusOK, gin.H{"code": 200, "message": "API is healthy."})
//	    testutil.T(t).Setup(srv)
//
//	    pb, _ := client.New(srv.URL(), "en-US")
//	    ...
//	    req, _ := srv.LastRequest()
//	}
//
// MockServer implements TestComponent, so it can be reset between cases or
// snapshotted and restored like any other test component.
package testutil
