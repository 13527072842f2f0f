// Package security builds the TLS client configuration used by the HTTP
// executor.
//
//	tlsCfg := security.TLSConfig{
//	    CAFile:     "/etc/pocketbase/ca.pem",
//	    MinVersion: "1.3",
//	}
//	cfg, err := tlsCfg.Build()
package security
