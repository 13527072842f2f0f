package validation

import (
	"errors"
	"strings"
	"testing"
)

type redisSection struct {
	Addr string `mapstructure:"addr" validate:"required,hostname_port"`
}

type sample struct {
	BaseURL string       `mapstructure:"base_url" validate:"required,url"`
	Driver  string       `mapstructure:"driver" validate:"oneof=memory file redis sql"`
	Burst   int          `mapstructure:"burst" validate:"gte=0"`
	Redis   redisSection `mapstructure:"redis"`
	Plain   string       `validate:"max=3"`
}

func TestValidate_OK(t *testing.T) {
	s := sample{
		BaseURL: "http://127.0.0.1:8090",
		Driver:  "memory",
		Redis:   redisSection{Addr: "localhost:6379"},
	}
	if err := Validate(s); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
}

func TestValidate_ReportsConfigKeys(t *testing.T) {
	s := sample{
		BaseURL: "not a url",
		Driver:  "etcd",
		Burst:   -1,
		Plain:   "toolong",
	}
	err := Validate(s)
	if err == nil {
		t.Fatal("expected error")
	}

	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	for _, field := range []string{"base_url", "driver", "burst", "redis.addr", "plain"} {
		if !verr.Has(field) {
			t.Errorf("expected failure for %q, got %+v", field, verr.Fields)
		}
	}
	if !strings.Contains(err.Error(), "base_url: must be a valid URL") {
		t.Errorf("expected readable message, got %q", err.Error())
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"BaseURL":  "base_u_r_l",
		"Locale":   "locale",
		"MaxRetry": "max_retry",
	}
	for in, want := range tests {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q): expected %q, got %q", in, want, got)
		}
	}
}
