package cmd

import "testing"

func TestValidateAddr(t *testing.T) {
	valid := []string{
		"127.0.0.1:8087",
		"localhost:3500",
		":8080",
		"[::1]:9000",
		"0.0.0.0:0",
	}
	for _, addr := range valid {
		if err := validateAddr(addr); err != nil {
			t.Errorf("validateAddr(%q) = %v, want nil", addr, err)
		}
	}

	invalid := []string{
		"no-port",
		"localhost:",
		"localhost:abc",
		"localhost:70000",
		"localhost:-1",
	}
	for _, addr := range invalid {
		if err := validateAddr(addr); err == nil {
			t.Errorf("validateAddr(%q) = nil, want error", addr)
		}
	}
}
