package main

import (
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	c := &Config{Port: "8081", DatabaseDSN: "host=localhost user=app dbname=fintrack"}
	if err := c.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	c = &Config{Port: "not-a-port", DatabaseDSN: "x"}
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for non-numeric port")
	}

	c = &Config{Port: "8081", DatabaseDSN: "  "}
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for missing DSN")
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("FT_TEST_STR", "value")
	if got := getEnv("FT_TEST_STR", "fallback"); got != "value" {
		t.Fatalf("getEnv = %q", got)
	}
	if got := getEnv("FT_TEST_UNSET", "fallback"); got != "fallback" {
		t.Fatalf("getEnv fallback = %q", got)
	}

	t.Setenv("FT_TEST_BOOL", "false")
	if getEnvBool("FT_TEST_BOOL", true) {
		t.Fatal("getEnvBool should honour explicit false")
	}
	if !getEnvBool("FT_TEST_BOOL_UNSET", true) {
		t.Fatal("getEnvBool should fall back")
	}

	t.Setenv("FT_TEST_DUR", "90s")
	if got := getEnvDuration("FT_TEST_DUR", time.Minute); got != 90*time.Second {
		t.Fatalf("getEnvDuration = %v", got)
	}
	t.Setenv("FT_TEST_DUR", "garbage")
	if got := getEnvDuration("FT_TEST_DUR", time.Minute); got != time.Minute {
		t.Fatalf("getEnvDuration fallback = %v", got)
	}
}
