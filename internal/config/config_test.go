package config

import (
	"os"
	"reflect"
	"testing"
	"time"
)

func TestGetenv(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      string
		expected string
	}{
		{
			name:     "existing variable",
			key:      "TEST_GETENV",
			value:    "custom",
			def:      "default",
			expected: "custom",
		},
		{
			name:     "missing variable uses default",
			key:      "TEST_GETENV_MISSING",
			value:    "",
			def:      "default",
			expected: "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				if err := os.Setenv(tt.key, tt.value); err != nil {
					t.Fatalf("failed to set env var: %v", err)
				}
				defer func() {
					if err := os.Unsetenv(tt.key); err != nil {
						t.Errorf("failed to unset env var: %v", err)
					}
				}()
			}

			result := getenv(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("getenv() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestRequireEnv(t *testing.T) {
	tests := []struct {
		name        string
		key         string
		value       string
		shouldPanic bool
	}{
		{
			name:        "existing variable",
			key:         "TEST_REQUIRE_ENV",
			value:       "value",
			shouldPanic: false,
		},
		{
			name:        "missing variable panics",
			key:         "TEST_REQUIRE_ENV_MISSING",
			value:       "",
			shouldPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				if err := os.Setenv(tt.key, tt.value); err != nil {
					t.Fatalf("failed to set env var: %v", err)
				}
				defer func() {
					if err := os.Unsetenv(tt.key); err != nil {
						t.Errorf("failed to unset env var: %v", err)
					}
				}()
			}

			defer func() {
				r := recover()
				if tt.shouldPanic && r == nil {
					t.Errorf("requireEnv() should have panicked")
				}
				if !tt.shouldPanic && r != nil {
					t.Errorf("requireEnv() panicked unexpectedly: %v", r)
				}
			}()

			result := requireEnv(tt.key)
			if !tt.shouldPanic && result != tt.value {
				t.Errorf("requireEnv() = %q, want %q", result, tt.value)
			}
		})
	}
}

func TestRequireEnvInt(t *testing.T) {
	tests := []struct {
		name        string
		key         string
		value       string
		expected    int
		shouldPanic bool
	}{
		{
			name:        "valid integer",
			key:         "TEST_REQUIRE_INT",
			value:       "42",
			expected:    42,
			shouldPanic: false,
		},
		{
			name:        "invalid integer panics",
			key:         "TEST_REQUIRE_INT_INVALID",
			value:       "not-a-number",
			shouldPanic: true,
		},
		{
			name:        "missing variable panics",
			key:         "TEST_REQUIRE_INT_MISSING",
			value:       "",
			shouldPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				if err := os.Setenv(tt.key, tt.value); err != nil {
					t.Fatalf("failed to set env var: %v", err)
				}
				defer func() {
					if err := os.Unsetenv(tt.key); err != nil {
						t.Errorf("failed to unset env var: %v", err)
					}
				}()
			}

			defer func() {
				r := recover()
				if tt.shouldPanic && r == nil {
					t.Errorf("requireEnvInt() should have panicked")
				}
				if !tt.shouldPanic && r != nil {
					t.Errorf("requireEnvInt() panicked unexpectedly: %v", r)
				}
			}()

			result := requireEnvInt(tt.key)
			if !tt.shouldPanic && result != tt.expected {
				t.Errorf("requireEnvInt() = %d, want %d", result, tt.expected)
			}
		})
	}
}

func TestParseList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: nil,
		},
		{
			name:     "single value",
			input:    "http://localhost:3000",
			expected: []string{"http://localhost:3000"},
		},
		{
			name:     "multiple values with spaces",
			input:    "http://localhost:3000, https://example.com",
			expected: []string{"http://localhost:3000", "https://example.com"},
		},
		{
			name:     "quoted values",
			input:    `"10.0.0.0/8", '192.168.1.0/24'`,
			expected: []string{"10.0.0.0/8", "192.168.1.0/24"},
		},
		{
			name:     "trailing comma and blanks dropped",
			input:    "a,,b,",
			expected: []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseList(tt.input)
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("parseList(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestMustDuration(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      time.Duration
		expected time.Duration
	}{
		{
			name:     "valid duration",
			key:      "TEST_DURATION",
			value:    "10s",
			def:      5 * time.Second,
			expected: 10 * time.Second,
		},
		{
			name:     "invalid duration uses default",
			key:      "TEST_DURATION_INVALID",
			value:    "invalid",
			def:      5 * time.Second,
			expected: 5 * time.Second,
		},
		{
			name:     "missing variable uses default",
			key:      "TEST_DURATION_MISSING",
			value:    "",
			def:      30 * time.Second,
			expected: 30 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				if err := os.Setenv(tt.key, tt.value); err != nil {
					t.Fatalf("failed to set env var: %v", err)
				}
				defer func() {
					if err := os.Unsetenv(tt.key); err != nil {
						t.Errorf("failed to unset env var: %v", err)
					}
				}()
			}

			result := mustDuration(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("mustDuration() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMustBool(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      bool
		expected bool
	}{
		{
			name:     "true value",
			key:      "TEST_BOOL",
			value:    "true",
			def:      false,
			expected: true,
		},
		{
			name:     "false value",
			key:      "TEST_BOOL_FALSE",
			value:    "false",
			def:      true,
			expected: false,
		},
		{
			name:     "invalid value uses default",
			key:      "TEST_BOOL_INVALID",
			value:    "invalid",
			def:      true,
			expected: true,
		},
		{
			name:     "missing variable uses default",
			key:      "TEST_BOOL_MISSING",
			value:    "",
			def:      false,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				if err := os.Setenv(tt.key, tt.value); err != nil {
					t.Fatalf("failed to set env var: %v", err)
				}
				defer func() {
					if err := os.Unsetenv(tt.key); err != nil {
						t.Errorf("failed to unset env var: %v", err)
					}
				}()
			}

			result := mustBool(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("mustBool() = %v, want %v", result, tt.expected)
			}
		})
	}
}
