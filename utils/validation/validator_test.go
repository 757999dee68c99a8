package validation

import "testing"

func TestValidateUsername(t *testing.T) {
	cases := []struct {
		username string
		ok       bool
	}{
		{"alice", true},
		{"alice_smith", true},
		{"a-b-c", true},
		{"User123", true},
		{"ab", false},                       // too short
		{"", false},                         // empty
		{"has space", false},                // whitespace
		{"bad!char", false},                 // punctuation
		{"uñicode", false},                  // non-ascii
		{string(make([]byte, 31)), false},   // too long
	}

	for _, tc := range cases {
		ok, reason := ValidateUsername(tc.username)
		if ok != tc.ok {
			t.Errorf("ValidateUsername(%q) = %v (%s), want %v", tc.username, ok, reason, tc.ok)
		}
		if !ok && reason == "" {
			t.Errorf("ValidateUsername(%q) rejected without a reason", tc.username)
		}
	}
}

func TestSanitizeString(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  hello  ", "hello"},
		{"with\x00null", "withnull"},
		{"\x00\x00", ""},
		{"clean", "clean"},
	}

	for _, tc := range cases {
		if got := SanitizeString(tc.in); got != tc.want {
			t.Errorf("SanitizeString(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestValidateStruct(t *testing.T) {
	type payload struct {
		Name  string `validate:"required,min=2"`
		Score int    `validate:"min=0,max=10"`
	}

	v := NewValidator()

	if err := v.ValidateStruct(payload{Name: "ok", Score: 5}); err != nil {
		t.Errorf("valid payload rejected: %v", err)
	}
	if err := v.ValidateStruct(payload{Name: "", Score: 5}); err == nil {
		t.Error("missing required field accepted")
	}
	if err := v.ValidateStruct(payload{Name: "ok", Score: 11}); err == nil {
		t.Error("out-of-range field accepted")
	}
}

func TestFormatValidationErrors(t *testing.T) {
	type payload struct {
		Name string `validate:"required"`
	}

	v := NewValidator()
	err := v.ValidateStruct(payload{})
	if err == nil {
		t.Fatal("expected a validation error")
	}

	formatted := FormatValidationErrors(err)
	if msg, ok := formatted["name"]; !ok || msg == "" {
		t.Errorf("formatted errors = %v, want a message keyed by field name", formatted)
	}
}
