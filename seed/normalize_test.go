package seed

import (
	"testing"
	"time"
)

func TestEqualNull(t *testing.T) {
	if !Equal(nil, nil) {
		t.Errorf("nil should equal nil")
	}
}

func TestEqualNumericStringVsNumber(t *testing.T) {
	if !Equal(180, "180.00") {
		t.Errorf("180 should equal \"180.00\"")
	}
}

func TestEqualBooleans(t *testing.T) {
	if !Equal(true, true) {
		t.Errorf("true should equal true")
	}
	if Equal(true, false) {
		t.Errorf("true should not equal false")
	}
}

func TestEqualDateStringsIgnoringTimezoneAndSeparator(t *testing.T) {
	a := "2024-01-02 03:04:05.000"
	b := "2024-01-02T03:04:05.000Z"
	if !Equal(a, b) {
		t.Errorf("%q should equal %q", a, b)
	}
}

func TestEqualObjectsStructurally(t *testing.T) {
	a := map[string]interface{}{"b": 1, "a": 2}
	b := map[string]interface{}{"a": 2, "b": 1}
	if !Equal(a, b) {
		t.Errorf("objects with same keys in different order should be equal")
	}
}

func TestEqualJSONStringVsParsed(t *testing.T) {
	a := `{"a":1,"b":2}`
	b := map[string]interface{}{"b": 2, "a": 1}
	if !Equal(a, b) {
		t.Errorf("JSON string should equal its parsed structural form")
	}
}

func TestEqualArrays(t *testing.T) {
	a := []interface{}{1, 2, 3}
	b := []interface{}{1, 2, 3}
	if !Equal(a, b) {
		t.Errorf("arrays with identical elements should be equal")
	}
}

func TestCanonicalizeIdempotent(t *testing.T) {
	v := map[string]interface{}{"x": "180.00", "y": []interface{}{1, 2}}
	once := Canonicalize(v)
	twice := Canonicalize(Canonicalize(v))
	if twice != once {
		t.Errorf("Canonicalize not idempotent: once=%q twice=%q", once, twice)
	}
	if Canonicalize(v) != once {
		t.Errorf("Canonicalize not stable across calls")
	}
}

func TestEqualTimeValueAgainstDeclaredISOString(t *testing.T) {
	reflected := time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local)
	declared := "2024-01-02T03:04:05.000Z"
	if !Equal(reflected, declared) {
		t.Errorf("time.Time %v should equal declared string %q", reflected, declared)
	}
}

func TestEqualUUIDsIgnoringCase(t *testing.T) {
	a := "9E2B5E9A-3B3E-4B7E-9B3E-1B3E4B7E9B3E"
	b := "9e2b5e9a-3b3e-4b7e-9b3e-1b3e4b7e9b3e"
	if !Equal(a, b) {
		t.Errorf("%q should equal %q", a, b)
	}
}

func TestEqualPlainStringFallback(t *testing.T) {
	if !Equal("abc", "abc") {
		t.Errorf("identical strings should be equal")
	}
	if Equal("abc", "abd") {
		t.Errorf("different strings should not be equal")
	}
}
