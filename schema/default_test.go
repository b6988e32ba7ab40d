package schema

import "testing"

func TestNormalizeForEmission(t *testing.T) {
	cases := []struct {
		name     string
		raw      string
		typeUp   string
		wantExpr string
		wantOK   bool
	}{
		{"empty", "", "VARCHAR(64)", "", false},
		{"null lower", "null", "VARCHAR(64)", "", false},
		{"null upper", "NULL", "VARCHAR(64)", "", false},
		{"default prefix", "default active", "VARCHAR(32)", "'active'", true},
		{"function call passthrough", "now()", "TIMESTAMP", "now()", true},
		{"current_timestamp", "CURRENT_TIMESTAMP", "TIMESTAMP", "CURRENT_TIMESTAMP", true},
		{"bool true", "TRUE", "BOOLEAN", "TRUE", true},
		{"bool false", "false", "BOOLEAN", "FALSE", true},
		{"integer literal", "42", "INTEGER", "42", true},
		{"negative decimal", "-3.5", "NUMERIC(10,2)", "-3.5", true},
		{"jsonb object", `{"a":1}`, "JSONB", `'{"a":1}'::jsonb`, true},
		{"json array", `[1,2]`, "JSON", `'[1,2]'::json`, true},
		{"uuid literal", "123e4567-e89b-12d3-a456-426614174000", "UUID", "'123e4567-e89b-12d3-a456-426614174000'", true},
		{"already quoted", "'hello'", "VARCHAR(32)", "'hello'", true},
		{"double quoted", `"hello"`, "VARCHAR(32)", "'hello'", true},
		{"plain string escapes quotes", "O'Brien", "VARCHAR(32)", "'O''Brien'", true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			expr, ok := NormalizeForEmission(c.raw, c.typeUp)
			if ok != c.wantOK || expr != c.wantExpr {
				t.Errorf("NormalizeForEmission(%q, %q) = (%q, %v), want (%q, %v)", c.raw, c.typeUp, expr, ok, c.wantExpr, c.wantOK)
			}
		})
	}
}

func TestCanonicalizeReflected(t *testing.T) {
	cases := []struct {
		name      string
		reflected string
		want      string
	}{
		{"varchar cast", "'active'::character varying", "active"},
		{"nextval untouched", "nextval('users_id_seq'::regclass)", "nextval('users_id_seq'::regclass)"},
		{"bool lowercased", "TRUE", "true"},
		{"double cast strip", "'2020-01-01'::date::timestamp without time zone", "2020-01-01"},
		{"outer paren", "(1)", "1"},
		{"collapse whitespace", "'a   b'::text", "a b"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := CanonicalizeReflected(c.reflected)
			if got != c.want {
				t.Errorf("CanonicalizeReflected(%q) = %q, want %q", c.reflected, got, c.want)
			}
		})
	}
}

func TestCanonicalizeReflectedIdempotent(t *testing.T) {
	inputs := []string{
		"'active'::character varying",
		"nextval('x_seq'::regclass)",
		"TRUE",
		"(1)",
		"'O''Brien'::text",
	}
	for _, in := range inputs {
		once := CanonicalizeReflected(in)
		twice := CanonicalizeReflected(once)
		if once != twice {
			t.Errorf("canonicalize not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}

func TestCompareDefault(t *testing.T) {
	cases := []struct {
		name       string
		hasDefault bool
		raw        string
		typeUp     string
		reflected  *string
		wantAction DefaultAction
	}{
		{"both absent", false, "", "VARCHAR(32)", nil, DefaultUnchanged},
		{"dsl absent reflected present", false, "", "VARCHAR(32)", strPtr("'x'::character varying"), DefaultShouldDrop},
		{"dsl present reflected absent", true, "active", "VARCHAR(32)", nil, DefaultShouldSet},
		{"matching canonical forms", true, "active", "VARCHAR(32)", strPtr("'active'::character varying"), DefaultUnchanged},
		{"differing values", true, "inactive", "VARCHAR(32)", strPtr("'active'::character varying"), DefaultShouldSet},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			action, _ := CompareDefault(c.hasDefault, c.raw, c.typeUp, c.reflected)
			if action != c.wantAction {
				t.Errorf("CompareDefault(...) action = %v, want %v", action, c.wantAction)
			}
		})
	}
}

func TestCompareDefaultEmissionIsSame(t *testing.T) {
	raws := []struct{ raw, typ string }{
		{"active", "VARCHAR(32)"},
		{"42", "INTEGER"},
		{"true", "BOOLEAN"},
		{"123e4567-e89b-12d3-a456-426614174000", "UUID"},
	}
	for _, r := range raws {
		emitted, ok := NormalizeForEmission(r.raw, r.typ)
		if !ok {
			t.Fatalf("expected emission for %q", r.raw)
		}
		action, _ := CompareDefault(true, r.raw, r.typ, &emitted)
		if action != DefaultUnchanged {
			t.Errorf("compareDefault(%q, emit(%q)) = %v, want unchanged", r.raw, r.raw, action)
		}
	}
}

func strPtr(s string) *string { return &s }
