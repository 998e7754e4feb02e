package keys

import (
	"errors"
	"math/big"
	"net/netip"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestDeriveDeterministic(t *testing.T) {
	spec := Spec{
		Namespace: "users",
		Identity:  "svc.GetUser",
		Args:      map[string]any{"user_id": 7, "flags": []string{"a", "b"}},
	}
	k1 := Derive(spec)
	k2 := Derive(spec)
	if k1 != k2 {
		t.Fatalf("same spec produced different keys: %q vs %q", k1, k2)
	}
	if !strings.HasPrefix(k1, "users:svc.GetUser:") {
		t.Fatalf("unexpected key shape: %q", k1)
	}
	const hexLen = 64 // sha-256
	if got := len(k1) - len("users:svc.GetUser:"); got != hexLen {
		t.Fatalf("hash segment length = %d, want %d", got, hexLen)
	}
}

func TestDeriveIgnoresArgumentOrder(t *testing.T) {
	a := map[string]any{"x": 1, "y": "two", "z": 3.5}
	b := map[string]any{"z": 3.5, "y": "two", "x": 1}
	ka := Derive(Spec{Namespace: "n", Identity: "op", Args: a})
	kb := Derive(Spec{Namespace: "n", Identity: "op", Args: b})
	if ka != kb {
		t.Fatalf("map insertion order leaked into key: %q vs %q", ka, kb)
	}
}

func TestDeriveDifferentArgsDifferentKeys(t *testing.T) {
	k1 := Derive(Spec{Namespace: "n", Identity: "op", Args: map[string]any{"id": 1}})
	k2 := Derive(Spec{Namespace: "n", Identity: "op", Args: map[string]any{"id": 2}})
	if k1 == k2 {
		t.Fatalf("distinct args produced identical keys: %q", k1)
	}
}

func TestDeriveExclusions(t *testing.T) {
	base := map[string]any{"user_id": 7, "db": "conn-a", "session": "s1"}
	varied := map[string]any{"user_id": 7, "db": "conn-b", "session": "s2"}
	k1 := Derive(Spec{Namespace: "n", Identity: "op", Args: base})
	k2 := Derive(Spec{Namespace: "n", Identity: "op", Args: varied})
	if k1 != k2 {
		t.Fatalf("excluded args affected the key: %q vs %q", k1, k2)
	}

	// explicit empty exclusion set keeps everything
	k3 := Derive(Spec{Namespace: "n", Identity: "op", Args: base, Exclusions: []string{}})
	k4 := Derive(Spec{Namespace: "n", Identity: "op", Args: varied, Exclusions: []string{}})
	if k3 == k4 {
		t.Fatalf("empty exclusions should make db/session significant")
	}
}

func TestDeriveExplicitKeyOverridesIdentity(t *testing.T) {
	k := Derive(Spec{Namespace: "users", Identity: "pkg.fn", Key: "get_user", Args: map[string]any{"id": 1}})
	if !strings.HasPrefix(k, "users:get_user:") {
		t.Fatalf("explicit key not used: %q", k)
	}
}

type errLogger struct{ msgs []string }

func (l *errLogger) Error(msg string, _ map[string]any) { l.msgs = append(l.msgs, msg) }

func TestCustomBuilderOverridesAndFallsBack(t *testing.T) {
	ok := BuilderFunc(func(identity string, args map[string]any) (string, error) {
		return "custom:" + identity, nil
	})
	k := Derive(Spec{Namespace: "n", Identity: "op", Args: map[string]any{"id": 1}, Builder: ok})
	if k != "custom:op" {
		t.Fatalf("custom builder output not used verbatim: %q", k)
	}

	boom := BuilderFunc(func(string, map[string]any) (string, error) {
		return "", errors.New("boom")
	})
	log := &errLogger{}
	k2 := Derive(Spec{Namespace: "n", Identity: "op", Args: map[string]any{"id": 1}, Builder: boom, Logger: log})
	want := Derive(Spec{Namespace: "n", Identity: "op", Args: map[string]any{"id": 1}})
	if k2 != want {
		t.Fatalf("failing builder must fall back to default key: got %q want %q", k2, want)
	}
	if len(log.msgs) != 1 {
		t.Fatalf("builder failure not logged")
	}
}

func TestBuilderSeesFilteredArgs(t *testing.T) {
	var seen map[string]any
	b := BuilderFunc(func(_ string, args map[string]any) (string, error) {
		seen = args
		return "k", nil
	})
	Derive(Spec{Namespace: "n", Identity: "op", Builder: b,
		Args: map[string]any{"id": 1, "request": "req", "self": "svc"}})
	if _, ok := seen["request"]; ok {
		t.Fatalf("excluded arg leaked to custom builder")
	}
	if _, ok := seen["id"]; !ok {
		t.Fatalf("kept arg missing from custom builder input")
	}
}

func TestCanonicalRichTypes(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 26, 53, 589793000, time.UTC)
	id := uuid.MustParse("9b2cbf6d-07b8-4f0e-a8f7-87ac25183b7a")
	dec := decimal.RequireFromString("19.99")

	cases := []struct {
		in   any
		want any
	}{
		{ts, "2026-03-14T09:26:53.589793Z"},
		{id, "9b2cbf6d-07b8-4f0e-a8f7-87ac25183b7a"},
		{dec, "19.99"},
		{[]byte{0x01, 0x02}, "AQI="},
		{3 * time.Second, int64(3 * time.Second)},
		{int32(5), int64(5)},
		{nil, nil},
	}
	for _, tc := range cases {
		if got := Canonical(tc.in); got != tc.want {
			t.Fatalf("Canonical(%v) = %v (%T), want %v", tc.in, got, got, tc.want)
		}
	}
}

func TestCanonicalNestedAndUnknown(t *testing.T) {
	type Query struct {
		Page   int
		Labels []string
		hidden string
	}
	got := Canonical(Query{Page: 2, Labels: []string{"a"}, hidden: "x"})
	m, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("struct should canonicalize to a map, got %T", got)
	}
	if m["Page"] != int64(2) {
		t.Fatalf("Page = %v", m["Page"])
	}
	if _, leaked := m["hidden"]; leaked {
		t.Fatalf("unexported field leaked")
	}

	// unknown kinds go textual, never panic
	ch := make(chan int)
	if _, ok := Canonical(ch).(string); !ok {
		t.Fatalf("unknown kind should fall back to text")
	}
}

func TestCanonicalOpaqueStructs(t *testing.T) {
	// values carried entirely in unexported fields must not collapse to an
	// empty map; their textual form is the canonical one
	if got := Canonical(big.NewInt(42)); got != "42" {
		t.Fatalf("Canonical(*big.Int) = %v (%T), want \"42\"", got, got)
	}

	addr := netip.MustParseAddr("192.0.2.7")
	if got := Canonical(addr); got != "192.0.2.7" {
		t.Fatalf("Canonical(netip.Addr) = %v (%T)", got, got)
	}

	k1 := Derive(Spec{Namespace: "n", Identity: "op", Args: map[string]any{"id": big.NewInt(1)}})
	k2 := Derive(Spec{Namespace: "n", Identity: "op", Args: map[string]any{"id": big.NewInt(2)}})
	if k1 == k2 {
		t.Fatalf("distinct *big.Int args produced identical keys: %q", k1)
	}
	k3 := Derive(Spec{Namespace: "n", Identity: "op", Args: map[string]any{"id": big.NewInt(1)}})
	if k1 != k3 {
		t.Fatalf("equal *big.Int args produced different keys: %q vs %q", k1, k3)
	}
}

func TestArgsOf(t *testing.T) {
	if m := ArgsOf(map[string]any{"a": 1}); m["a"] != 1 {
		t.Fatalf("map input should pass through")
	}

	type In struct {
		UserID int
		Name   string
	}
	m := ArgsOf(In{UserID: 7, Name: "ada"})
	if m["UserID"] != 7 || m["Name"] != "ada" {
		t.Fatalf("struct fields not mapped: %v", m)
	}

	m = ArgsOf(42)
	if m["arg"] != 42 {
		t.Fatalf("scalar input should map to arg: %v", m)
	}
}

type argerIn struct{ id int }

func (a argerIn) CacheArgs() map[string]any { return map[string]any{"id": a.id} }

func TestArgsOfArger(t *testing.T) {
	m := ArgsOf(argerIn{id: 9})
	if m["id"] != 9 {
		t.Fatalf("Arger mapping not used: %v", m)
	}
}

func TestHashEqualForEquivalentStructures(t *testing.T) {
	// a struct and the equivalent map hash identically after canonicalization
	type In struct{ ID int64 }
	h1 := Hash(map[string]any{"in": In{ID: 3}})
	h2 := Hash(map[string]any{"in": map[string]any{"ID": int64(3)}})
	if h1 != h2 {
		t.Fatalf("semantically equal structures hashed differently")
	}
}
