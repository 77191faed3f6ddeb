package auth

import "testing"

func TestHashPrefix_LengthAndDeterminism(t *testing.T) {
	k := "test-key"
	p1 := HashPrefix(k)
	p2 := HashPrefix(k)
	if len(p1) != 8 { t.Fatalf("len=%d", len(p1)) }
	if p1 != p2 { t.Fatalf("non-deterministic: %s vs %s", p1, p2) }
	if HashPrefix("other-key") == p1 { t.Fatalf("prefix collision for distinct keys") }
}

func TestNewKey_RandomHex(t *testing.T) {
	a, err := NewKey()
	if err != nil { t.Fatalf("new key: %v", err) }
	b, _ := NewKey()
	if len(a) != 64 { t.Fatalf("len=%d", len(a)) }
	if a == b { t.Fatalf("keys repeat") }
}
