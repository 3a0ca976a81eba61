package featureflags

import "testing"

const testWallet = "0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"

func TestEnabled_BooleanValues(t *testing.T) {
	m := NewManager("a=on,b=off,c=true,d=false,e=1,f=0")

	if !m.Enabled("a", testWallet) || !m.Enabled("c", testWallet) || !m.Enabled("e", testWallet) {
		t.Fatal("expected enabled boolean values to evaluate true")
	}
	if m.Enabled("b", testWallet) || m.Enabled("d", testWallet) || m.Enabled("f", testWallet) {
		t.Fatal("expected disabled boolean values to evaluate false")
	}
}

func TestEnabled_PercentageValues(t *testing.T) {
	m := NewManager("always=100%,never=0%,canary=25%")

	if !m.Enabled("always", testWallet) {
		t.Fatal("100% rollout should always be enabled")
	}
	if m.Enabled("never", testWallet) {
		t.Fatal("0% rollout should always be disabled")
	}

	first := m.Enabled("canary", testWallet)
	for i := 0; i < 5; i++ {
		if got := m.Enabled("canary", testWallet); got != first {
			t.Fatal("rollout evaluation must be deterministic per wallet")
		}
	}

	// Checksummed and lowercase forms are the same wallet.
	if got := m.Enabled("canary", "0x3c44cdddb6a900fa2b585dd299e03d12fa4293bc"); got != first {
		t.Fatal("rollout evaluation must not depend on address casing")
	}

	if m.Enabled("canary", "") {
		t.Fatal("percentage rollout requires a wallet address")
	}
}

func TestParseAndSnapshot(t *testing.T) {
	m := NewManager(" bad ,x=on, y = 20% ,z=off ")

	raw := m.Raw()
	if len(raw) != 3 {
		t.Fatalf("expected 3 parsed flags, got %d", len(raw))
	}
	if raw["x"] != "on" || raw["y"] != "20%" || raw["z"] != "off" {
		t.Fatalf("unexpected raw flags: %#v", raw)
	}

	snap := m.Snapshot(testWallet)
	if len(snap) != 3 {
		t.Fatalf("expected snapshot size 3, got %d", len(snap))
	}
}
