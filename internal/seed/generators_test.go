package seed

import (
	"testing"

	"onchat/internal/chain"
)

func TestSanitizeSlug(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"Hello World!", "helloworld"},
		{"off-topic", "off-topic"},
		{"--trading--", "trading"},
		{"42!?", ""},
		{"a-very-long-channel-slug-that-keeps-going", "a-very-long-channel"},
	}
	for _, tc := range cases {
		if got := SanitizeSlug(tc.in); got != tc.want {
			t.Fatalf("SanitizeSlug(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestChannelName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"off-topic", "Off Topic"},
		{"trading", "Trading"},
		{"the-commons", "The Commons"},
	}
	for _, tc := range cases {
		if got := ChannelName(tc.in); got != tc.want {
			t.Fatalf("ChannelName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFactoryChannelSlug_AlwaysValid(t *testing.T) {
	t.Parallel()

	f := NewFactory(nil, nil, nil)
	for i := 0; i < 100; i++ {
		slug := f.ChannelSlug()
		if !slugPattern.MatchString(slug) {
			t.Fatalf("generated slug %q is not a valid slug", slug)
		}
	}
}

func TestFactoryNewWallet(t *testing.T) {
	t.Parallel()

	f := NewFactory(nil, nil, nil)

	first, err := f.NewWallet()
	if err != nil {
		t.Fatalf("new wallet: %v", err)
	}
	second, err := f.NewWallet()
	if err != nil {
		t.Fatalf("new wallet: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct wallets, got %s twice", first)
	}

	for _, wallet := range []string{first, second} {
		normalized, err := chain.NormalizeAddress(wallet)
		if err != nil {
			t.Fatalf("generated wallet %q does not normalize: %v", wallet, err)
		}
		if normalized != wallet {
			t.Fatalf("generated wallet %q is not checksummed (want %q)", wallet, normalized)
		}
	}
}
