// Package validation contains input validation for ledger write operations.
package validation

import (
	"fmt"
	"regexp"
)

var channelSlugRegex = regexp.MustCompile(`^[a-z-]{1,20}$`)

// MaxChannelNameLength bounds the display name to its column size.
const MaxChannelNameLength = 120

// ValidateChannelSlug validates the channel slug charset and length. The
// restricted alphabet keeps slug-to-hash derivation unambiguous.
func ValidateChannelSlug(slug string) error {
	if !channelSlugRegex.MatchString(slug) {
		return fmt.Errorf("slug must be 1-20 characters and contain only lowercase letters and hyphens")
	}
	return nil
}

// ValidateChannelName validates the display name: non-empty, bounded.
func ValidateChannelName(name string) error {
	if name == "" {
		return fmt.Errorf("name must not be empty")
	}
	if len(name) > MaxChannelNameLength {
		return fmt.Errorf("name must be at most %d bytes", MaxChannelNameLength)
	}
	return nil
}

// ValidateMessageContent validates message text. Length is unbounded here;
// the per-byte fee is the economic limiter.
func ValidateMessageContent(content string) error {
	if content == "" {
		return fmt.Errorf("content must not be empty")
	}
	return nil
}
