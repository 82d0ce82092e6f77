package normalize

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var mailtoPrefix = regexp.MustCompile(`(?i)^mailto:\s*`)

// Email validates an email address, decoding the hex obfuscation some
// sites (cloudflare "email-protection" links) use.
func Email(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if i := strings.LastIndex(s, "#"); i >= 0 && strings.Contains(s[:i], "email-protection") {
		s = s[i+1:]
	}
	s = mailtoPrefix.ReplaceAllString(s, "")
	if i := strings.IndexAny(s, "?;"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)

	if !strings.Contains(s, "@") && isObfuscatedEmail(s) {
		decoded, err := DecodeEmail(s)
		if err != nil {
			return "", false
		}
		s = decoded
	}

	if !validEmail(s) {
		return "", false
	}
	return s, true
}

func validEmail(s string) bool {
	if strings.Count(s, "@") != 1 {
		return false
	}
	local, domain, _ := strings.Cut(s, "@")
	if local == "" || domain == "" {
		return false
	}
	for _, r := range s {
		if unicode.IsSpace(r) || !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}

// key byte plus at least "a@b"
const minObfuscatedLen = 8

func isObfuscatedEmail(s string) bool {
	if len(s) < minObfuscatedLen || len(s)%2 != 0 {
		return false
	}
	for _, c := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF", c) {
			return false
		}
	}
	return true
}

// DecodeEmail reverses the obfuscation: the first byte is the key, every
// following byte is a character XORed with it.
func DecodeEmail(encoded string) (string, error) {
	bs, err := hex.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode obfuscated email: %w", err)
	}
	if len(bs) < 2 {
		return "", fmt.Errorf("decode obfuscated email: %q is too short", encoded)
	}
	key := bs[0]
	out := make([]byte, len(bs)-1)
	for i, b := range bs[1:] {
		out[i] = b ^ key
	}
	return string(out), nil
}

func EncodeEmail(email string, key byte) string {
	bs := make([]byte, 0, len(email)+1)
	bs = append(bs, key)
	for i := 0; i < len(email); i++ {
		bs = append(bs, email[i]^key)
	}
	return hex.EncodeToString(bs)
}

type AmbiguousEmailError struct {
	Email  string
	First  string
	Second string
}

func (e *AmbiguousEmailError) Error() string {
	return fmt.Sprintf("email %s matches multiple legislators: %s and %s", e.Email, e.First, e.Second)
}

// EmailClaims remembers which legislator an address was matched to within
// one run, so an address guessed for two people is caught.
type EmailClaims map[string]string

func (c EmailClaims) Claim(email, who string) error {
	key := strings.ToLower(email)
	if owner, ok := c[key]; ok && owner != who {
		return &AmbiguousEmailError{Email: email, First: owner, Second: who}
	}
	c[key] = who
	return nil
}
