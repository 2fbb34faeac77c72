package security

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// PasswordUserAttributes are the account fields a password must not resemble.
type PasswordUserAttributes struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
}

// PasswordValidator inspects a candidate password and returns a message when it is rejected.
type PasswordValidator interface {
	Validate(password string, attrs PasswordUserAttributes) (string, bool)
}

// PasswordValidatorFunc adapts a plain function to PasswordValidator.
type PasswordValidatorFunc func(password string, attrs PasswordUserAttributes) (string, bool)

func (f PasswordValidatorFunc) Validate(password string, attrs PasswordUserAttributes) (string, bool) {
	return f(password, attrs)
}

// PasswordPolicy runs every validator and reports all rejections in order.
type PasswordPolicy []PasswordValidator

func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		UserAttributeSimilarity{MaxSimilarity: 0.7},
		MinimumLength{Min: 8},
		CommonPassword{},
		NumericPassword{},
	}
}

func (p PasswordPolicy) Check(password string, attrs PasswordUserAttributes) []string {
	var problems []string
	for _, v := range p {
		if msg, failed := v.Validate(password, attrs); failed {
			problems = append(problems, msg)
		}
	}
	return problems
}

type MinimumLength struct {
	Min int
}

func (m MinimumLength) Validate(password string, _ PasswordUserAttributes) (string, bool) {
	if len([]rune(password)) >= m.Min {
		return "", false
	}
	return fmt.Sprintf("This password is too short. It must contain at least %d characters.", m.Min), true
}

var nonWord = regexp.MustCompile(`\W+`)

// UserAttributeSimilarity rejects passwords whose character overlap with a user attribute,
// or any word of it, reaches MaxSimilarity.
type UserAttributeSimilarity struct {
	MaxSimilarity float64
}

func (u UserAttributeSimilarity) Validate(password string, attrs PasswordUserAttributes) (string, bool) {
	pw := strings.ToLower(password)
	candidates := []struct {
		name  string
		value string
	}{
		{"username", attrs.Username},
		{"email address", attrs.Email},
		{"first name", attrs.FirstName},
		{"last name", attrs.LastName},
	}

	for _, c := range candidates {
		if c.value == "" {
			continue
		}
		lowered := strings.ToLower(c.value)
		parts := append(nonWord.Split(lowered, -1), lowered)
		for _, part := range parts {
			if part == "" || exceedsLengthRatio(pw, u.MaxSimilarity, part) {
				continue
			}
			if quickRatio(pw, part) >= u.MaxSimilarity {
				return fmt.Sprintf("The password is too similar to the %s.", c.name), true
			}
		}
	}
	return "", false
}

// exceedsLengthRatio skips attributes far too short relative to the password to ever reach the threshold.
func exceedsLengthRatio(password string, maxSimilarity float64, value string) bool {
	pwLen := len([]rune(password))
	valueLen := len([]rune(value))
	bound := maxSimilarity / 2 * float64(pwLen)
	return pwLen >= 10*valueLen && float64(valueLen) < bound
}

// quickRatio is 2*M/T where M counts characters shared as a multiset and T is the combined length.
func quickRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	avail := make(map[rune]int, len(rb))
	for _, r := range rb {
		avail[r]++
	}
	matches := 0
	for _, r := range ra {
		if avail[r] > 0 {
			avail[r]--
			matches++
		}
	}
	return 2 * float64(matches) / float64(total)
}

//go:embed common_passwords.txt
var commonPasswordList string

var commonPasswords = func() map[string]struct{} {
	set := make(map[string]struct{})
	for _, pw := range strings.Fields(commonPasswordList) {
		set[pw] = struct{}{}
	}
	return set
}()

type CommonPassword struct{}

func (CommonPassword) Validate(password string, _ PasswordUserAttributes) (string, bool) {
	if _, ok := commonPasswords[strings.ToLower(strings.TrimSpace(password))]; ok {
		return "This password is too common.", true
	}
	return "", false
}

type NumericPassword struct{}

func (NumericPassword) Validate(password string, _ PasswordUserAttributes) (string, bool) {
	if password == "" {
		return "", false
	}
	for _, r := range password {
		if !unicode.IsDigit(r) {
			return "", false
		}
	}
	return "This password is entirely numeric.", true
}
