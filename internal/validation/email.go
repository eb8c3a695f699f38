package validation

import "regexp"

// Syntactic check only: one "@" with a dotted domain suffix.
var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}
