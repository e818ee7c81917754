package account

import (
	"regexp"
	"strings"

	"github.com/mcnijman/go-emailaddress"
)

// InstitutionalDomain is the only email domain accepted at registration.
const InstitutionalDomain = "colorado.edu"

var localPartPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+$`)

// IsInstitutionalEmail reports whether email is localpart@colorado.edu with a
// plain local part. The domain match is exact.
func IsInstitutionalEmail(email string) bool {
	if email == "" || email != strings.TrimSpace(email) || strings.Count(email, "@") != 1 {
		return false
	}
	addr, err := emailaddress.Parse(email)
	if err != nil {
		return false
	}
	return addr.Domain == InstitutionalDomain && localPartPattern.MatchString(addr.LocalPart)
}
