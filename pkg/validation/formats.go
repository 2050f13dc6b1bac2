package validation

import (
	"net/mail"
	"net/netip"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ().-]{5,19}$`)

// formatCheckers holds the named formats that are enforced. Other format
// names are presentation hints and always pass.
var formatCheckers = map[string]func(string) bool{
	"email": func(s string) bool {
		addr, err := mail.ParseAddress(s)
		return err == nil && addr.Address == s
	},
	"url": isURL,
	"uri": isURL,
	"uuid": func(s string) bool {
		_, err := uuid.Parse(s)
		return err == nil
	},
	"date": func(s string) bool {
		_, err := time.Parse("2006-01-02", s)
		return err == nil
	},
	"date-time": func(s string) bool {
		_, err := time.Parse(time.RFC3339, s)
		return err == nil
	},
	"ipv4": func(s string) bool {
		a, err := netip.ParseAddr(s)
		return err == nil && a.Is4()
	},
	"ipv6": func(s string) bool {
		a, err := netip.ParseAddr(s)
		return err == nil && a.Is6()
	},
	"phone": phonePattern.MatchString,
}

func isURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}

func lookupFormat(name string) (func(string) bool, bool) {
	check, ok := formatCheckers[strings.ToLower(strings.TrimSpace(name))]
	return check, ok
}
