package validators

import (
	"net"
	"strings"
)

// Throwaway providers refused at signup. DNS would resolve these fine, so
// the blocklist has to run before the lookup.
var disposableDomains = map[string]struct{}{
	"mailinator.com":    {},
	"guerrillamail.com": {},
	"10minutemail.com":  {},
	"yopmail.com":       {},
	"sharklasers.com":   {},
}

// EmailDeliverable reports whether an address is worth creating an account
// for: well-formed, not a known throwaway provider, and on a domain that
// publishes MX records or at least resolves.
func EmailDeliverable(email string) bool {
	domain, ok := emailDomain(email)
	if !ok {
		return false
	}
	if _, blocked := disposableDomains[domain]; blocked {
		return false
	}

	if mx, err := net.LookupMX(domain); err == nil && len(mx) > 0 {
		return true
	}
	ips, err := net.LookupIP(domain)
	return err == nil && len(ips) > 0
}

func emailDomain(email string) (string, bool) {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return "", false
	}
	return strings.ToLower(email[at+1:]), true
}
