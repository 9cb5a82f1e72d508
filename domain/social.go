package domain

import "fmt"

// SocialProvider is the closed set of external identity providers. Adding a
// provider means adding a constant here and registering its OAuth metadata in
// the provider registry; handlers never branch on raw strings.
type SocialProvider string

const (
	SocialGoogle SocialProvider = "google"
)

// ParseSocialProvider maps a request path segment to a known provider.
func ParseSocialProvider(name string) (SocialProvider, error) {
	switch SocialProvider(name) {
	case SocialGoogle:
		return SocialGoogle, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownProvider, name)
}

func (p SocialProvider) String() string { return string(p) }
