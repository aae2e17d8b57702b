package validation

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// LinkValidator checks tool links and remote corpus sources before they are
// shown or fetched.
type LinkValidator struct {
	// AllowLocalhost permits links to localhost, e.g. self-hosted dashboards.
	AllowLocalhost bool
	// AllowPrivateIPs permits links into private address ranges.
	AllowPrivateIPs bool
	// RequireScheme rejects links without an explicit http/https scheme
	// instead of defaulting them to https.
	RequireScheme bool
	// MaxLength is the maximum allowed URL length.
	MaxLength int
}

// NewLinkValidator returns the validator used for directory entries. Tool
// directories routinely list intranet services, so local and private hosts
// are accepted.
func NewLinkValidator() *LinkValidator {
	return &LinkValidator{
		AllowLocalhost:  true,
		AllowPrivateIPs: true,
		RequireScheme:   false,
		MaxLength:       2048,
	}
}

// NewSourceValidator returns the validator used for remote corpus sources.
func NewSourceValidator() *LinkValidator {
	return &LinkValidator{
		AllowLocalhost:  true,
		AllowPrivateIPs: false,
		RequireScheme:   true,
		MaxLength:       2048,
	}
}

// ValidateAndNormalize validates a link and returns the normalized version.
func (v *LinkValidator) ValidateAndNormalize(input string) (string, error) {
	input = strings.TrimSpace(input)

	if input == "" {
		return "", fmt.Errorf("URL cannot be empty")
	}
	if v.MaxLength > 0 && len(input) > v.MaxLength {
		return "", fmt.Errorf("URL too long (max %d characters)", v.MaxLength)
	}
	if strings.ContainsAny(input, "<>\"'`") {
		return "", fmt.Errorf("URL contains invalid characters")
	}

	if !HasHTTPScheme(input) {
		if v.RequireScheme {
			return "", fmt.Errorf("URL must use http or https protocol")
		}
		if strings.Contains(input, "://") {
			return "", fmt.Errorf("URL must use http or https protocol")
		}
		input = "https://" + input
	}

	parsedURL, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return "", fmt.Errorf("URL must use http or https protocol")
	}
	if parsedURL.Host == "" {
		return "", fmt.Errorf("URL must have a valid hostname")
	}
	if err := v.validateHost(parsedURL.Host); err != nil {
		return "", err
	}
	if strings.Contains(parsedURL.RawQuery, "<script") || strings.Contains(strings.ToLower(parsedURL.RawQuery), "javascript:") {
		return "", fmt.Errorf("suspicious query parameters detected")
	}

	return parsedURL.String(), nil
}

// HasHTTPScheme reports whether s starts with http:// or https://.
func HasHTTPScheme(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func (v *LinkValidator) validateHost(host string) error {
	hostname := host
	if strings.Contains(host, ":") && !strings.HasSuffix(host, "]") {
		var err error
		hostname, _, err = net.SplitHostPort(host)
		if err != nil {
			return fmt.Errorf("invalid host format: %w", err)
		}
	}
	hostname = strings.Trim(hostname, "[]")

	if !v.AllowLocalhost && isLocalhost(hostname) {
		return fmt.Errorf("localhost URLs are not permitted")
	}
	if !v.AllowPrivateIPs {
		if ip := net.ParseIP(hostname); ip != nil && isPrivateIP(ip) && !isLocalhost(hostname) {
			return fmt.Errorf("private IP addresses are not permitted")
		}
	}
	if hostname == "0.0.0.0" || hostname == "255.255.255.255" {
		return fmt.Errorf("unroutable hostname %q", hostname)
	}
	return nil
}

func isLocalhost(hostname string) bool {
	return hostname == "localhost" ||
		hostname == "127.0.0.1" ||
		hostname == "::1" ||
		strings.HasSuffix(hostname, ".localhost")
}

var privateBlocks = func() []*net.IPNet {
	cidrs := []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"169.254.0.0/16",
		"127.0.0.0/8",
		"fc00::/7",
		"fe80::/10",
	}
	blocks := make([]*net.IPNet, 0, len(cidrs))
	for _, cidr := range cidrs {
		_, block, err := net.ParseCIDR(cidr)
		if err == nil {
			blocks = append(blocks, block)
		}
	}
	return blocks
}()

func isPrivateIP(ip net.IP) bool {
	for _, block := range privateBlocks {
		if block.Contains(ip) {
			return true
		}
	}
	return false
}
