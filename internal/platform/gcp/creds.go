package gcp

import (
	"strings"

	"google.golang.org/api/option"
)

// ClientOptionsFromCredentials accepts either inline service-account JSON or
// a path to a credentials file. Empty input means application default
// credentials.
func ClientOptionsFromCredentials(creds string) []option.ClientOption {
	creds = strings.TrimSpace(creds)
	if creds == "" {
		return nil
	}
	if strings.HasPrefix(creds, "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	}
	return []option.ClientOption{option.WithCredentialsFile(creds)}
}
