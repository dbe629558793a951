package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"
)

const redacted = "[REDACTED]"

// Substrings of a lowercased key whose values never reach the log.
var secretKeyParts = []string{
	"token", "authorization", "password", "secret", "cookie",
	"api_key", "apikey", "email", "refresh",
}

// Keys whose values are replaced by a salted, truncated sha256.
var hashedKeyParts = []string{"user_id", "owner_id"}

type redactor struct {
	enabled bool
	salt    string
}

var loadRedactor = sync.OnceValue(func() redactor {
	r := redactor{enabled: true, salt: strings.TrimSpace(os.Getenv("LOG_HASH_SALT"))}
	switch strings.ToLower(strings.TrimSpace(os.Getenv("LOG_REDACTION_ENABLED"))) {
	case "0", "false", "no", "off":
		r.enabled = false
	}
	return r
})

func sanitizeKVs(kv []interface{}) []interface{} {
	return loadRedactor().fields(kv)
}

func (r redactor) fields(kv []interface{}) []interface{} {
	if !r.enabled || len(kv) == 0 {
		return kv
	}
	out := make([]interface{}, 0, len(kv))
	for i := 0; i+1 < len(kv); i += 2 {
		key := stringify(kv[i])
		out = append(out, key, r.value(strings.ToLower(strings.TrimSpace(key)), kv[i+1]))
	}
	if len(kv)%2 == 1 {
		out = append(out, kv[len(kv)-1])
	}
	return out
}

func (r redactor) value(key string, val interface{}) interface{} {
	switch {
	case key != "" && containsAny(key, secretKeyParts):
		return redacted
	case key != "" && containsAny(key, hashedKeyParts):
		return r.hash(val)
	}
	switch v := val.(type) {
	case map[string]interface{}:
		if v == nil {
			return v
		}
		m := make(map[string]interface{}, len(v))
		for k, inner := range v {
			m[k] = r.value(strings.ToLower(strings.TrimSpace(k)), inner)
		}
		return m
	case []interface{}:
		if v == nil {
			return v
		}
		s := make([]interface{}, len(v))
		for i, inner := range v {
			s[i] = r.value("", inner)
		}
		return s
	case string:
		if isJWT(v) {
			return redacted
		}
	}
	return val
}

func (r redactor) hash(val interface{}) string {
	raw := stringify(val)
	if raw == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(r.salt + raw))
	return "hash:" + hex.EncodeToString(sum[:])[:12]
}

func containsAny(key string, parts []string) bool {
	for _, p := range parts {
		if strings.Contains(key, p) {
			return true
		}
	}
	return false
}

func isJWT(s string) bool {
	parts := strings.Split(s, ".")
	return len(parts) == 3 && len(parts[0]) > 10 && len(parts[1]) > 10
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
