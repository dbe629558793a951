package gcp

import (
	"fmt"
	"net/url"
	"strings"
)

// ObjectStorageMode selects where space, item and avatar images live.
type ObjectStorageMode string

const (
	ObjectStorageModeGCS         ObjectStorageMode = "gcs"
	ObjectStorageModeGCSEmulator ObjectStorageMode = "gcs_emulator"
	ObjectStorageModeLocal       ObjectStorageMode = "local"
)

var objectStorageModes = []ObjectStorageMode{ObjectStorageModeGCS, ObjectStorageModeGCSEmulator, ObjectStorageModeLocal}

type ObjectStorageConfig struct {
	Mode         ObjectStorageMode
	EmulatorHost string
	LocalDir     string
	// CompatibilityFallback is set when the emulator was chosen only because
	// STORAGE_EMULATOR_HOST was present.
	CompatibilityFallback bool
}

func IsSupportedObjectStorageMode(mode ObjectStorageMode) bool {
	for _, m := range objectStorageModes {
		if m == mode {
			return true
		}
	}
	return false
}

func (cfg ObjectStorageConfig) IsEmulatorMode() bool { return cfg.Mode == ObjectStorageModeGCSEmulator }
func (cfg ObjectStorageConfig) IsLocalMode() bool    { return cfg.Mode == ObjectStorageModeLocal }

func (cfg ObjectStorageConfig) ModeSource() string {
	if cfg.CompatibilityFallback {
		return "compatibility_fallback"
	}
	return "explicit_or_default"
}

type ObjectStorageConfigErrorCode string

const (
	ObjectStorageConfigErrorInvalidMode         ObjectStorageConfigErrorCode = "invalid_mode"
	ObjectStorageConfigErrorMissingEmulatorHost ObjectStorageConfigErrorCode = "missing_emulator_host"
	ObjectStorageConfigErrorInvalidEmulatorHost ObjectStorageConfigErrorCode = "invalid_emulator_host"
	ObjectStorageConfigErrorMissingLocalDir     ObjectStorageConfigErrorCode = "missing_local_dir"
)

type ObjectStorageConfigError struct {
	Code         ObjectStorageConfigErrorCode
	Mode         string
	EmulatorHost string
	Cause        error
}

func (e *ObjectStorageConfigError) Error() string {
	if e == nil {
		return "invalid object storage config"
	}
	switch e.Code {
	case ObjectStorageConfigErrorInvalidMode:
		return fmt.Sprintf("invalid OBJECT_STORAGE_MODE=%q (allowed: %v)", e.Mode, objectStorageModes)
	case ObjectStorageConfigErrorMissingEmulatorHost:
		return fmt.Sprintf("OBJECT_STORAGE_MODE=%q requires STORAGE_EMULATOR_HOST", ObjectStorageModeGCSEmulator)
	case ObjectStorageConfigErrorInvalidEmulatorHost:
		return fmt.Sprintf("invalid STORAGE_EMULATOR_HOST=%q; want an absolute URL such as http://fake-gcs:4443", e.EmulatorHost)
	case ObjectStorageConfigErrorMissingLocalDir:
		return fmt.Sprintf("OBJECT_STORAGE_MODE=%q requires LOCAL_STORAGE_DIR", ObjectStorageModeLocal)
	}
	return "invalid object storage config"
}

func (e *ObjectStorageConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// ResolveObjectStorageConfig turns the raw environment values into a
// validated config. An empty mode means gcs, or the emulator when an
// emulator host is set.
func ResolveObjectStorageConfig(rawMode, emulatorHost, localDir string) (ObjectStorageConfig, error) {
	cfg := ObjectStorageConfig{
		Mode:         ObjectStorageMode(strings.ToLower(strings.TrimSpace(rawMode))),
		EmulatorHost: strings.TrimSpace(emulatorHost),
		LocalDir:     strings.TrimSpace(localDir),
	}
	if cfg.Mode == "" {
		cfg.Mode = ObjectStorageModeGCS
		if cfg.EmulatorHost != "" {
			cfg.Mode = ObjectStorageModeGCSEmulator
			cfg.CompatibilityFallback = true
		}
	}
	if err := ValidateObjectStorageConfig(cfg); err != nil {
		if cfgErr, ok := err.(*ObjectStorageConfigError); ok && cfgErr.Code == ObjectStorageConfigErrorInvalidMode {
			cfgErr.Mode = strings.TrimSpace(rawMode)
		}
		return cfg, err
	}
	return cfg, nil
}

func ValidateObjectStorageConfig(cfg ObjectStorageConfig) error {
	fail := func(code ObjectStorageConfigErrorCode, cause error) error {
		return &ObjectStorageConfigError{Code: code, Mode: string(cfg.Mode), EmulatorHost: cfg.EmulatorHost, Cause: cause}
	}
	switch cfg.Mode {
	case ObjectStorageModeGCS:
		return nil
	case ObjectStorageModeLocal:
		if cfg.LocalDir == "" {
			return fail(ObjectStorageConfigErrorMissingLocalDir, nil)
		}
		return nil
	case ObjectStorageModeGCSEmulator:
		if cfg.EmulatorHost == "" {
			return fail(ObjectStorageConfigErrorMissingEmulatorHost, nil)
		}
		u, err := url.Parse(cfg.EmulatorHost)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fail(ObjectStorageConfigErrorInvalidEmulatorHost, err)
		}
		return nil
	}
	return fail(ObjectStorageConfigErrorInvalidMode, nil)
}
