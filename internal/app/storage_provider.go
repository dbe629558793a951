package app

import (
	"errors"
	"fmt"

	"github.com/yungbote/spacekeeper-backend/internal/platform/gcp"
	"github.com/yungbote/spacekeeper-backend/internal/platform/logger"
)

var newBucketService = gcp.NewBucketService

type StorageProviderBootstrapErrorCode string

const (
	StorageProviderBootstrapErrorInvalidMode         StorageProviderBootstrapErrorCode = "invalid_mode"
	StorageProviderBootstrapErrorMissingEmulatorHost StorageProviderBootstrapErrorCode = "missing_emulator_host"
	StorageProviderBootstrapErrorInvalidEmulatorHost StorageProviderBootstrapErrorCode = "invalid_emulator_host"
	StorageProviderBootstrapErrorMissingLocalDir     StorageProviderBootstrapErrorCode = "missing_local_dir"
	StorageProviderBootstrapErrorConnectFailed       StorageProviderBootstrapErrorCode = "connect_failed"
)

type StorageProviderBootstrapError struct {
	Code         StorageProviderBootstrapErrorCode
	Mode         string
	EmulatorHost string
	Cause        error
}

func (e *StorageProviderBootstrapError) Error() string {
	if e == nil {
		return "object storage bootstrap failed"
	}
	return fmt.Sprintf(
		"object storage bootstrap failed (code=%s mode=%q emulator_host=%q): %v",
		e.Code,
		e.Mode,
		e.EmulatorHost,
		e.Cause,
	)
}

func (e *StorageProviderBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// resolveBucketService picks the object storage backend from cfg and
// classifies any failure so startup logs carry a stable error code.
func resolveBucketService(log *logger.Logger, cfg Config) (gcp.BucketService, gcp.ObjectStorageConfig, error) {
	storageCfg, err := gcp.ResolveObjectStorageConfig(cfg.ObjectStorageMode, cfg.StorageEmulatorHost, cfg.LocalStorageDir)
	if err != nil {
		classified := classifyStorageProviderBootstrapError(storageCfg, cfg.ObjectStorageMode, err)
		log.Error(
			"Object storage provider selection failed",
			"mode", cfg.ObjectStorageMode,
			"emulator_host", storageCfg.EmulatorHost,
			"error_code", storageProviderBootstrapErrorCode(classified),
			"error", classified,
		)
		return nil, storageCfg, classified
	}

	log.Info(
		"Selecting object storage provider",
		"mode", storageCfg.Mode,
		"mode_source", storageCfg.ModeSource(),
		"compatibility_fallback", storageCfg.CompatibilityFallback,
		"emulator_host", storageCfg.EmulatorHost,
		"local_dir", storageCfg.LocalDir,
	)

	bucket, err := newBucketService(log, cfg.Buckets(storageCfg))
	if err != nil {
		classified := classifyStorageProviderBootstrapError(storageCfg, string(storageCfg.Mode), err)
		log.Error(
			"Object storage provider bootstrap failed",
			"mode", storageCfg.Mode,
			"mode_source", storageCfg.ModeSource(),
			"emulator_host", storageCfg.EmulatorHost,
			"error_code", storageProviderBootstrapErrorCode(classified),
			"error", classified,
		)
		return nil, storageCfg, classified
	}
	return bucket, storageCfg, nil
}

func classifyStorageProviderBootstrapError(storageCfg gcp.ObjectStorageConfig, rawMode string, err error) error {
	code := StorageProviderBootstrapErrorConnectFailed
	var cfgErr *gcp.ObjectStorageConfigError
	if errors.As(err, &cfgErr) {
		switch cfgErr.Code {
		case gcp.ObjectStorageConfigErrorInvalidMode:
			code = StorageProviderBootstrapErrorInvalidMode
		case gcp.ObjectStorageConfigErrorMissingEmulatorHost:
			code = StorageProviderBootstrapErrorMissingEmulatorHost
		case gcp.ObjectStorageConfigErrorInvalidEmulatorHost:
			code = StorageProviderBootstrapErrorInvalidEmulatorHost
		case gcp.ObjectStorageConfigErrorMissingLocalDir:
			code = StorageProviderBootstrapErrorMissingLocalDir
		}
	}
	return &StorageProviderBootstrapError{
		Code:         code,
		Mode:         rawMode,
		EmulatorHost: storageCfg.EmulatorHost,
		Cause:        err,
	}
}

func storageProviderBootstrapErrorCode(err error) StorageProviderBootstrapErrorCode {
	var bootstrapErr *StorageProviderBootstrapError
	if errors.As(err, &bootstrapErr) && bootstrapErr.Code != "" {
		return bootstrapErr.Code
	}
	return StorageProviderBootstrapErrorConnectFailed
}
