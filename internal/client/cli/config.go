package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"
	configDirName  = ".spacekeeper"
	envPrefix      = "SPACEKEEPER"

	cfgKeyServer       = "server"
	cfgKeyToken        = "token"
	cfgKeyRefreshToken = "refresh_token"
	cfgKeyOutput       = "output"

	defaultServer = "http://localhost:8080"
	defaultOutput = outputText
)

// resolveConfigDir picks the config directory: --config-dir flag, then
// SPACEKEEPER_CONFIG_DIR, then ~/.spacekeeper.
func resolveConfigDir(flagDir string) (string, error) {
	if dir := strings.TrimSpace(flagDir); dir != "" {
		return dir, nil
	}
	if dir := strings.TrimSpace(os.Getenv(envPrefix + "_CONFIG_DIR")); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, configDirName), nil
}

// loadConfig reads config.yaml from dir and overlays SPACEKEEPER_* env vars.
// A missing file is not an error.
func loadConfig(dir string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyServer, defaultServer)
	v.SetDefault(cfgKeyOutput, defaultOutput)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.SetConfigPermissions(0o600)
	v.AddConfigPath(dir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// saveSession stores the token pair in dir/config.yaml, keeping the rest of
// the file. Empty tokens log the CLI out. Env overrides are not persisted.
func saveSession(dir, token, refreshToken string) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("ensure config dir: %w", err)
	}
	v := viper.New()
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.SetConfigPermissions(0o600)
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	v.Set(cfgKeyToken, token)
	v.Set(cfgKeyRefreshToken, refreshToken)
	if err := v.WriteConfigAs(filepath.Join(dir, configFileExt)); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
