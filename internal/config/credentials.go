package config

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// BootstrapCredentials writes the service account JSON held in the
// environment variable named by cfg.CredentialsEnv to cfg.CredentialsFile.
// It reports whether a file was written. An unset variable is not an error;
// a value that is not valid JSON is.
func BootstrapCredentials(cfg SheetsConfig) (bool, error) {
	if cfg.CredentialsEnv == "" || cfg.CredentialsFile == "" {
		return false, nil
	}
	raw, ok := os.LookupEnv(cfg.CredentialsEnv)
	if !ok || raw == "" {
		zap.L().Debug("config: no credentials in environment", zap.String("env", cfg.CredentialsEnv))
		return false, nil
	}

	if !json.Valid([]byte(raw)) {
		return false, eris.Errorf("config: %s does not hold valid JSON", cfg.CredentialsEnv)
	}

	if err := os.WriteFile(cfg.CredentialsFile, []byte(raw), 0o600); err != nil {
		return false, eris.Wrapf(err, "config: write %s", cfg.CredentialsFile)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(cfg.CredentialsFile, 0o600); err != nil {
		return false, eris.Wrapf(err, "config: chmod %s", cfg.CredentialsFile)
	}

	zap.L().Info("config: wrote credentials file", zap.String("path", cfg.CredentialsFile))
	return true, nil
}
