package config

import (
	"net/url"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

const redacted = "xxxxx"

// Dump renders the effective configuration as YAML, in the same layout
// config.yaml uses. The password in store.database_url is masked.
func Dump(c *Config) ([]byte, error) {
	out := *c
	out.Store.DatabaseURL = redactURL(c.Store.DatabaseURL)

	data, err := yaml.Marshal(&out)
	if err != nil {
		return nil, eris.Wrap(err, "config: marshal yaml")
	}
	return data, nil
}

func redactURL(raw string) string {
	if raw == "" {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return redacted
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), redacted)
	}
	return u.String()
}
