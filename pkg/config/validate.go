package config

import (
	"github.com/arthur-debert/sharedpkg/pkg/errors"
	"github.com/knadh/koanf/v2"
)

var (
	stringKeys = []string{
		"vendor-dir",
		"bin-dir",
		"shared.symlink-dir",
		"shared.site-marker",
		"shared.build-link-prefix",
		"shared.shared-type",
	}
	boolKeys = []string{
		"shared.symlink-enabled",
		"shared.strict-templates",
	}
	listKeys = []string{
		"shared.package-list",
		"shared.copy-types",
		"shared.no-copy-binaries",
	}
	tableKeys = []string{
		"shared.build-dir",
		"shared.version-dir",
	}
)

// validate checks the type of every recognized key. Values are never
// coerced: a quoted "true" for a boolean is rejected.
func validate(k *koanf.Koanf) error {
	for _, key := range stringKeys {
		if v := k.Get(key); v != nil {
			if _, ok := v.(string); !ok {
				return invalid(key, "should be a string", v)
			}
		}
	}

	for _, key := range boolKeys {
		if v := k.Get(key); v != nil {
			if _, ok := v.(bool); !ok {
				return invalid(key, "should be a boolean", v)
			}
		}
	}

	for _, key := range listKeys {
		if v := k.Get(key); v != nil {
			if !isStringList(v) {
				return invalid(key, "should be an array of strings", v)
			}
		}
	}

	for _, key := range tableKeys {
		if v := k.Get(key); v != nil {
			table, ok := v.(map[string]interface{})
			if !ok {
				return invalid(key, "should be a table of mode = path entries", v)
			}
			for mode, path := range table {
				if _, ok := path.(string); !ok {
					return invalid(key+"."+mode, "should be a string", path)
				}
			}
		}
	}

	return validateInstallerPaths(k.Get("installer-paths"))
}

func validateInstallerPaths(v interface{}) error {
	const key = "installer-paths"
	if v == nil {
		return nil
	}

	rules, ok := v.([]interface{})
	if !ok {
		if _, isMap := v.(map[string]interface{}); isMap {
			return invalid(key, "should be an array of tables ([[installer-paths]]) so rule order is kept", v)
		}
		return invalid(key, "should be an array of tables", v)
	}

	for i, raw := range rules {
		rule, ok := raw.(map[string]interface{})
		if !ok {
			return invalid(key, "entries should be tables with path and match", raw).WithDetail("index", i)
		}
		path, ok := rule["path"].(string)
		if !ok || path == "" {
			return invalid(key, "entries need a non-empty string path", rule["path"]).WithDetail("index", i)
		}
		if !isStringList(rule["match"]) {
			return invalid(key, "entries need match as an array of strings", rule["match"]).WithDetail("index", i)
		}
	}
	return nil
}

func isStringList(v interface{}) bool {
	switch list := v.(type) {
	case []string:
		return true
	case []interface{}:
		for _, item := range list {
			if _, ok := item.(string); !ok {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func invalid(key, problem string, value interface{}) *errors.Error {
	return errors.Newf(errors.ErrConfigValid, "the configuration %q %s (got %T)", key, problem, value).
		WithDetail("key", key)
}
