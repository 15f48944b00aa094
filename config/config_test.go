package config

import (
	"testing"
	"time"

	"github.com/freekieb7/pebble/filesystem"
	"github.com/freekieb7/pebble/test"
)

func env(values map[string]string) func(string) string {
	return func(key string) string {
		return values[key]
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil, env(nil))
	test.AssertNoError(t, err)

	test.AssertEqual(t, DefaultAddr, cfg.Addr)
	test.AssertEqual(t, DefaultBasePath, cfg.BasePath)
	test.AssertEqual(t, DefaultServiceName, cfg.ServiceName)
	test.AssertEqual(t, time.Duration(0), cfg.ReadTimeout)
	test.AssertEqual(t, 0, cfg.MaxConns)
	test.AssertEqual(t, "", cfg.OTLPEndpoint)
}

func TestLoadEnvThenFlags(t *testing.T) {
	getenv := env(map[string]string{
		"PEBBLE_ADDR":          "0.0.0.0:8080",
		"PEBBLE_READ_TIMEOUT":  "5s",
		"PEBBLE_MAX_CONNS":     "64",
		"PEBBLE_MAX_BODY_SIZE": "1024",
		"OTEL_SERVICE_NAME":    "from-env",
	})

	cfg, err := Load([]string{"-addr", ":7000", "-max-conns", "8"}, getenv)
	test.AssertNoError(t, err)

	test.AssertEqual(t, ":7000", cfg.Addr)
	test.AssertEqual(t, 5*time.Second, cfg.ReadTimeout)
	test.AssertEqual(t, 8, cfg.MaxConns)
	test.AssertEqual(t, 1024, cfg.MaxBodySize)
	test.AssertEqual(t, "from-env", cfg.ServiceName)
}

func TestLoadPositionalBasePath(t *testing.T) {
	cfg, err := Load([]string{"-base-path", "/ignored", "/srv/www"}, env(nil))
	test.AssertNoError(t, err)

	test.AssertEqual(t, "/srv/www", cfg.BasePath)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	_, err := Load(nil, env(map[string]string{"PEBBLE_READ_TIMEOUT": "soon"}))
	test.AssertErrorIs(t, err, ErrInvalidConfig)

	_, err = Load([]string{"-max-conns", "-1"}, env(nil))
	test.AssertErrorIs(t, err, ErrInvalidConfig)

	_, err = Load([]string{"-max-body-size", "-1"}, env(nil))
	test.AssertErrorIs(t, err, ErrInvalidConfig)

	_, err = Load([]string{"-unknown"}, env(nil))
	test.AssertErrorIs(t, err, ErrInvalidConfig)
}

func TestCheckBasePath(t *testing.T) {
	fs := filesystem.NewLocalFileSystem()

	cfg := Config{BasePath: t.TempDir()}
	test.AssertNoError(t, cfg.CheckBasePath(fs))

	cfg.BasePath = cfg.BasePath + "/missing"
	test.AssertErrorIs(t, cfg.CheckBasePath(fs), ErrInvalidConfig)
}
