package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/AutomateThePlanet/atom-evaluate/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

var configEnvVars = []string{
	"ATOM_CONFIG",
	"ATOM_LOG_LEVEL",
	"ATOM_LOG_FORMAT",
	"ATOM_ADDR",
	"ATOM_STATE_PATH",
	"ATOM_PERSIST_MODE",
	"ATOM_SAVE_QUEUE_SIZE",
	"ATOM_DISAGREEMENT_THRESHOLD",
	"ATOM_MAX_IMPORT_BYTES",
}

func clearConfigEnvVars() {
	for _, name := range configEnvVars {
		_ = os.Unsetenv(name)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "atom.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New(ctx))
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("ATOM_ADDR", ":8080")
			_ = os.Setenv("ATOM_STATE_PATH", "/var/lib/atom/state.json")
			_ = os.Setenv("ATOM_PERSIST_MODE", "SYNC")
			_ = os.Setenv("ATOM_SAVE_QUEUE_SIZE", "4")
			_ = os.Setenv("ATOM_DISAGREEMENT_THRESHOLD", "0.5")
			_ = os.Setenv("ATOM_LOG_FORMAT", "json")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.StatePath, convey.ShouldEqual, "/var/lib/atom/state.json")
				convey.So(cfg.PersistMode, convey.ShouldEqual, config.PersistSync)
				convey.So(cfg.SaveQueueSize, convey.ShouldEqual, 4)
				convey.So(cfg.DisagreementThreshold, convey.ShouldEqual, 0.5)
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			path := createTempConfigFile(t, `
addr: ":9090"
state_path: "from-file.json"
max_import_bytes: 1024
`)
			_ = os.Setenv("ATOM_CONFIG", path)
			_ = os.Setenv("ATOM_ADDR", ":7070")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.StatePath, convey.ShouldEqual, "from-file.json")
				convey.So(cfg.MaxImportBytes, convey.ShouldEqual, int64(1024))
				convey.So(cfg.SaveQueueSize, convey.ShouldEqual, 16)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			_ = os.Setenv("ATOM_CONFIG", createTempConfigFile(t, `invalid: yaml: content: [`))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("ATOM_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("ATOM_ADDR", "")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("ATOM_SAVE_QUEUE_SIZE", "not_a_number")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}
