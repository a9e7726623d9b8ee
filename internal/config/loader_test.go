package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/demandrank/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.AllowedExtensions, convey.ShouldResemble, []string{"xlsx", "xls"})
				convey.So(cfg.QueueSize, convey.ShouldEqual, 64)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("DEMANDRANK_ADDR", ":9000")
			_ = os.Setenv("DEMANDRANK_UPLOAD_DIR", "/var/tmp/demandrank")
			_ = os.Setenv("DEMANDRANK_QUEUE_SIZE", "8")
			_ = os.Setenv("DEMANDRANK_WORKER_COUNT", "2")
			_ = os.Setenv("DEMANDRANK_STRICT_COV_NORMALIZATION", "true")
			_ = os.Setenv("DEMANDRANK_ALLOWED_EXTENSIONS", "XLSX, .csv")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9000")
				convey.So(cfg.UploadDir, convey.ShouldEqual, "/var/tmp/demandrank")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 8)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 2)
				convey.So(cfg.StrictCoVNormalization, convey.ShouldBeTrue)
				convey.So(cfg.AllowedExtensions, convey.ShouldResemble, []string{"xlsx", "csv"})
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			tmpFile := createTempConfigFile(`
addr: ":9090"
log_format: json
upload_dir: /srv/uploads
allowed_extensions: [xlsx]
max_upload_bytes: 1048576
sheet_name: Orders
job_timeout_ms: 5000
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("DEMANDRANK_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from the file and keep other defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.UploadDir, convey.ShouldEqual, "/srv/uploads")
				convey.So(cfg.AllowedExtensions, convey.ShouldResemble, []string{"xlsx"})
				convey.So(cfg.MaxUploadBytes, convey.ShouldEqual, 1048576)
				convey.So(cfg.SheetName, convey.ShouldEqual, "Orders")
				convey.So(cfg.JobTimeoutMS, convey.ShouldEqual, 5000)
				convey.So(cfg.QueueSize, convey.ShouldEqual, 64)
			})
		})

		convey.Convey("When both file and environment set the same key", func() {
			tmpFile := createTempConfigFile("addr: \":9090\"\nworker_count: 3\n")
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("DEMANDRANK_CONFIG", tmpFile)
			_ = os.Setenv("DEMANDRANK_ADDR", ":7070")

			cfg, err := config.Load(ctx)

			convey.Convey("Then the environment wins", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When loading an invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("DEMANDRANK_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("DEMANDRANK_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When addr is empty", func() {
			_ = os.Setenv("DEMANDRANK_ADDR", "")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
			})
		})

		convey.Convey("When a numeric variable is not a number", func() {
			_ = os.Setenv("DEMANDRANK_QUEUE_SIZE", "plenty")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestConfigValidate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New()

		convey.Convey("When the upload dir is blank", func() {
			cfg.UploadDir = "  "
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When no extension is allowed", func() {
			cfg.AllowedExtensions = nil
			convey.So(cfg.Validate(), convey.ShouldNotBeNil)
		})

		convey.Convey("When the upload limit is zero", func() {
			cfg.MaxUploadBytes = 0
			convey.So(cfg.Validate(), convey.ShouldNotBeNil)
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"DEMANDRANK_CONFIG",
		"DEMANDRANK_ADDR",
		"DEMANDRANK_UPLOAD_DIR",
		"DEMANDRANK_QUEUE_SIZE",
		"DEMANDRANK_WORKER_COUNT",
		"DEMANDRANK_STRICT_COV_NORMALIZATION",
		"DEMANDRANK_ALLOWED_EXTENSIONS",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "demandrank-config-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	if err := tmpFile.Close(); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}
