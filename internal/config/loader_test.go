package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/talentflow/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

var configEnvVars = []string{
	"TALENTFLOW_CONFIG",
	"TALENTFLOW_ENV_FILE",
	"TALENTFLOW_API_URL",
	"TALENTFLOW_LOG_LEVEL",
	"TALENTFLOW_REQUEST_TIMEOUT",
	"TALENTFLOW_MIN_ANSWER_LENGTH",
	"TALENTFLOW_SPEECH_API_KEY",
	"TALENTFLOW_ATS_THRESHOLD",
}

func clearConfigEnvVars() {
	for _, k := range configEnvVars {
		_ = os.Unsetenv(k)
	}
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.APIURL, convey.ShouldEqual, "http://localhost:5000/api")
				convey.So(cfg.RequestTimeout, convey.ShouldEqual, 30*time.Second)
				convey.So(cfg.MinAnswerLength, convey.ShouldEqual, 10)
				convey.So(cfg.SpeechModel, convey.ShouldEqual, "gemini-2.5-flash")
				convey.So(cfg.ATSThreshold, convey.ShouldEqual, 60.0)
				convey.So(cfg.InterviewThreshold, convey.ShouldEqual, 0.5)
				convey.So(cfg.VoiceEnabled(), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("TALENTFLOW_API_URL", "http://scorer.internal:8000/api")
			_ = os.Setenv("TALENTFLOW_REQUEST_TIMEOUT", "5s")
			_ = os.Setenv("TALENTFLOW_MIN_ANSWER_LENGTH", "20")
			_ = os.Setenv("TALENTFLOW_SPEECH_API_KEY", "sk-test")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.APIURL, convey.ShouldEqual, "http://scorer.internal:8000/api")
				convey.So(cfg.RequestTimeout, convey.ShouldEqual, 5*time.Second)
				convey.So(cfg.MinAnswerLength, convey.ShouldEqual, 20)
				convey.So(cfg.VoiceEnabled(), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			path := writeTempFile(t, "talentflow.yaml", `
api_url: "http://file.example:5000/api"
min_answer_length: 15
ats_threshold: 70
`)
			_ = os.Setenv("TALENTFLOW_CONFIG", path)
			_ = os.Setenv("TALENTFLOW_MIN_ANSWER_LENGTH", "12")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.APIURL, convey.ShouldEqual, "http://file.example:5000/api")
				convey.So(cfg.MinAnswerLength, convey.ShouldEqual, 12)
				convey.So(cfg.ATSThreshold, convey.ShouldEqual, 70.0)
				convey.So(cfg.ReportDir, convey.ShouldEqual, "reports")
			})
		})

		convey.Convey("When a dotenv file is named explicitly", func() {
			path := writeTempFile(t, "journey.env", "TALENTFLOW_LOG_LEVEL=debug\n")
			_ = os.Setenv("TALENTFLOW_ENV_FILE", path)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then its values should be applied", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
			})
		})

		convey.Convey("When the named dotenv file does not exist", func() {
			_ = os.Setenv("TALENTFLOW_ENV_FILE", "/non/existent/journey.env")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			path := writeTempFile(t, "broken.yaml", `invalid: yaml: content: [`)
			_ = os.Setenv("TALENTFLOW_CONFIG", path)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty api url", func() {
			_ = os.Setenv("TALENTFLOW_API_URL", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "api_url must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestConfigValidate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New()

		convey.Convey("It should validate", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("A relative api url should be rejected", func() {
			cfg.APIURL = "localhost/api"
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("A zero minimum answer length should be rejected", func() {
			cfg.MinAnswerLength = 0
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("A non-positive timeout should be rejected", func() {
			cfg.RequestTimeout = 0
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}
