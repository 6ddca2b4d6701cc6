// Package config defines the journey client configuration and its loader.
//
// Conventions:
// - New returns a Config holding every default.
// - Load layers .env, an optional YAML file and TALENTFLOW_ env vars on top.
// - Loader failures are wrapped with this package's sentinel errors.
package config

import "time"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// APIURL is the base URL of the scoring backend, e.g. "http://localhost:5000/api".
	APIURL string `koanf:"api_url"`

	// RequestTimeout bounds every backend round trip.
	RequestTimeout time.Duration `koanf:"request_timeout"`

	// StorePath is the JSON file backing the durable key-value store.
	// An empty value keeps the journey in memory only.
	StorePath string `koanf:"store_path"`

	// ReportDir receives rendered PDF reports.
	ReportDir string `koanf:"report_dir"`

	// MetricsAddr serves /healthz and /progress. Empty disables the server.
	MetricsAddr string `koanf:"metrics_addr"`

	// MinAnswerLength is the minimum trimmed answer length in characters.
	MinAnswerLength int `koanf:"min_answer_length"`

	// SpeechAPIKey, SpeechModel and SpeechURL configure the Gemini-backed
	// transcription capability. Without a key voice input is reported as
	// unavailable. An empty SpeechURL uses the public Gemini endpoint.
	SpeechURL    string `koanf:"speech_url"`
	SpeechAPIKey string `koanf:"speech_api_key"`
	SpeechModel  string `koanf:"speech_model"`

	// ATSThreshold and InterviewThreshold drive the local decision fallback.
	ATSThreshold       float64 `koanf:"ats_threshold"`
	InterviewThreshold float64 `koanf:"interview_threshold"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		APIURL:             "http://localhost:5000/api",
		RequestTimeout:     30 * time.Second,
		StorePath:          "data/journey.json",
		ReportDir:          "reports",
		MetricsAddr:        ":9090",
		MinAnswerLength:    10,
		SpeechModel:        "gemini-2.5-flash",
		ATSThreshold:       60,
		InterviewThreshold: 0.5,
	}
}

// VoiceEnabled reports whether a transcription capability is configured.
func (c *Config) VoiceEnabled() bool {
	return c.SpeechAPIKey != ""
}
