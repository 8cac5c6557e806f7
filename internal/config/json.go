package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/recipebox/recipebox/internal/flagx"
	"github.com/recipebox/recipebox/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "30s"
// or as integer nanoseconds. After parsing, values are copied into the
// runtime Config (which uses time.Duration).
type JsonConfig struct {
	AuthBaseURL string `json:"auth_base_url"`
	AuthAPIKey  string `json:"auth_api_key"`
	SiteBaseURL string `json:"site_base_url"`

	DatabaseDSN string `json:"database_dsn"`
	SessionFile string `json:"session_file"`

	S3AccessKey       string `json:"s3_access_key"`
	S3SecretKey       string `json:"s3_secret_key"`
	S3Region          string `json:"s3_region"`
	S3BaseEndpoint    string `json:"s3_base_endpoint"`
	AvatarBucket      string `json:"avatar_bucket"`
	RecipeImageBucket string `json:"recipe_image_bucket"`

	BootstrapTimeout    timex.Duration `json:"bootstrap_timeout"`
	ProfileFetchTimeout timex.Duration `json:"profile_fetch_timeout"`
	ReconcileInterval   timex.Duration `json:"reconcile_interval"`
	VisibilityDebounce  timex.Duration `json:"visibility_debounce"`
}

// parseJson overlays cfg with values loaded from a JSON file. The file path
// comes from the -c/-config flags; when absent, nothing is loaded. Only
// fields present in the JSON override the current values. Panics on read or
// unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setDuration := func(dst *time.Duration, v timex.Duration) {
		if v.Duration != 0 {
			*dst = v.Duration
		}
	}

	setString(&cfg.AuthBaseURL, jc.AuthBaseURL)
	setString(&cfg.AuthAPIKey, jc.AuthAPIKey)
	setString(&cfg.SiteBaseURL, jc.SiteBaseURL)
	setString(&cfg.DatabaseDSN, jc.DatabaseDSN)
	setString(&cfg.SessionFile, jc.SessionFile)
	setString(&cfg.S3AccessKey, jc.S3AccessKey)
	setString(&cfg.S3SecretKey, jc.S3SecretKey)
	setString(&cfg.S3Region, jc.S3Region)
	setString(&cfg.S3BaseEndpoint, jc.S3BaseEndpoint)
	setString(&cfg.AvatarBucket, jc.AvatarBucket)
	setString(&cfg.RecipeImageBucket, jc.RecipeImageBucket)
	setDuration(&cfg.BootstrapTimeout, jc.BootstrapTimeout)
	setDuration(&cfg.ProfileFetchTimeout, jc.ProfileFetchTimeout)
	setDuration(&cfg.ReconcileInterval, jc.ReconcileInterval)
	setDuration(&cfg.VisibilityDebounce, jc.VisibilityDebounce)
}
