package config

import "os"

// parseEnv overlays cfg with values from environment variables. Only
// variables that are set override the current values; secrets are expected
// to arrive this way rather than via flags.
func parseEnv(cfg *Config) {
	overlay := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	overlay(&cfg.AuthBaseURL, "RECIPEBOX_AUTH_URL")
	overlay(&cfg.AuthAPIKey, "RECIPEBOX_AUTH_API_KEY")
	overlay(&cfg.SiteBaseURL, "RECIPEBOX_SITE_URL")
	overlay(&cfg.DatabaseDSN, "RECIPEBOX_DATABASE_DSN")
	overlay(&cfg.SessionFile, "RECIPEBOX_SESSION_FILE")
	overlay(&cfg.S3AccessKey, "RECIPEBOX_S3_ACCESS_KEY")
	overlay(&cfg.S3SecretKey, "RECIPEBOX_S3_SECRET_KEY")
	overlay(&cfg.S3Region, "RECIPEBOX_S3_REGION")
	overlay(&cfg.S3BaseEndpoint, "RECIPEBOX_S3_ENDPOINT")
	overlay(&cfg.AvatarBucket, "RECIPEBOX_AVATAR_BUCKET")
	overlay(&cfg.RecipeImageBucket, "RECIPEBOX_RECIPE_IMAGE_BUCKET")
}
