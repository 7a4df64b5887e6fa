// Package config loads the process-bootstrap settings named in spec §6:
// the profile and the per-backend DSNs its providers construct from.
//
// # Environment
//
//	PAISE2_PROFILE="development"  # test, development, production
//	PAISE_CONFIG_DIR="$HOME/.config/paise"
//
//	PAISE_SQLITE_DIR="$HOME/.local/share/paise"
//	PAISE_POSTGRES_URL="postgres://localhost/paise"
//	PAISE_REDIS_ADDR="localhost:6379"
//	PAISE_S3_BUCKET="paise-content"
//
//	PAISE_LOG_LEVEL="info"
//	PAISE_METRICS_ENABLED="true"
//	PAISE_OTEL_ENABLED="false"
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
package config
