// Package config loads the envfile server's settings.
//
// Values come from a Source: the process environment (OSEnv), an already
// loaded *envfile.Store, or a Layered combination where the first source with
// a non-empty value wins. Unset or unparsable values fall back to defaults.
//
// Server settings:
//
//	ENVFILE_HOST="0.0.0.0"
//	ENVFILE_PORT="8080"
//	ENVFILE_SHUTDOWN_TIMEOUT="30s"
//
// Files:
//
//	ENVFILE_FILES=".env,.env.local"  # loaded in order, first value wins
//	ENVFILE_WATCH="true"
//	ENVFILE_RELOAD_SCHEDULE="@every 5m"
//	ENVFILE_MAX_ENTRIES="0"  # 0 is unlimited
//
// Cache and Redis:
//
//	ENVFILE_CACHE_SIZE="1024"
//	ENVFILE_CACHE_TTL="5m"
//	ENVFILE_REDIS_URL="redis://localhost:6379/0"
//	ENVFILE_REDIS_KEY="envfile"
//
// Observability:
//
//	ENVFILE_LOG_LEVEL="info"  # debug, info, warn, error
//	ENVFILE_LOG_FORMAT="text"  # text, json
//	ENVFILE_METRICS_ENABLED="true"
//
// # Usage Example
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Addr())
package config
