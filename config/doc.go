// Package config loads PocketBase client configuration.
//
// It uses Viper to read a YAML file and environment variables, with an
// optional .env file loaded through godotenv first.
//
// # Usage
//
//	var cfg config.Client
//	if err := config.Load("pocketbase", &cfg); err != nil {
//		return err
//	}
//	cfg.ApplyDefaults()
//	if err := cfg.Validate(); err != nil {
//		return err
//	}
//
// Environment variables override file values using the POCKETBASE_ prefix
// with underscore-separated paths (e.g. POCKETBASE_AUTH_REDIS_ADDR).
package config
