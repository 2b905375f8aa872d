// Package config provides environment-based configuration.
//
// Loads the dotenv file selected by ENV_FILE (godotenv), maps variables to
// the Config struct via go-simpler/env struct tags, and validates the fields
// each binary requires.
package config
