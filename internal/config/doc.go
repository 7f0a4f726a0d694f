// Package config loads settings from config.yaml and TASKER_* environment
// variables with viper and validates them with struct tags before any
// component starts.
package config
