// Package config provides the configuration of ytanalyzer: the backend
// location and credentials, request limits, export and server settings,
// and the YAML file and environment variables they are read from.
package config
