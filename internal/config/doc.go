// Package config loads the vhal-broker process configuration.
//
// Configuration is layered: built-in defaults, then a YAML file, then
// VHAL_* environment variables. The result is validated before use.
package config
