// Package config defines the format-agnostic model-definition model, along
// with the Loader interface for reading definitions from various sources.
//
// The config.Model is the single source of truth between manifest loaders
// and the registry: a concrete loader (such as the HCL one in
// internal/hclconf) translates manifest files into this model, and the
// registry applies it through the ordinary registration operations.
package config
