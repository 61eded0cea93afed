// Package configs provides embedded configuration templates for LogLens.
//
// Templates are embedded at build time using Go's //go:embed directive, so
// they ship with every distribution regardless of install method.
//
// Configuration hierarchy (see internal/config Load()):
//  1. Built-in defaults
//  2. User config (~/.config/loglens/config.yaml)
//  3. Project config (.loglens.yaml)
//  4. Environment variables (LOGLENS_*)
package configs

import _ "embed"

// UserConfigTemplate is the template for the user-level configuration.
// Created by `loglens config init` at ~/.config/loglens/config.yaml.
//
//go:embed config.example.yaml
var UserConfigTemplate string
