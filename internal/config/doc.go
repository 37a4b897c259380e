// Package config handles configuration loading for homarr-board.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// Every value has a default (see Default), so a file only needs to name what
// it changes.
//
// # Configuration File
//
// Location:
//
//  1. Path from HOMARR_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/homarr/board.yaml (~/.config/homarr/board.yaml)
//
// `homarr-board init` writes the defaults to that location.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	auth:
//	  jwt_secret: "${HOMARR_JWT_SECRET}"
//
// HOMARR_DB_PATH overrides database.path after the file is read.
//
// # Configuration Sections
//
//	server:
//	  http_addr: "127.0.0.1:7575"   # REST API and SSE stream
//	  grpc_addr: "127.0.0.1:7576"   # gRPC health service, empty disables
//	  shutdown_timeout: "10s"
//
//	database:
//	  path: "~/.local/share/homarr/boards.db"
//
//	auth:
//	  jwt_secret: "${HOMARR_JWT_SECRET}"  # empty disables auth, else >= 32 bytes
//
//	boards:
//	  default_board: "default"      # created on start if missing
//	  seed_dir: "./boards"          # *.json, *.yaml, *.toml imported on start
//	  event_dedupe_ttl: "5m"
//	  event_dedupe_size: 10000
//
//	locale:
//	  default: "en-gb"
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Duration Parsing
//
// Durations use Go's time.ParseDuration syntax (ns, us, ms, s, m, h).
package config
