package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound  = goerr.New("configuration file not found")
	ErrInvalidConfig   = goerr.New("invalid configuration")
	ErrInvalidBackend  = goerr.New("invalid repository backend")
	ErrMissingOption   = goerr.New("required option is missing")
	ErrUnknownRole     = goerr.New("unknown role")
	ErrDuplicateRole   = goerr.New("duplicate role name")
	ErrInvalidSeverity = goerr.New("invalid severity")
)

// Context keys for error values
const (
	ConfigPathKey  = "config_path"
	NoticeIndexKey = "notice_index"
	RoleKey        = "role"
	BackendKey     = "backend"
	OptionKey      = "option"
)
