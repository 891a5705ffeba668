package config

import "errors"

var (
	ErrProductionSecret = errors.New("JWT_SECRET must be set in production environment")
	ErrUnknownStorage   = errors.New("STORAGE must be mysql or memory")
)
