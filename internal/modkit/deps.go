package modkit

import (
	"swifthub/internal/platform/config"
	"swifthub/internal/platform/logger"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log *logger.Logger
	Cfg config.Conf
}

// NewDeps builds Deps from the process logger scoped to component and the given config
func NewDeps(component string, cfg config.Conf) Deps {
	return Deps{Log: logger.Named(component), Cfg: cfg}
}
