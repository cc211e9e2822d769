// Package autoload configures the global logger from the environment as a
// side effect of being imported. Blank-import it from process entrypoints.
package autoload

import (
	configx "github.com/storelane/shopassist/pkg/config"
	logx "github.com/storelane/shopassist/pkg/logger"
)

func init() {
	conf := configx.MustNew[logx.Config]("LOGGER")
	logx.Init(*conf)
}
