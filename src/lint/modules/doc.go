// Package modules contains all built-in check modules.
// Import this package to register all modules via their init() functions.
package modules

import (
	// Register the freshness sub-package module.
	_ "github.com/pindown-dev/pindown/src/lint/modules/freshness"
)
