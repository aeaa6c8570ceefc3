// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"io/fs"

	xglog "github.com/connectapp/connect/internal/log"
	"github.com/joho/godotenv"
)

// LoadDotEnv loads KEY=VALUE files into the process environment. Variables
// already set win, and missing files are skipped.
func LoadDotEnv(paths ...string) error {
	logger := xglog.WithComponent("config")
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
		logger.Debug().Str(xglog.FieldEvent, "config.dotenv_loaded").Str(xglog.FieldPath, p).Msg("loaded env file")
	}
	return nil
}
