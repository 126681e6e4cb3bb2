package state

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
)

// newLocalEnv creates a new LocalEnv instance with default values
func newLocalEnv() *LocalEnv {
	return &LocalEnv{
		start: time.Now(),
	}
}

// LoadResources reads styles override and default logo named in
// configuration. Must be called after configuration is loaded.
func (e *LocalEnv) LoadResources() error {
	if e.Cfg == nil {
		return nil
	}

	var err error
	if path := e.Cfg.Document.StylesPath; len(path) > 0 {
		if e.Styles, err = os.ReadFile(path); err != nil {
			return fmt.Errorf("unable to read styles from '%s': %w", path, err)
		}
		if e.Log != nil {
			e.Log.Debug("Using styles override", zap.String("path", path), zap.Int("size", len(e.Styles)))
		}
	}
	if path := e.Cfg.Document.Logo.DefaultImagePath; len(path) > 0 {
		if e.Logo, err = os.ReadFile(path); err != nil {
			return fmt.Errorf("unable to read default logo from '%s': %w", path, err)
		}
		if e.Log != nil {
			e.Log.Debug("Using default logo", zap.String("path", path), zap.Int("size", len(e.Logo)))
		}
	}
	return nil
}
