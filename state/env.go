// Package state defines shared program state.
package state

import (
	"context"
	"time"

	"go.uber.org/zap"

	"scribe/config"
)

type envKey struct{}

// LocalEnv keeps everything program needs in a single place.
type LocalEnv struct {
	Cfg *config.Config
	Rpt *config.Report
	Log *zap.Logger

	// used by convert and generate subcommands
	NoDirs    bool
	Overwrite bool
	Formats   []config.OutputFmt

	// resources loaded from paths in configuration, empty when not
	// configured
	Logo   []byte
	Styles []byte

	start         time.Time
	restoreStdLog func()
}

func EnvFromContext(ctx context.Context) *LocalEnv {
	if env, ok := ctx.Value(envKey{}).(*LocalEnv); ok {
		return env
	}
	// this should never happen
	panic("localenv not found in context")
}

func ContextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, newLocalEnv())
}

func (e *LocalEnv) Uptime() time.Duration {
	return time.Since(e.start)
}

func (e *LocalEnv) RedirectStdLog() {
	if e.Log == nil {
		return
	}
	e.restoreStdLog = zap.RedirectStdLog(e.Log)
}

func (e *LocalEnv) RestoreStdLog() {
	if e.Log != nil {
		_ = e.Log.Sync()
	}
	if e.restoreStdLog != nil {
		e.restoreStdLog()
	}
}

// AttachEnv returns ctx carrying existing env, contexts created outside of
// the program context (server requests) get it this way.
func AttachEnv(ctx context.Context, env *LocalEnv) context.Context {
	return context.WithValue(ctx, envKey{}, env)
}
