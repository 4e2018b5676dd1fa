package dbcore

import "go.uber.org/zap"

// log is the package-level structured logger. Disabled (a no-op core) by
// default; SetLogger installs a real one. Mirrors the teacher's debug.go
// package-level switch (dbase.Debug(enabled, out)) but speaks structured
// fields instead of Printf, since callers of this core log table/record/
// offset context far more often than a free-form message.
var log *zap.SugaredLogger = zap.NewNop().Sugar()

// SetLogger installs the logger used for warnings and debug traces emitted
// by the catalog, query engine, and file readers. Passing nil restores the
// no-op logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		log = zap.NewNop().Sugar()
		return
	}
	log = l.Sugar()
}
