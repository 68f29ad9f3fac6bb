package telemetry

import "go.uber.org/zap"

type zapLogger struct {
	l *zap.SugaredLogger
}

func newZapLogger(cfg Config) (Logger, error) {
	var zcfg zap.Config
	switch cfg.Level {
	case "debug":
		zcfg = zap.NewDevelopmentConfig()
	default:
		zcfg = zap.NewProductionConfig()
	}
	base, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return &zapLogger{l: base.Sugar()}, nil
}

func (z *zapLogger) Debugf(format string, args ...any) { z.l.Debugf(format, args...) }
func (z *zapLogger) Infof(format string, args ...any)  { z.l.Infof(format, args...) }
func (z *zapLogger) Warnf(format string, args ...any)  { z.l.Warnf(format, args...) }
func (z *zapLogger) Errorf(format string, args ...any) { z.l.Errorf(format, args...) }
func (z *zapLogger) Close() error                      { return z.l.Sync() }
