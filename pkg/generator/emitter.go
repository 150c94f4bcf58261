package generator

import (
	"time"

	"github.com/shopmetrics/logpipeline/pkg/log/model"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Emitter writes one structured event per line.
type Emitter interface {
	Emit(entry model.LogEntry)
}

// FileEmitter writes events as bare JSON objects, one per line, through
// lumberjack rotation. The encoder config strips zap's own keys so each line
// is exactly the event schema the parser expects.
type FileEmitter struct {
	logger *zap.Logger
}

func NewFileEmitter(path string) *FileEmitter {
	syncer := zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     7,
	})
	return &FileEmitter{logger: newBareJSONLogger(syncer)}
}

func newBareJSONLogger(syncer zapcore.WriteSyncer) *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		LineEnding: zapcore.DefaultLineEnding,
	}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), syncer, zapcore.InfoLevel)
	return zap.New(core)
}

func (e *FileEmitter) Emit(entry model.LogEntry) {
	e.logger.Info("",
		zap.String("timestamp", entry.Timestamp.UTC().Format(time.RFC3339Nano)),
		zap.String("event_type", entry.EventType),
		zap.String("session_id", entry.SessionId),
		zap.String("user_id", entry.UserId),
		zap.String("ip_address", entry.IpAddress),
		zap.String("user_agent", entry.UserAgent),
		zap.String("location", entry.Location),
		zap.Any("data", entry.Data),
	)
}

func (e *FileEmitter) Sync() error {
	return e.logger.Sync()
}
