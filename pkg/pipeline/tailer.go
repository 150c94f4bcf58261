package pipeline

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultPollInterval = 500 * time.Millisecond

// Tailer follows an application log file and emits new lines as they are
// appended, tail -f style. fsnotify write events wake the reader; a poll
// interval covers filesystems without reliable notifications.
type Tailer struct {
	path         string
	fromStart    bool
	pollInterval time.Duration
	logger       *zap.Logger
}

func NewTailer(path string, fromStart bool, logger *zap.Logger) *Tailer {
	return &Tailer{
		path:         path,
		fromStart:    fromStart,
		pollInterval: defaultPollInterval,
		logger:       logger,
	}
}

// Lines starts following the file and returns a channel of complete lines.
// The channel is closed when ctx is cancelled. If the file does not exist
// yet, Lines waits for it to appear.
func (t *Tailer) Lines(ctx context.Context) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		if err := t.follow(ctx, out); err != nil && ctx.Err() == nil {
			t.logger.Error("Log file tailer stopped", zap.Error(err))
		}
	}()
	return out
}

func (t *Tailer) follow(ctx context.Context, out chan<- string) error {
	file, err := t.waitForFile(ctx)
	if err != nil {
		return err
	}
	defer func() { file.Close() }()

	offset := int64(0)
	if !t.fromStart {
		offset, err = file.Seek(0, io.SeekEnd)
		if err != nil {
			return err
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	// watch the directory so rotation and recreation are seen too
	if err := watcher.Add(filepath.Dir(t.path)); err != nil {
		return err
	}

	reader := bufio.NewReader(file)
	var partial strings.Builder

	for {
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			partial.WriteString(line)
			offset += int64(len(line))
		}
		if err == nil {
			select {
			case out <- strings.TrimRight(partial.String(), "\n"):
				partial.Reset()
			case <-ctx.Done():
				return nil
			}
			continue
		}
		if err != io.EOF {
			return err
		}

		newFile, rerr := t.rotatedFile(file)
		if rerr != nil {
			return rerr
		}
		if newFile != nil {
			t.logger.Info("Log file rotated, following the new file", zap.String("path", t.path))
			file.Close()
			file = newFile
			offset = 0
			reader.Reset(file)
			partial.Reset()
			continue
		}

		if truncated, serr := t.wasTruncated(offset); serr == nil && truncated {
			t.logger.Info("Log file truncated, reading from the beginning", zap.String("path", t.path))
			if _, serr := file.Seek(0, io.SeekStart); serr != nil {
				return serr
			}
			offset = 0
			reader.Reset(file)
			partial.Reset()
			continue
		}

		select {
		case <-ctx.Done():
			return nil
		case <-watcher.Events:
		case <-time.After(t.pollInterval):
		}
	}
}

func (t *Tailer) waitForFile(ctx context.Context) (*os.File, error) {
	for {
		file, err := os.Open(t.path)
		if err == nil {
			return file, nil
		}
		if !os.IsNotExist(err) {
			return nil, err
		}
		t.logger.Info("Waiting for log file to be created", zap.String("path", t.path))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(t.pollInterval):
		}
	}
}

// rotatedFile returns a handle on the recreated log file when t.path no
// longer refers to the file currently being read, as happens after a
// rename-based rotation. It returns nil while the path still points at the
// open file, or when the path is momentarily absent mid-rotation.
func (t *Tailer) rotatedFile(file *os.File) (*os.File, error) {
	pathInfo, err := os.Stat(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	fdInfo, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if os.SameFile(pathInfo, fdInfo) {
		return nil, nil
	}
	newFile, err := os.Open(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return newFile, nil
}

func (t *Tailer) wasTruncated(offset int64) (bool, error) {
	info, err := os.Stat(t.path)
	if err != nil {
		return false, err
	}
	return info.Size() < offset, nil
}
