package history

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// FileRecorder 把记录追加到文本文件，每条记录一次 O_APPEND 写入。
type FileRecorder struct {
	mu     sync.Mutex
	path   string
	logger zerolog.Logger
}

func NewFileRecorder(path string, logger zerolog.Logger) *FileRecorder {
	return &FileRecorder{path: path, logger: logger}
}

func (r *FileRecorder) Record(_ context.Context, e Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open history %s: %w", r.path, err)
	}
	defer f.Close()
	_, err = f.WriteString(e.String() + "\n")
	return err
}

// Recent 读取文件并跳过无法解析的行。文件不存在视为没有记录。
func (r *FileRecorder) Recent(_ context.Context, n int) ([]Entry, error) {
	f, err := os.Open(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []Entry
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		if sc.Text() == "" {
			continue
		}
		e, err := Parse(sc.Text())
		if err != nil {
			r.logger.Debug().Err(err).Msg("skip history line")
			continue
		}
		out = append(out, e)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return tail(out, n), nil
}

var _ Recorder = (*FileRecorder)(nil)
