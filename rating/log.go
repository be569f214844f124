package rating

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/rushteam/shoprec/catalog"
	"github.com/rushteam/shoprec/core"
)

// Log 是评分的持久化日志：启动时整体载入，接收新评分时追加。
// 追加发生在推荐核心之外，由调用方以同步、可重试的方式完成。
type Log interface {
	Load(ctx context.Context) ([]core.Rating, error)
	Append(ctx context.Context, r core.Rating) error
}

// CSV 列名
const (
	ColumnUserID    = "user_id"
	ColumnProductID = "product_id"
	ColumnRating    = "rating"
)

// CSVLog 是基于 CSV 文件的评分日志，列为 user_id, product_id, rating。
type CSVLog struct {
	mu   sync.Mutex
	path string
}

func NewCSVLog(path string) *CSVLog {
	return &CSVLog{path: path}
}

func (l *CSVLog) Load(_ context.Context) ([]core.Rating, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open ratings %s: %w", l.path, err)
	}
	defer f.Close()
	return ReadRatings(f)
}

// Append 以 O_APPEND 方式写入一行；文件不存在或为空时先写表头。
func (l *CSVLog) Append(_ context.Context, r core.Rating) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open ratings %s: %w", l.path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write([]string{ColumnUserID, ColumnProductID, ColumnRating}); err != nil {
			return err
		}
	}
	if err := w.Write([]string{r.UserID, r.ItemID, strconv.FormatFloat(r.Score, 'f', -1, 64)}); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// ReadRatings 解析评分 CSV。表头必需；任何无法解析的行都会返回带行号的错误。
func ReadRatings(r io.Reader) ([]core.Rating, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, core.ErrEmptyRatingStore
	}
	if err != nil {
		return nil, fmt.Errorf("read ratings header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[catalog.HeaderKey(h)] = i
	}
	for _, c := range []string{ColumnUserID, ColumnProductID, ColumnRating} {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("ratings header missing column %q", c)
		}
	}

	var out []core.Rating
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("ratings line %d: %w", line, err)
		}
		score, err := strconv.ParseFloat(strings.TrimSpace(rec[cols[ColumnRating]]), 64)
		if err != nil {
			return nil, fmt.Errorf("ratings line %d: parse rating: %w", line, err)
		}
		out = append(out, core.Rating{
			UserID: strings.TrimSpace(rec[cols[ColumnUserID]]),
			ItemID: strings.TrimSpace(rec[cols[ColumnProductID]]),
			Score:  score,
		})
	}
	return out, nil
}

// StoreLog 把评分以 JSON 记录追加到 ListStore 的一个列表中（例如 Redis list）。
type StoreLog struct {
	store core.ListStore
	key   string
}

// NewStoreLog 创建 StoreLog，key 为空时使用 "shoprec:ratings"。
func NewStoreLog(store core.ListStore, key string) *StoreLog {
	if key == "" {
		key = "shoprec:ratings"
	}
	return &StoreLog{store: store, key: key}
}

func (l *StoreLog) Load(ctx context.Context) ([]core.Rating, error) {
	raw, err := l.store.LRange(ctx, l.key, 0, -1)
	if err != nil {
		return nil, fmt.Errorf("load ratings from %s: %w", l.store.Name(), err)
	}
	out := make([]core.Rating, 0, len(raw))
	for i, b := range raw {
		var r core.Rating
		if err := json.Unmarshal(b, &r); err != nil {
			return nil, fmt.Errorf("decode rating #%d: %w", i, err)
		}
		out = append(out, r)
	}
	return out, nil
}

func (l *StoreLog) Append(ctx context.Context, r core.Rating) error {
	b, err := json.Marshal(r)
	if err != nil {
		return err
	}
	_, err = l.store.RPush(ctx, l.key, b)
	return err
}

// AppendWithRetry 同步追加，失败时按线性退避重试 attempts 次；ctx 取消时立即返回。
func AppendWithRetry(ctx context.Context, log Log, r core.Rating, attempts int, backoff time.Duration) error {
	if attempts <= 0 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		if err = log.Append(ctx, r); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff * time.Duration(i+1)):
		}
	}
	return fmt.Errorf("append rating after %d attempts: %w", attempts, err)
}

var (
	_ Log = (*CSVLog)(nil)
	_ Log = (*StoreLog)(nil)
)
