// Package history 记录每次成功的推荐查询，供事后回看。
//
// 每条记录一行，格式为：
//
//	[2006-01-02 15:04:05] Content: P1 -> Red Shoe, Blue Shoe
//
// 记录是纯副作用：写入失败只记日志，不影响推荐结果。
package history

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// TimeLayout 是记录中的时间格式（本地时间，秒级）。
const TimeLayout = "2006-01-02 15:04:05"

// Kind 是查询类型。
type Kind string

const (
	KindContent Kind = "Content"
	KindUser    Kind = "User"
)

// Entry 是一条推荐历史。
type Entry struct {
	Time    time.Time `json:"time"`
	Kind    Kind      `json:"kind"`
	Subject string    `json:"subject"`
	Names   []string  `json:"names"`
}

// String 返回单行文本（不含换行）。
func (e Entry) String() string {
	return fmt.Sprintf("[%s] %s: %s -> %s",
		e.Time.Format(TimeLayout), e.Kind, e.Subject, strings.Join(e.Names, ", "))
}

// Parse 解析 String 产生的单行文本。名称本身包含 ", " 时无法还原，会被拆开。
func Parse(line string) (Entry, error) {
	line = strings.TrimRight(line, "\r\n")
	if !strings.HasPrefix(line, "[") {
		return Entry{}, fmt.Errorf("history: malformed line %q", line)
	}
	end := strings.Index(line, "] ")
	if end < 0 {
		return Entry{}, fmt.Errorf("history: malformed line %q", line)
	}
	ts, err := time.ParseInLocation(TimeLayout, line[1:end], time.Local)
	if err != nil {
		return Entry{}, fmt.Errorf("history: bad timestamp: %w", err)
	}
	rest := line[end+2:]
	colon := strings.Index(rest, ": ")
	if colon < 0 {
		return Entry{}, fmt.Errorf("history: missing kind in %q", line)
	}
	body := rest[colon+2:]
	arrow := strings.LastIndex(body, " -> ")
	if arrow < 0 {
		// 结果为空时 Join 得到空串，行尾是 " ->"
		if !strings.HasSuffix(body, " ->") {
			return Entry{}, fmt.Errorf("history: missing arrow in %q", line)
		}
		return Entry{Time: ts, Kind: Kind(rest[:colon]), Subject: strings.TrimSuffix(body, " ->")}, nil
	}
	e := Entry{Time: ts, Kind: Kind(rest[:colon]), Subject: body[:arrow]}
	if names := body[arrow+4:]; names != "" {
		e.Names = strings.Split(names, ", ")
	}
	return e, nil
}

// Recorder 追加并回读推荐历史。
type Recorder interface {
	Record(ctx context.Context, e Entry) error

	// Recent 返回最近 n 条（时间顺序），n <= 0 返回全部
	Recent(ctx context.Context, n int) ([]Entry, error)
}

// Nop 丢弃所有记录。
type Nop struct{}

func (Nop) Record(context.Context, Entry) error { return nil }

func (Nop) Recent(context.Context, int) ([]Entry, error) { return nil, nil }

func tail(entries []Entry, n int) []Entry {
	if n > 0 && len(entries) > n {
		return entries[len(entries)-n:]
	}
	return entries
}
