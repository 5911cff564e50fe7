package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// 资源 API 中的记录来自前端表单与 Excel 导入，数字字段时常以字符串存储，
// id 可能是数字也可能是字符串。以下类型在 JSON 边界处统一解析。

// ── ID ──

// ID 资源主键，兼容数字与字符串两种 JSON 表示
type ID string

// UnmarshalJSON 接受 "abc" / 12 / null
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("ID: 无法解析 %s", data)
	}
	*id = ID(n.String())
	return nil
}

// String 返回字符串形式
func (id ID) String() string { return string(id) }

// ── Ordinal ──

// Ordinal 从 1 开始的序号（学期号），兼容 3 / "3" 两种表示
// 写回时统一输出为 JSON 数字
type Ordinal int

// UnmarshalJSON 接受 3 / "3" / "" / null；空值解析为 0（视为缺失）
func (o *Ordinal) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*o = 0
		return nil
	}
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		*o = 0
		return nil
	}
	n, err := ParseOrdinal(raw)
	if err != nil {
		return err
	}
	*o = n
	return nil
}

// ParseOrdinal 将 "3" / "3.0" 解析为序号
func ParseOrdinal(raw string) (Ordinal, error) {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.Atoi(raw); err == nil {
		return Ordinal(n), nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("Ordinal: 无效的序号 %q", raw)
	}
	return Ordinal(int(f)), nil
}

// Int 返回 int 值
func (o Ordinal) Int() int { return int(o) }

// ── Date ──

// DateLayout 对外统一的日期格式
const DateLayout = "2006-01-02"

var dateLayouts = []string{
	DateLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02/01/2006",
}

// Date 日历日期（UTC 零点），兼容 "2023-01-01" 与 ISO 时间戳
type Date struct {
	time.Time
}

// NewDate 截断到当天零点（按 t 所在时区的年月日）
func NewDate(t time.Time) Date {
	return Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// ParseDate 解析常见日期格式
func ParseDate(raw string) (Date, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return NewDate(t), nil
		}
	}
	return Date{}, fmt.Errorf("Date: 无法解析日期 %q", raw)
}

// UnmarshalJSON 接受日期字符串 / "" / null
func (d *Date) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("Date: 期望字符串，实际 %s", data)
	}
	if strings.TrimSpace(raw) == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON 输出 "2006-01-02"，零值输出 null
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(DateLayout))
}

// String 日期字符串，零值为空串
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// AddMonths 按月偏移，月末日期按 Go time 规范化（1/31 + 1 月 → 3/3）
func (d Date) AddMonths(n int) Date {
	return Date{Time: d.AddDate(0, n, 0)}
}
