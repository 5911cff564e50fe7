package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money 金额，单位为最小货币单位（分 / paise）
// 所有比较与加减均为整数运算，避免浮点舍入导致"未付清"误判
type Money int64

// minorUnitExp 最小货币单位的小数位数
const minorUnitExp = 2

// NewMoneyFromMajor 由主单位整数构造（60000 → 6000000 分）
func NewMoneyFromMajor(major int64) Money {
	return Money(major * 100)
}

// ParseMoney 解析十进制金额字符串，超过两位小数按四舍五入处理
func ParseMoney(raw string) (Money, error) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if raw == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("Money: 无效金额 %q", raw)
	}
	return Money(d.Shift(minorUnitExp).Round(0).IntPart()), nil
}

// UnmarshalJSON 接受 60000 / 60000.5 / "60,000.50" / null
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = 0
		return nil
	}
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	}
	parsed, err := ParseMoney(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MarshalJSON 以主单位 JSON 数字输出（6000050 → 60000.5）
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().String()), nil
}

// Decimal 主单位十进制值
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -minorUnitExp)
}

// String 固定两位小数（"60000.50"）
func (m Money) String() string {
	return m.Decimal().StringFixed(minorUnitExp)
}

// Major 主单位整数部分
func (m Money) Major() int64 { return int64(m) / 100 }

// Minor 最小单位余数部分
func (m Money) Minor() int64 {
	r := int64(m) % 100
	if r < 0 {
		r = -r
	}
	return r
}

// NonNegative 负值按 0 处理
func (m Money) NonNegative() Money {
	if m < 0 {
		return 0
	}
	return m
}
