package model

import (
	"encoding/json"
	"testing"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		raw     string
		want    Money
		wantErr bool
	}{
		{raw: "60000", want: 6000000},
		{raw: "60,000.50", want: 6000050},
		{raw: "0.105", want: 11},
		{raw: "", want: 0},
		{raw: "abc", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseMoney(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMoney(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseMoney(%q) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestMoney_UnmarshalMixedRepresentations(t *testing.T) {
	var rec struct {
		A Money `json:"a"`
		B Money `json:"b"`
		C Money `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a":20000,"b":"19999.99","c":null}`), &rec); err != nil {
		t.Fatalf("Unmarshal 应成功: %v", err)
	}
	if rec.A != 2000000 || rec.B != 1999999 || rec.C != 0 {
		t.Errorf("解析结果不符: %+v", rec)
	}
	// 0.1 + 0.2 一类浮点误差不会出现在分值比较中
	if rec.A-rec.B != 1 {
		t.Errorf("期望差额为1分，实际=%d", rec.A-rec.B)
	}
}

func TestMoney_Format(t *testing.T) {
	m := Money(6000050)
	if m.String() != "60000.50" {
		t.Errorf("String() = %s", m.String())
	}
	raw, _ := json.Marshal(m)
	if string(raw) != "60000.5" {
		t.Errorf("MarshalJSON = %s", raw)
	}
	if m.Major() != 60000 || m.Minor() != 50 {
		t.Errorf("Major/Minor = %d/%d", m.Major(), m.Minor())
	}
	if Money(-5).NonNegative() != 0 {
		t.Error("负金额应视为0")
	}
}
