package models

import (
	"errors"
	"time"
)

// FieldError 字段级校验错误
type FieldError struct {
	Path string `json:"path"`
	Msg  string `json:"msg"`
}

// ErrInvalidDate 日期格式错误
var ErrInvalidDate = errors.New("invalid ISO-8601 date")

const dateOnlyLayout = "2006-01-02"

// 支持的 ISO-8601 格式，不带时区的按服务器本地时间解析
var zonedLayouts = []string{time.RFC3339Nano, time.RFC3339}

var localLayouts = []string{
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	dateOnlyLayout,
}

// ParseDate 解析 ISO-8601 日期
func ParseDate(s string) (time.Time, error) {
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// IsDateOnly 是否只包含日期部分（如 2024-01-31）
func IsDateOnly(s string) bool {
	_, err := time.ParseInLocation(dateOnlyLayout, s, time.Local)
	return err == nil
}

// EndOfDay 当天最后一刻
func EndOfDay(t time.Time) time.Time {
	return t.AddDate(0, 0, 1).Add(-time.Nanosecond)
}
