package frame

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrBadTimestamp：时间戳字符串无法解析
var ErrBadTimestamp = errors.New("bad timestamp")

// 文档注释：解析 MPAS xtime 字符串
// 背景：格式为 "YYYY-MM-DD_hh:mm:ss[.ms]"，日期与时间各段均可从右侧缺省；统一按 UTC 解释。
// 约束：缺省的日期段取 1970-01-01；空串或非数字字段返回 ErrBadTimestamp。
func ParseXTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrBadTimestamp)
	}
	ms := 0
	if i := strings.IndexByte(s, '.'); i >= 0 {
		n, err := strconv.Atoi(s[i+1:])
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrBadTimestamp, s)
		}
		ms = n
		s = s[:i]
	}
	year, month, day := 1970, 1, 1
	clock := s
	if i := strings.IndexByte(s, '_'); i >= 0 {
		date, err := atoiFields(strings.Split(s[:i], "-"))
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrBadTimestamp, s)
		}
		// 从右向左依次为日、月、年
		j := len(date) - 1
		if j >= 0 {
			day = date[j]
			j--
		}
		if j >= 0 {
			month = date[j]
			j--
		}
		if j >= 0 {
			year = date[j]
		}
		clock = s[i+1:]
	}
	hms, err := atoiFields(strings.Split(clock, ":"))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadTimestamp, s)
	}
	hour, minute, sec := 0, 0, 0
	j := len(hms) - 1
	if j >= 0 {
		sec = hms[j]
		j--
	}
	if j >= 0 {
		minute = hms[j]
		j--
	}
	if j >= 0 {
		hour = hms[j]
	}
	return time.Date(year, time.Month(month), day, hour, minute, sec, ms*int(time.Millisecond), time.UTC), nil
}

func atoiFields(parts []string) ([]int, error) {
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// 文档注释：由前两个时间戳推导时间步长
// 返回：起始时间与步长；仅一个时间戳时步长为 0。
func TimestepDuration(stamps []string) (time.Time, time.Duration, error) {
	if len(stamps) == 0 {
		return time.Time{}, 0, fmt.Errorf("%w: no stamps", ErrBadTimestamp)
	}
	start, err := ParseXTime(stamps[0])
	if err != nil {
		return time.Time{}, 0, err
	}
	if len(stamps) < 2 {
		return start, 0, nil
	}
	next, err := ParseXTime(stamps[1])
	if err != nil {
		return time.Time{}, 0, err
	}
	return start, next.Sub(start), nil
}

// TimeAxis：等步长时间轴
func TimeAxis(start time.Time, step time.Duration, n int) []time.Time {
	out := make([]time.Time, n)
	for i := range out {
		out[i] = start.Add(time.Duration(i) * step)
	}
	return out
}

// MonthlyAxis：按月递增的时间轴，第一个刻度为起始时间后一个月
func MonthlyAxis(start time.Time, n int) []time.Time {
	out := make([]time.Time, n)
	for i := range out {
		out[i] = start.AddDate(0, i+1, 0)
	}
	return out
}
