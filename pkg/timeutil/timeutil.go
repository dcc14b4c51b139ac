package timeutil

import "fmt"

// 时刻运算工具 — 全部为纯函数，供考勤/休息/导出模块共用。
//
// 约定：
//   - 时刻一律以 "HH:MM" 字符串在系统内流转（与数据库列一致）
//   - 分钟数为自当日 00:00 起的偏移量（0 ~ 1439）
//   - 跨天语义只存在于 DurationMinutes 中：end < start 视为次日结束

const minutesPerDay = 1440

// TimeToMinutes 将 "HH:MM" 解析为当日分钟偏移。
// 严格要求零填充五字符形态："9:00"、"+9:00" 等宽松写法一律拒绝；
// 小时超出 0-23 或分钟超出 0-59 视为格式错误。
func TimeToMinutes(hhmm string) (int, error) {
	if len(hhmm) != 5 || hhmm[2] != ':' {
		return 0, fmt.Errorf("无效的时刻格式 %q", hhmm)
	}
	for _, i := range [...]int{0, 1, 3, 4} {
		if hhmm[i] < '0' || hhmm[i] > '9' {
			return 0, fmt.Errorf("无效的时刻格式 %q", hhmm)
		}
	}
	h := int(hhmm[0]-'0')*10 + int(hhmm[1]-'0')
	m := int(hhmm[3]-'0')*10 + int(hhmm[4]-'0')
	if h > 23 || m > 59 {
		return 0, fmt.Errorf("时刻超出范围 %q", hhmm)
	}
	return h*60 + m, nil
}

// MinutesToTime 将分钟偏移还原为零填充的 "HH:MM"。
func MinutesToTime(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// DurationMinutes 计算 end - start 的分钟数。
// 结果为负时加 1440，即把 end 解释为次日时刻。
// 字面上的 end 早于 start 永远不是错误；需要当日语义的调用方必须自行预校验。
func DurationMinutes(start, end int) int {
	d := end - start
	if d < 0 {
		d += minutesPerDay
	}
	return d
}

// RoundDownToQuarterHour 将 "HH:MM" 向下取整到最近的 15 分钟边界。
func RoundDownToQuarterHour(hhmm string) (string, error) {
	minutes, err := TimeToMinutes(hhmm)
	if err != nil {
		return "", err
	}
	return MinutesToTime(minutes - minutes%15), nil
}
