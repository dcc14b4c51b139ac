package timeutil

import "testing"

// ── TimeToMinutes 测试 ──

func TestTimeToMinutes_Valid(t *testing.T) {
	cases := map[string]int{
		"00:00": 0,
		"08:55": 535,
		"11:30": 690,
		"23:59": 1439,
	}
	for input, want := range cases {
		got, err := TimeToMinutes(input)
		if err != nil {
			t.Fatalf("TimeToMinutes(%q) 应成功: %v", input, err)
		}
		if got != want {
			t.Errorf("TimeToMinutes(%q) 期望 %d，实际 %d", input, want, got)
		}
	}
}

func TestTimeToMinutes_Invalid(t *testing.T) {
	for _, input := range []string{"", "930", "9:3:0", "24:00", "12:60", "ab:cd", "-1:30"} {
		if _, err := TimeToMinutes(input); err == nil {
			t.Errorf("TimeToMinutes(%q) 应返回格式错误", input)
		}
	}
}

// 非零填充与带符号写法也必须拒绝，不因 Atoi 的宽容而放行
func TestTimeToMinutes_RejectsLooseShapes(t *testing.T) {
	for _, input := range []string{"9:00", "+9:00", "09:+5", "09: 5", " 9:00", "09:00 ", "0９:00"} {
		if _, err := TimeToMinutes(input); err == nil {
			t.Errorf("TimeToMinutes(%q) 应返回格式错误", input)
		}
	}
}

// ── MinutesToTime 测试 ──

func TestMinutesToTime_ZeroPadded(t *testing.T) {
	cases := map[int]string{
		0:    "00:00",
		65:   "01:05",
		690:  "11:30",
		1439: "23:59",
	}
	for input, want := range cases {
		if got := MinutesToTime(input); got != want {
			t.Errorf("MinutesToTime(%d) 期望 %q，实际 %q", input, want, got)
		}
	}
}

func TestMinutesToTime_RoundTrip(t *testing.T) {
	for m := 0; m < 1440; m += 7 {
		got, err := TimeToMinutes(MinutesToTime(m))
		if err != nil {
			t.Fatalf("往返解析失败: %v", err)
		}
		if got != m {
			t.Errorf("往返 %d 期望不变，实际 %d", m, got)
		}
	}
}

// ── DurationMinutes 测试 ──

func TestDurationMinutes_SameDay(t *testing.T) {
	if got := DurationMinutes(540, 1020); got != 480 {
		t.Errorf("09:00→17:00 期望 480，实际 %d", got)
	}
	if got := DurationMinutes(690, 690); got != 0 {
		t.Errorf("同一时刻期望 0，实际 %d", got)
	}
}

func TestDurationMinutes_CrossMidnight(t *testing.T) {
	// 22:00 → 次日 06:00
	if got := DurationMinutes(1320, 360); got != 480 {
		t.Errorf("跨天时长期望 480，实际 %d", got)
	}
}

func TestDurationMinutes_NeverNegative(t *testing.T) {
	for start := 0; start < 1440; start += 97 {
		for end := 0; end < 1440; end += 89 {
			if got := DurationMinutes(start, end); got < 0 {
				t.Fatalf("DurationMinutes(%d, %d) = %d，不应为负", start, end, got)
			}
		}
	}
}

// ── RoundDownToQuarterHour 测试 ──

func TestRoundDownToQuarterHour(t *testing.T) {
	cases := map[string]string{
		"10:07": "10:00",
		"10:15": "10:15",
		"10:29": "10:15",
		"23:59": "23:45",
		"00:00": "00:00",
	}
	for input, want := range cases {
		got, err := RoundDownToQuarterHour(input)
		if err != nil {
			t.Fatalf("RoundDownToQuarterHour(%q) 应成功: %v", input, err)
		}
		if got != want {
			t.Errorf("RoundDownToQuarterHour(%q) 期望 %q，实际 %q", input, want, got)
		}
	}
}

func TestRoundDownToQuarterHour_AlwaysMultipleOf15(t *testing.T) {
	for m := 0; m < 1440; m += 11 {
		rounded, err := RoundDownToQuarterHour(MinutesToTime(m))
		if err != nil {
			t.Fatalf("取整失败: %v", err)
		}
		got, _ := TimeToMinutes(rounded)
		if got%15 != 0 {
			t.Fatalf("%s 取整后 %s 不是 15 分钟倍数", MinutesToTime(m), rounded)
		}
		if got > m || m-got >= 15 {
			t.Fatalf("%s 取整后 %s 不在正确区间", MinutesToTime(m), rounded)
		}
	}
}

func TestRoundDownToQuarterHour_Invalid(t *testing.T) {
	if _, err := RoundDownToQuarterHour("25:00"); err == nil {
		t.Error("无效时刻应返回错误")
	}
}
