package notify

import (
	"fmt"
	"html"
	"math"
	"strings"
	"time"

	"bilitool/constant"
	"bilitool/request"
	"bilitool/service"
)

// Report is the outcome of one run, rendered into a chat message.
type Report struct {
	User     *request.UserInfo
	LoginErr error
	Tasks    *service.TaskStatus
	DailyExp int64
	Time     time.Time
}

func (r Report) Format(loc *time.Location) string {
	var lines []string
	lines = append(lines, "📺 <b>每日任务报告</b>")

	if r.User == nil {
		lines = append(lines, "❌ 登录失败，Cookie可能失效了，请检查DEDEUSERID、SESSDATA、BILI_JCT")
		if r.LoginErr != nil {
			lines = append(lines, fmt.Sprintf("原因: %s", html.EscapeString(r.LoginErr.Error())))
		}
		lines = append(lines, formatTime(r.Time, loc))
		return strings.Join(lines, "\n")
	}

	level := r.User.LevelInfo
	lines = append(lines, fmt.Sprintf("👤 账号: %s", html.EscapeString(r.User.FuzzyUname())))
	lines = append(lines, fmt.Sprintf("🪙 硬币余额: %s", formatCoins(r.User.Coins())))

	if days, ok := service.DaysToNextLevel(level, r.DailyExp); ok {
		next, _ := level.NextExp.Value()
		lines = append(lines, fmt.Sprintf("📈 等级: Lv%d (%d/%d)，距离升级到Lv%d还有 %d 天",
			level.CurrentLevel, level.CurrentExp, next, level.CurrentLevel+1, days))
	} else {
		lines = append(lines, fmt.Sprintf("📈 等级: Lv%d，经验值: %d", level.CurrentLevel, level.CurrentExp))
	}

	if r.Tasks != nil {
		lines = append(lines, "")
		if !r.Tasks.Trusted() {
			lines = append(lines, fmt.Sprintf("⚠️ 获取任务状态失败 (尝试 %d 次, code %d)，以下数据可能不准确",
				r.Tasks.Attempts, r.Tasks.Code))
		}
		info := r.Tasks.Info
		lines = append(lines, fmt.Sprintf("%s 每日登录", check(info.Login)))
		lines = append(lines, fmt.Sprintf("%s 观看视频", check(info.Watch)))
		lines = append(lines, fmt.Sprintf("%s 分享视频", check(info.Share)))
		lines = append(lines, fmt.Sprintf("%s 投币经验 %d/%d", check(info.Coins >= constant.MaxCoinExp), info.Coins, constant.MaxCoinExp))
		lines = append(lines, fmt.Sprintf("• 今日经验: %d/%d", info.TodayExp(), constant.EveryDayExp))
	}

	lines = append(lines, formatTime(r.Time, loc))
	return strings.Join(lines, "\n")
}

func check(done bool) string {
	if done {
		return "✅"
	}
	return "❌"
}

func formatTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		t = time.Now()
	}
	if loc != nil {
		t = t.In(loc)
	}
	return fmt.Sprintf("\n🕒 %s", t.Format("2006-01-02 15:04:05 MST"))
}

func formatCoins(coins float64) string {
	if coins == 0 {
		return "0"
	}
	coins = math.Round(coins*10) / 10

	intPart, fracPart := math.Modf(coins)
	intStr := fmt.Sprintf("%d", int64(intPart))
	for i := len(intStr) - 3; i > 0 && intStr[i-1] != '-'; i -= 3 {
		intStr = intStr[:i] + "," + intStr[i:]
	}

	if fracPart == 0 {
		return intStr
	}
	return fmt.Sprintf("%s.%d", intStr, int64(math.Round(math.Abs(fracPart)*10)))
}
