package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"bilitool/request"
	"bilitool/service"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSender struct {
	failures int
	calls    []*bot.SendMessageParams
}

func (f *fakeSender) SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	f.calls = append(f.calls, params)
	if len(f.calls) <= f.failures {
		return nil, errors.New("telegram: 502 bad gateway")
	}
	return &models.Message{ID: len(f.calls)}, nil
}

var reportTime = time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)

func loggedInReport() Report {
	money := 1234.5
	return Report{
		User: &request.UserInfo{
			IsLogin: true,
			Uname:   "rayrecord<script>",
			Money:   &money,
			LevelInfo: request.LevelInfo{
				CurrentLevel: 3,
				CurrentExp:   200,
				NextExp:      request.NewNextExp(1000),
			},
		},
		Tasks: &service.TaskStatus{
			Info:     request.DailyTaskInfo{Login: true, Watch: true, Coins: 20},
			Outcome:  service.OutcomeSuccess,
			Attempts: 1,
		},
		DailyExp: 100,
		Time:     reportTime,
	}
}

func TestReportFormat(t *testing.T) {
	msg := loggedInReport().Format(time.UTC)

	assert.Contains(t, msg, "r***************&gt;")
	assert.NotContains(t, msg, "rayrecord")
	assert.Contains(t, msg, "硬币余额: 1,234.5")
	assert.Contains(t, msg, "Lv3 (200/1000)，距离升级到Lv4还有 8 天")
	assert.Contains(t, msg, "✅ 每日登录")
	assert.Contains(t, msg, "❌ 分享视频")
	assert.Contains(t, msg, "❌ 投币经验 20/50")
	assert.Contains(t, msg, "今日经验: 30/65")
	assert.Contains(t, msg, "2026-10-18 08:00:00 UTC")
	assert.NotContains(t, msg, "可能不准确")
}

func TestReportFormatMaxLevel(t *testing.T) {
	r := loggedInReport()
	r.User.LevelInfo = request.LevelInfo{CurrentLevel: 6, CurrentExp: 28900}

	msg := r.Format(time.UTC)
	assert.Contains(t, msg, "等级: Lv6，经验值: 28900")
	assert.NotContains(t, msg, "距离升级")
}

func TestReportFormatExhaustedTasks(t *testing.T) {
	r := loggedInReport()
	r.Tasks = &service.TaskStatus{Outcome: service.OutcomeExhausted, Attempts: 2, Code: -509}

	msg := r.Format(time.UTC)
	assert.Contains(t, msg, "尝试 2 次, code -509")
}

func TestReportFormatLoginFailed(t *testing.T) {
	msg := Report{LoginErr: service.ErrLoginFailed, Time: reportTime}.Format(nil)

	assert.Contains(t, msg, "登录失败")
	assert.Contains(t, msg, "BILI_JCT")
	assert.NotContains(t, msg, "硬币")
}

func TestFormatCoins(t *testing.T) {
	assert.Equal(t, "0", formatCoins(0))
	assert.Equal(t, "150", formatCoins(150))
	assert.Equal(t, "12.5", formatCoins(12.5))
	assert.Equal(t, "1,234,567", formatCoins(1234567))
}

func newTestTelegram(sender Sender) *Telegram {
	tg := newTelegram(sender, 42, time.UTC, zap.NewNop())
	tg.retryWait = time.Millisecond
	return tg
}

func TestTelegramNotify(t *testing.T) {
	sender := &fakeSender{}
	require.NoError(t, newTestTelegram(sender).Notify(context.Background(), loggedInReport()))

	require.Len(t, sender.calls, 1)
	assert.Equal(t, int64(42), sender.calls[0].ChatID)
	assert.Equal(t, models.ParseModeHTML, sender.calls[0].ParseMode)
	assert.Contains(t, sender.calls[0].Text, "每日任务报告")
}

func TestTelegramNotifyRetries(t *testing.T) {
	sender := &fakeSender{failures: 2}
	require.NoError(t, newTestTelegram(sender).Notify(context.Background(), loggedInReport()))
	assert.Len(t, sender.calls, 3)
}

func TestTelegramNotifyGivesUp(t *testing.T) {
	sender := &fakeSender{failures: 10}
	err := newTestTelegram(sender).Notify(context.Background(), loggedInReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Len(t, sender.calls, 3)
}

func TestNop(t *testing.T) {
	var n Notifier = Nop{}
	assert.NoError(t, n.Notify(context.Background(), Report{}))
}
