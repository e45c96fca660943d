package service

import (
	"context"
	"fmt"
	"time"

	"bilitool/constant"
	"bilitool/request"

	"go.uber.org/zap"
)

// RetryPolicy bounds how often a failed task status query is repeated.
// Failures here are non-zero envelope codes, not transport errors.
type RetryPolicy struct {
	MaxRetries int
	Wait       time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: constant.TaskStatusRetry}
}

type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeRecovered
	OutcomeExhausted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeRecovered:
		return "recovered"
	case OutcomeExhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

type TaskStatus struct {
	Info     request.DailyTaskInfo
	Outcome  Outcome
	Attempts int
	// Code of the last envelope, non-zero only when Outcome is OutcomeExhausted.
	Code int
}

// Trusted reports whether Info came from a successful envelope.
func (t *TaskStatus) Trusted() bool {
	return t.Outcome != OutcomeExhausted
}

// GetDailyTaskStatus queries which daily tasks are done. A non-zero envelope
// code is retried per the RetryPolicy; when every attempt fails the payload
// of the last attempt is returned with OutcomeExhausted and no error.
func (s *AccountService) GetDailyTaskStatus(ctx context.Context) (*TaskStatus, error) {
	for attempt := 1; ; attempt++ {
		resp, err := s.api.GetDailyTaskRewardInfo(ctx)
		if err != nil {
			return nil, fmt.Errorf("get daily task reward info: %w", err)
		}
		if resp == nil {
			resp = &request.Response[request.DailyTaskInfo]{Code: -1, Message: "empty response"}
		}

		if resp.OK() {
			outcome := OutcomeSuccess
			if attempt > 1 {
				outcome = OutcomeRecovered
			}
			return &TaskStatus{Info: resp.Data, Outcome: outcome, Attempts: attempt}, nil
		}

		if attempt > s.retry.MaxRetries {
			s.logger.Warn("获取今日任务完成状态失败，重试次数已用尽",
				zap.Int("attempts", attempt),
				zap.String("result", resp.JSON()))
			return &TaskStatus{Info: resp.Data, Outcome: OutcomeExhausted, Attempts: attempt, Code: resp.Code}, nil
		}

		s.logger.Warn("获取今日任务完成状态失败",
			zap.Int("attempt", attempt),
			zap.String("result", resp.JSON()))

		if err := sleep(ctx, s.retry.Wait); err != nil {
			return nil, err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
