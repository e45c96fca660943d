package constant

import (
	"time"
)

const (
	BaseURL          = "https://api.bilibili.com"
	Origin           = "https://www.bilibili.com"
	NavPath          = "/x/web-interface/nav"
	ExpRewardPath    = "/x/member/web/exp/reward"
	HTTPTimeout      = 15 * time.Second
	TaskStatusRetry  = 1
	NotifyMaxRetries = 3
	NotifyRetryWait  = time.Second
)

const (
	// EveryDayExp is the experience gained by finishing every daily task:
	// login 5, watch 5, share 5, coin donation 50.
	EveryDayExp = 65
	MaxCoinExp  = 50
	MaxLevel    = 6
)
