package request

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type Response[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	TTL     int    `json:"ttl"`
	Data    T      `json:"data"`
}

// OK reports whether Data can be trusted.
func (r *Response[T]) OK() bool {
	return r != nil && r.Code == 0
}

func (r *Response[T]) JSON() string {
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Sprintf(`{"code":%d,"message":%q}`, r.Code, r.Message)
	}
	return string(b)
}

type UserInfo struct {
	IsLogin   bool      `json:"isLogin"`
	Mid       int64     `json:"mid"`
	Uname     string    `json:"uname"`
	Money     *float64  `json:"money"`
	LevelInfo LevelInfo `json:"level_info"`
	VipStatus int       `json:"vipStatus"`
}

// FuzzyUname masks everything but the first and last rune of the username.
func (u UserInfo) FuzzyUname() string {
	runes := []rune(u.Uname)
	switch len(runes) {
	case 0:
		return ""
	case 1:
		return "*"
	case 2:
		return string(runes[:1]) + "*"
	}

	return string(runes[0]) + strings.Repeat("*", len(runes)-2) + string(runes[len(runes)-1])
}

// Coins returns the coin balance, 0 when the platform omitted it.
func (u UserInfo) Coins() float64 {
	if u.Money == nil {
		return 0
	}
	return *u.Money
}

type LevelInfo struct {
	CurrentLevel int     `json:"current_level"`
	CurrentMin   int64   `json:"current_min"`
	CurrentExp   int64   `json:"current_exp"`
	NextExp      NextExp `json:"next_exp"`
}

// NextExp is the experience threshold of the next level. At the top level
// the platform sends the string "--" instead of a number.
type NextExp struct {
	value int64
	set   bool
}

func NewNextExp(v int64) NextExp {
	return NextExp{value: v, set: true}
}

func (n NextExp) Value() (int64, bool) {
	return n.value, n.set
}

func (n *NextExp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = NextExp{}
		return nil
	}

	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			// "--" and friends: no next level
			*n = NextExp{}
			return nil
		}
		*n = NewNextExp(v)
		return nil
	}

	var v int64
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("next_exp: %w", err)
	}
	*n = NewNextExp(v)
	return nil
}

func (n NextExp) MarshalJSON() ([]byte, error) {
	if !n.set {
		return []byte(`"--"`), nil
	}
	return []byte(strconv.FormatInt(n.value, 10)), nil
}

type DailyTaskInfo struct {
	Login        bool `json:"login"`
	Watch        bool `json:"watch"`
	Coins        int  `json:"coins"`
	Share        bool `json:"share"`
	Email        bool `json:"email"`
	Tel          bool `json:"tel"`
	SafeQuestion bool `json:"safe_question"`
	IdentifyCard bool `json:"identify_card"`
}

// TodayExp is the experience already earned today. Coins is reported by the
// platform as experience, not as a coin count.
func (d DailyTaskInfo) TodayExp() int {
	exp := d.Coins
	for _, done := range []bool{d.Login, d.Watch, d.Share} {
		if done {
			exp += 5
		}
	}
	return exp
}
