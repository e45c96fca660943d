package request

import "net/http"

// Credentials are the three session cookies the platform issues on login.
type Credentials struct {
	DedeUserID string `json:"DedeUserID"`
	SessData   string `json:"SESSDATA"`
	BiliJct    string `json:"bili_jct"`
}

func (c Credentials) Complete() bool {
	return c.DedeUserID != "" && c.SessData != "" && c.BiliJct != ""
}

func (c Credentials) Cookies() []*http.Cookie {
	return []*http.Cookie{
		{Name: "DedeUserID", Value: c.DedeUserID},
		{Name: "SESSDATA", Value: c.SessData},
		{Name: "bili_jct", Value: c.BiliJct},
	}
}
