package utils

import "github.com/mssola/useragent"

// UserAgent 从 User-Agent 头解析出的客户端信息
type UserAgent struct {
	Browser        string
	BrowserVersion string
	OS             string
	Platform       string
	Engine         string
	Mobile         bool
	Bot            bool
}

const unknown = "Unknown"

// 与登录日志列宽一致
const uaFieldLimit = 50

// ParseUserAgent 解析浏览器、系统、平台与内核,识别不出的字段为 Unknown
func ParseUserAgent(raw string) UserAgent {
	result := UserAgent{
		Browser:        unknown,
		BrowserVersion: unknown,
		OS:             unknown,
		Platform:       unknown,
		Engine:         unknown,
	}
	if raw == "" {
		return result
	}

	ua := useragent.New(raw)
	name, version := ua.Browser()
	engine, _ := ua.Engine()
	result.Browser = orUnknown(name)
	result.BrowserVersion = orUnknown(version)
	result.OS = orUnknown(ua.OS())
	result.Platform = orUnknown(ua.Platform())
	result.Engine = orUnknown(engine)
	result.Mobile = ua.Mobile()
	result.Bot = ua.Bot()
	return result
}

func orUnknown(s string) string {
	if s == "" {
		return unknown
	}
	return Truncate(s, uaFieldLimit)
}
