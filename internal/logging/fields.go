package logging

import "github.com/sirupsen/logrus"

// BaseFields 构建 action + 配置路径等基础字段，便于不同入口复用。
func BaseFields(action, configPath string) logrus.Fields {
	return logrus.Fields{
		"action":     action,
		"configPath": configPath,
	}
}

// RequestFields 提供请求 id、缓存键与结果来源字段，供代理请求日志复用。
func RequestFields(requestID, key, source string) logrus.Fields {
	return logrus.Fields{
		"request_id": requestID,
		"cache_key":  key,
		"source":     source,
		"cache_hit":  source == "cache",
	}
}
