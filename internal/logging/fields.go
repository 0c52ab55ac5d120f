package logging

import "github.com/sirupsen/logrus"

// BaseFields 构建 action + 配置路径等基础字段，便于不同入口复用。
func BaseFields(action, configPath string) logrus.Fields {
	return logrus.Fields{
		"action":     action,
		"configPath": configPath,
	}
}

// StageFields 描述更新流水线中的单个阶段。
func StageFields(stage string, season int) logrus.Fields {
	return logrus.Fields{
		"action": "update_stage",
		"stage":  stage,
		"season": season,
	}
}

// RequestFields 提供 HTTP 请求日志字段。
func RequestFields(requestID, method, path string, status int) logrus.Fields {
	return logrus.Fields{
		"request_id": requestID,
		"method":     method,
		"path":       path,
		"status":     status,
	}
}
