package projection

import (
	"go.uber.org/zap"

	"poly_chat_client/pkg/errorx"
)

// Failure 把失败转换为错误通知，本地状态由调用方保持不变
// 参数错误只展示校验信息，其余错误带上动作描述并记录日志
func Failure(o Observer, action string, err error) {
	if err == nil {
		return
	}
	if errorx.IsValidation(err) {
		Notify(o, LevelError, errorx.Message(err))
		return
	}
	zap.L().Warn(action, zap.Int("code", errorx.GetCode(err)), zap.Error(err))
	Notify(o, LevelError, action+": "+errorx.Message(err))
}
