package errors

import "errors"

// ErrKeyConflict 唯一键冲突：同一日期同一泵站已存在日志记录
// 由 Repository 的原子插入（ON CONFLICT DO NOTHING）返回，Service 层据此进入授权覆盖流程
var ErrKeyConflict = errors.New("该泵站在所选日期已有记录")
