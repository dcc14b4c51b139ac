package errors

import "errors"

// ErrOptimisticLock 版本号冲突：记录在读取后已被其他写入者修改
var ErrOptimisticLock = errors.New("记录已被其他操作修改，请刷新后重试")
