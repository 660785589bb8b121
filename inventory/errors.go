package inventory

import "errors"

var (
	// 格子索引越界
	ErrIndexOutOfRange = errors.New("index out of range")
	// 物品堆没有对应的背包存储(不是背包物品)
	ErrBindingMissing = errors.New("bag binding missing")
	// 背包禁止保存或加载
	ErrPermissionDenied = errors.New("bag permission denied")
	// 存储的内容长度和格子数量不一致
	ErrIndexViolation = errors.New("bag contents size mismatch")
	// 打开背包界面的数据格式错误
	ErrMalformedPayload = errors.New("malformed bag payload")
)
