package db

import (
	"github.com/fish-tennis/bagserver/item"
	"github.com/fish-tennis/gentity/util"
)

// 物品堆第一次关联背包数据时分配唯一id
func EnsureUid(stack *item.Stack) int64 {
	if stack.Uid == 0 {
		stack.Uid = util.GenUniqueId()
	}
	return stack.Uid
}
