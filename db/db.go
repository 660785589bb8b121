package db

import (
	"errors"

	"github.com/fish-tennis/bagserver/item"
)

// 背包容器状态
type BagState int32

const (
	BagStateClosed BagState = iota
	BagStateOpened
)

func (s BagState) String() string {
	if s == BagStateOpened {
		return "opened"
	}
	return "closed"
}

var (
	// 存储层不可用(网络错误等),和背包数据本身无关
	ErrStoreUnavailable = errors.New("bag store unavailable")
)

// 背包内容存储接口
// 以物品堆的身份(Uid)关联一份持久化的物品列表和开关状态
type BagContainer interface {
	// 读取背包内容,没有保存过的背包返回rows*columns个空格子
	Contents(stack *item.Stack) ([]*item.Stack, error)

	// 保存背包内容
	SetContents(stack *item.Stack, contents []*item.Stack) error

	// 设置开关状态
	SetState(stack *item.Stack, state BagState) error
}

// 查找物品堆对应的背包容器
// 只有提供背包能力的物品才有对应的容器
type BagContainerLookup interface {
	Find(stack *item.Stack) (BagContainer, bool)
}

// 没有保存过的背包的初始内容
func EmptyContents(stack *item.Stack) []*item.Stack {
	spec, ok := stack.Bag()
	if !ok {
		return nil
	}
	return make([]*item.Stack, spec.Size())
}

// 内容列表深拷贝,存储层和背包界面之间不共享物品堆指针
func CopyContents(contents []*item.Stack) []*item.Stack {
	copied := make([]*item.Stack, len(contents))
	for i, s := range contents {
		copied[i] = s.Copy()
	}
	return copied
}
