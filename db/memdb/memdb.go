package memdb

import (
	"log/slog"

	"github.com/fish-tennis/bagserver/db"
	"github.com/fish-tennis/bagserver/item"
)

var _ db.BagContainerLookup = (*MemDb)(nil)

type bagRecord struct {
	contents []*item.Stack
	state    db.BagState
}

// 内存版背包存储,用于单机运行和测试
// 和World一样只在逻辑协程里访问,不加锁
type MemDb struct {
	records map[int64]*bagRecord
	// 写入次数,测试用
	writeCount int
}

func NewMemDb() *MemDb {
	return &MemDb{
		records: make(map[int64]*bagRecord),
	}
}

func (m *MemDb) Find(stack *item.Stack) (db.BagContainer, bool) {
	if _, ok := stack.Bag(); !ok {
		return nil, false
	}
	return (*memContainer)(m), true
}

// 直接读取存储的数据(不经过背包界面)
func (m *MemDb) Peek(uid int64) ([]*item.Stack, db.BagState, bool) {
	record, ok := m.records[uid]
	if !ok {
		return nil, db.BagStateClosed, false
	}
	return db.CopyContents(record.contents), record.state, true
}

func (m *MemDb) WriteCount() int {
	return m.writeCount
}

func (m *MemDb) record(stack *item.Stack) *bagRecord {
	uid := db.EnsureUid(stack)
	record, ok := m.records[uid]
	if !ok {
		record = &bagRecord{
			contents: db.EmptyContents(stack),
		}
		m.records[uid] = record
		slog.Debug("NewBagRecord", "uid", uid, "item", stack.Def.Id)
	}
	return record
}

type memContainer MemDb

func (c *memContainer) Contents(stack *item.Stack) ([]*item.Stack, error) {
	if stack.Uid == 0 {
		return db.EmptyContents(stack), nil
	}
	record, ok := c.records[stack.Uid]
	if !ok {
		return db.EmptyContents(stack), nil
	}
	return db.CopyContents(record.contents), nil
}

func (c *memContainer) SetContents(stack *item.Stack, contents []*item.Stack) error {
	record := (*MemDb)(c).record(stack)
	record.contents = db.CopyContents(contents)
	c.writeCount++
	return nil
}

func (c *memContainer) SetState(stack *item.Stack, state db.BagState) error {
	(*MemDb)(c).record(stack).state = state
	return nil
}
