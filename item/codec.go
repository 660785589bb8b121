package item

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// 物品列表的二进制存储格式(protobuf wire格式,不依赖生成代码)
//
//	1: size   varint
//	2: cell   bytes, repeated
//	   1: slot   varint
//	   2: item   string
//	   3: count  varint
//	   4: uid    varint
//	   5: name   string
const (
	fieldSize protowire.Number = 1
	fieldCell protowire.Number = 2

	fieldCellSlot  protowire.Number = 1
	fieldCellItem  protowire.Number = 2
	fieldCellCount protowire.Number = 3
	fieldCellUid   protowire.Number = 4
	fieldCellName  protowire.Number = 5
)

// 存储的格子数上限
const MaxContentsSize = 64 * 64

var ErrCorruptContents = errors.New("corrupt stored contents")

// 编码,空格子不写入
func AppendStacks(b []byte, stacks []*Stack) []byte {
	b = protowire.AppendTag(b, fieldSize, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(len(stacks)))
	for slot, s := range stacks {
		if s.IsEmpty() {
			continue
		}
		var cell []byte
		cell = protowire.AppendTag(cell, fieldCellSlot, protowire.VarintType)
		cell = protowire.AppendVarint(cell, uint64(slot))
		cell = protowire.AppendTag(cell, fieldCellItem, protowire.BytesType)
		cell = protowire.AppendString(cell, s.Def.Id)
		cell = protowire.AppendTag(cell, fieldCellCount, protowire.VarintType)
		cell = protowire.AppendVarint(cell, uint64(s.Count))
		if s.Uid != 0 {
			cell = protowire.AppendTag(cell, fieldCellUid, protowire.VarintType)
			cell = protowire.AppendVarint(cell, uint64(s.Uid))
		}
		if s.CustomName != "" {
			cell = protowire.AppendTag(cell, fieldCellName, protowire.BytesType)
			cell = protowire.AppendString(cell, s.CustomName)
		}
		b = protowire.AppendTag(b, fieldCell, protowire.BytesType)
		b = protowire.AppendBytes(b, cell)
	}
	return b
}

// 解码,物品id通过registry解析
func ConsumeStacks(b []byte, registry *Registry) ([]*Stack, error) {
	var stacks []*Stack
	type cellData struct {
		slot  int
		stack *Stack
	}
	var cells []cellData
	size := -1
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", ErrCorruptContents, protowire.ParseError(n))
		}
		b = b[n:]
		switch {
		case num == fieldSize && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: %v", ErrCorruptContents, protowire.ParseError(n))
			}
			size = int(v)
			b = b[n:]
		case num == fieldCell && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: %v", ErrCorruptContents, protowire.ParseError(n))
			}
			slot, stack, err := consumeCell(v, registry)
			if err != nil {
				return nil, err
			}
			cells = append(cells, cellData{slot: slot, stack: stack})
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("%w: %v", ErrCorruptContents, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	if size < 0 {
		return nil, fmt.Errorf("%w: missing size", ErrCorruptContents)
	}
	if size > MaxContentsSize {
		return nil, fmt.Errorf("%w: size %v", ErrCorruptContents, size)
	}
	stacks = make([]*Stack, size)
	for _, cell := range cells {
		if cell.slot < 0 || cell.slot >= size {
			return nil, fmt.Errorf("%w: slot %v out of size %v", ErrCorruptContents, cell.slot, size)
		}
		stacks[cell.slot] = cell.stack
	}
	return stacks, nil
}

func consumeCell(b []byte, registry *Registry) (int, *Stack, error) {
	slot := 0
	stack := &Stack{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return 0, nil, fmt.Errorf("%w: %v", ErrCorruptContents, protowire.ParseError(n))
		}
		b = b[n:]
		switch {
		case typ == protowire.VarintType && (num == fieldCellSlot || num == fieldCellCount || num == fieldCellUid):
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, nil, fmt.Errorf("%w: %v", ErrCorruptContents, protowire.ParseError(n))
			}
			switch num {
			case fieldCellSlot:
				slot = int(v)
			case fieldCellCount:
				stack.Count = int(v)
			case fieldCellUid:
				stack.Uid = int64(v)
			}
			b = b[n:]
		case typ == protowire.BytesType && (num == fieldCellItem || num == fieldCellName):
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return 0, nil, fmt.Errorf("%w: %v", ErrCorruptContents, protowire.ParseError(n))
			}
			if num == fieldCellItem {
				stack.Def = registry.Get(v)
				if stack.Def == nil {
					return 0, nil, fmt.Errorf("%w: unknown item %v", ErrCorruptContents, v)
				}
			} else {
				stack.CustomName = v
			}
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return 0, nil, fmt.Errorf("%w: %v", ErrCorruptContents, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return slot, stack, nil
}
