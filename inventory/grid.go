package inventory

import (
	"fmt"

	"github.com/fish-tennis/bagserver/item"
)

// 固定行列的格子容器
// 索引i对应第i/columns行,第i%columns列
type Grid struct {
	rows    int
	columns int
	cells   []*item.Stack
	// 格子变化时的回调
	onMarkDirty func()
}

func NewGrid(rows, columns int) *Grid {
	if rows < 0 || columns < 0 {
		panic(fmt.Sprintf("bad grid size %vx%v", rows, columns))
	}
	return &Grid{
		rows:    rows,
		columns: columns,
		cells:   make([]*item.Stack, rows*columns),
	}
}

func (g *Grid) Rows() int {
	return g.rows
}

func (g *Grid) Columns() int {
	return g.columns
}

func (g *Grid) Size() int {
	return len(g.cells)
}

func (g *Grid) Get(index int) (*item.Stack, error) {
	if index < 0 || index >= len(g.cells) {
		return nil, fmt.Errorf("%w: %v not in [0,%v)", ErrIndexOutOfRange, index, len(g.cells))
	}
	return g.cells[index], nil
}

func (g *Grid) Set(index int, stack *item.Stack) error {
	if index < 0 || index >= len(g.cells) {
		return fmt.Errorf("%w: %v not in [0,%v)", ErrIndexOutOfRange, index, len(g.cells))
	}
	if stack.IsEmpty() {
		stack = nil
	}
	g.cells[index] = stack
	g.MarkDirty()
	return nil
}

// 行列坐标访问
func (g *Grid) At(row, column int) (*item.Stack, error) {
	if row < 0 || row >= g.rows || column < 0 || column >= g.columns {
		return nil, fmt.Errorf("%w: (%v,%v) not in %vx%v", ErrIndexOutOfRange, row, column, g.rows, g.columns)
	}
	return g.cells[row*g.columns+column], nil
}

// 格子内容的浅拷贝
func (g *Grid) Stacks() []*item.Stack {
	stacks := make([]*item.Stack, len(g.cells))
	copy(stacks, g.cells)
	return stacks
}

func (g *Grid) IsEmpty() bool {
	for _, s := range g.cells {
		if !s.IsEmpty() {
			return false
		}
	}
	return true
}

func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = nil
	}
	g.MarkDirty()
}

func (g *Grid) MarkDirty() {
	if g.onMarkDirty != nil {
		g.onMarkDirty()
	}
}

func (g *Grid) SetMarkDirtyHook(hook func()) {
	g.onMarkDirty = hook
}
