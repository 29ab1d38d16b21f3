package game

// BlockField is the destructible grid. Positions are fixed when the field is
// built; a block only ever goes from standing to destroyed.
type BlockField struct {
	blocks    []Block
	remaining int
}

// NewBlockField lays out cfg.BlockRows x cfg.BlockCols blocks in row-major order.
func NewBlockField(cfg Config) *BlockField {
	f := &BlockField{
		blocks: make([]Block, 0, cfg.BlockRows*cfg.BlockCols),
	}
	for row := 0; row < cfg.BlockRows; row++ {
		for col := 0; col < cfg.BlockCols; col++ {
			f.blocks = append(f.blocks, Block{
				X: float64(col) * (cfg.BlockWidth + cfg.BlockGap),
				Y: float64(row)*(cfg.BlockHeight+cfg.BlockGap) + cfg.TopMargin,
			})
		}
	}
	f.remaining = len(f.blocks)
	return f
}

// MarkDestroyed flags the given blocks and returns how many were newly
// destroyed. Already destroyed or out-of-range indices are ignored.
func (f *BlockField) MarkDestroyed(indices ...int) int {
	n := 0
	for _, i := range indices {
		if i < 0 || i >= len(f.blocks) || f.blocks[i].Destroyed {
			continue
		}
		f.blocks[i].Destroyed = true
		n++
	}
	f.remaining -= n
	return n
}

func (f *BlockField) AllDestroyed() bool {
	return f.remaining == 0
}

func (f *BlockField) Remaining() int {
	return f.remaining
}

func (f *BlockField) Len() int {
	return len(f.blocks)
}

// Blocks returns a copy of the grid.
func (f *BlockField) Blocks() []Block {
	out := make([]Block, len(f.blocks))
	copy(out, f.blocks)
	return out
}

// view exposes the live grid to the simulator without copying.
func (f *BlockField) view() []Block {
	return f.blocks
}
