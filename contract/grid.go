package contract

//
// Board evaluation + rendering.
//
// Evaluate is pure: it only looks at the marks, so it is safe to call after
// every move and from read-only queries alike.
//

// lines lists every row, column and diagonal as (x,y) triples.
var lines = [8][3][2]int{
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 2}, {1, 1}, {2, 0}},
}

// Evaluate reports the winner of a completed line, Draw when all nine cells
// are marked without one, and Undetermined otherwise.
func Evaluate(b Board) Outcome {
	for _, l := range lines {
		a := b[l[0][0]][l[0][1]]
		if a != Empty && a == b[l[1][0]][l[1][1]] && a == b[l[2][0]][l[2][1]] {
			return outcomeFor(a)
		}
	}
	if b.full() {
		return Draw
	}
	return Undetermined
}

func outcomeFor(mark Cell) Outcome {
	if mark == Player1Mark {
		return Player1Wins
	}
	return Player2Wins
}

func (b Board) full() bool {
	for x := 0; x < BoardSize; x++ {
		for y := 0; y < BoardSize; y++ {
			if b[x][y] == Empty {
				return false
			}
		}
	}
	return true
}

// String flattens the board to '0','1','2' per cell, x-major.
func (b Board) String() string {
	out := make([]byte, 0, BoardSize*BoardSize)
	for x := 0; x < BoardSize; x++ {
		for y := 0; y < BoardSize; y++ {
			out = append(out, byte('0'+b[x][y]))
		}
	}
	return string(out)
}

// ---------- 2-bit packing ----------

// packBoard stores 2 bits per cell, 4 cells per byte.
func packBoard(b Board) [3]byte {
	var out [3]byte
	for x := 0; x < BoardSize; x++ {
		for y := 0; y < BoardSize; y++ {
			idx := x*BoardSize + y
			byteIdx, bitShift := idx/4, (idx%4)*2
			out[byteIdx] |= byte(b[x][y]&0x03) << bitShift
		}
	}
	return out
}

func unpackBoard(p []byte) Board {
	var b Board
	for x := 0; x < BoardSize; x++ {
		for y := 0; y < BoardSize; y++ {
			idx := x*BoardSize + y
			byteIdx, bitShift := idx/4, (idx%4)*2
			b[x][y] = Cell((p[byteIdx] >> bitShift) & 0x03)
		}
	}
	return b
}
