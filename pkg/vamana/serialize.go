package vamana

import (
	"encoding/binary"
	"io"
)

// WriteGraph serializes g as N:int32 followed by, for each vertex in index
// order, k_v:int32 and k_v neighbor int32s.
func WriteGraph(w io.Writer, g *Graph) error {
	n := g.Size()
	if err := binary.Write(w, binary.LittleEndian, int32(n)); err != nil {
		return &IoError{Op: "write vertex count", Err: err}
	}

	for v := uint32(0); v < n; v++ {
		neighbors := g.NeighborSlice(v)
		if err := binary.Write(w, binary.LittleEndian, int32(len(neighbors))); err != nil {
			return &IoError{Op: "write out-degree", Err: err}
		}
		for _, w32 := range neighbors {
			if err := binary.Write(w, binary.LittleEndian, int32(w32)); err != nil {
				return &IoError{Op: "write neighbor", Err: err}
			}
		}
	}
	return nil
}

// ReadGraph deserializes a graph previously written by WriteGraph.
func ReadGraph(r io.Reader) (*Graph, error) {
	var n int32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, &IoError{Op: "read vertex count", Err: err}
	}
	if n < 0 {
		return nil, &ShapeError{Msg: "negative vertex count in graph file"}
	}

	g := NewGraph(uint32(n))
	for v := uint32(0); v < uint32(n); v++ {
		var k int32
		if err := binary.Read(r, binary.LittleEndian, &k); err != nil {
			return nil, &IoError{Op: "read out-degree", Err: err}
		}
		if k < 0 {
			return nil, &ShapeError{Msg: "negative out-degree in graph file"}
		}

		for i := int32(0); i < k; i++ {
			var w int32
			if err := binary.Read(r, binary.LittleEndian, &w); err != nil {
				return nil, &IoError{Op: "read neighbor", Err: err}
			}
			if err := g.Insert(v, uint32(w)); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}
