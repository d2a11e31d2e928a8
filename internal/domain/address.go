package domain

import (
	"strconv"
	"strings"
)

// Fixed address space of the estate: 8 blocks x 35 floors x 8 units.
const (
	FloorCount    = 35
	UnitCount     = 8
	RoomsPerBlock = FloorCount * UnitCount
)

// Block one tower of the estate
type Block struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

var blocks = []Block{
	{ID: "A", Name: "仁 (A座)"},
	{ID: "B", Name: "道 (B座)"},
	{ID: "C", Name: "新 (C座)"},
	{ID: "D", Name: "建 (D座)"},
	{ID: "E", Name: "泰 (E座)"},
	{ID: "F", Name: "昌 (F座)"},
	{ID: "G", Name: "盛 (G座)"},
	{ID: "H", Name: "志 (H座)"},
}

// Blocks returns a copy of the block list in display order.
func Blocks() []Block {
	out := make([]Block, len(blocks))
	copy(out, blocks)
	return out
}

// LookupBlock returns the block with the given id.
func LookupBlock(id string) (Block, bool) {
	for _, b := range blocks {
		if b.ID == id {
			return b, true
		}
	}
	return Block{}, false
}

func IsValidBlock(id string) bool {
	_, ok := LookupBlock(id)
	return ok
}

// Floors returns 1..FloorCount ascending.
func Floors() []int {
	out := make([]int, FloorCount)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

// Units returns 1..UnitCount ascending.
func Units() []int {
	out := make([]int, UnitCount)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func IsValidRoom(floor, unit int) bool {
	return floor >= 1 && floor <= FloorCount && unit >= 1 && unit <= UnitCount
}

// RoomKey formats the wire key "{floor}_{unit}", e.g. "31_5".
func RoomKey(floor, unit int) string {
	return strconv.Itoa(floor) + "_" + strconv.Itoa(unit)
}

// ParseRoomKey splits a room key. Non-canonical keys ("05_3", "+5_3") and keys
// outside the address space are rejected.
func ParseRoomKey(key string) (floor, unit int, ok bool) {
	f, u, found := strings.Cut(key, "_")
	if !found {
		return 0, 0, false
	}
	floor, err := strconv.Atoi(f)
	if err != nil {
		return 0, 0, false
	}
	unit, err = strconv.Atoi(u)
	if err != nil {
		return 0, 0, false
	}
	if !IsValidRoom(floor, unit) || RoomKey(floor, unit) != key {
		return 0, 0, false
	}
	return floor, unit, true
}
