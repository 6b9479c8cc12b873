package universe

//Coord is a cell position on the unbounded plane
type Coord struct {
	X int32
	Y int32
}

//Key is the packed form of a Coord: x bits in the high half, y bits in the low half
type Key uint64

//Encode packs the two's-complement bit patterns of x and y into a single key
func Encode(x int32, y int32) Key {
	return Key(uint64(uint32(x))<<32 | uint64(uint32(y)))
}

//Decode unpacks the key back into the original signed pair
func Decode(k Key) (x int32, y int32) {
	return int32(uint32(k >> 32)), int32(uint32(k))
}

//Key returns the encoded form of the coordinate
func (c Coord) Key() Key {
	return Encode(c.X, c.Y)
}

//Coord returns the decoded coordinate
func (k Key) Coord() Coord {
	x, y := Decode(k)
	return Coord{x, y}
}

//neighbour returns the key shifted by dx, dy
//ok is false when the shift leaves the int32 range, such positions do not exist on the plane
func (k Key) neighbour(dx int32, dy int32) (n Key, ok bool) {
	x, y := Decode(k)
	nx, ny := int64(x)+int64(dx), int64(y)+int64(dy)
	if nx != int64(int32(nx)) || ny != int64(int32(ny)) {
		return 0, false
	}
	return Encode(int32(nx), int32(ny)), true
}
