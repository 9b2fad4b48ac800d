package global

// Class is a bitmask over the chip's 8 dedicated global networks: bit g
// set means "this driver/sink can use global network g". A sink's Class
// names every global it could be wired from; a driver's Class names
// every global it could feed.
type Class uint8

// The five sink classes a logic-cell or hard-macro pin can demand.
// Fixed per the device's clock-distribution wiring, not configurable.
const (
	ClassClk   Class = 0xff
	ClassCen   Class = 0xaa // odd globals (1,3,5,7)
	ClassRClke Class = 0x8a // 1,3,7 (5 missing)
	ClassSR    Class = 0x55 // even globals (0,2,4,6)
	ClassRE    Class = 0x54 // 2,4,6 (0 missing)

	ClassWClke = ClassCen
	ClassWE    = ClassSR
)

// classes is the fixed enumeration order promotion considers classes in,
// matching the original's global_classes vector.
var classes = []Class{ClassClk, ClassCen, ClassSR, ClassRClke, ClassRE}

func (c Class) String() string {
	switch c {
	case ClassClk:
		return "clk"
	case ClassCen:
		return "cen/wclke"
	case ClassSR:
		return "sr/we"
	case ClassRClke:
		return "rclke"
	case ClassRE:
		return "re"
	default:
		return "?"
	}
}

// popcount returns the number of globals a class mask spans.
func popcount(c Class) int {
	n := 0
	for i := 0; i < 8; i++ {
		if c&(1<<uint(i)) != 0 {
			n++
		}
	}
	return n
}
