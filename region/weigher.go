package region

// DefaultValueWeight is charged for values whose size cannot be determined.
const DefaultValueWeight int64 = 256

// Sizer is implemented by results that know their own approximate heap size.
type Sizer interface {
	Size() int64
}

// Weigher returns the weight of a value in bytes. The key length is added
// by the region.
type Weigher func(value any) int64

// DefaultWeigher weighs Sizer values by Size, byte slices and strings by
// length, and everything else as DefaultValueWeight.
func DefaultWeigher(value any) int64 {
	switch v := value.(type) {
	case nil:
		return 0
	case Sizer:
		return max(v.Size(), 0)
	case []byte:
		return int64(len(v))
	case string:
		return int64(len(v))
	default:
		return DefaultValueWeight
	}
}
