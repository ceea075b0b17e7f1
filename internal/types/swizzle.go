package types

const swizzleSets = "xyzw" + "rgba" + "stpq"

// Swizzle returns the type of v.<fields> for a vector v, or false when
// fields is not a valid swizzle of v.
func Swizzle(v Type, fields string) (Type, bool) {
	if !v.IsVector() || len(fields) == 0 || len(fields) > 4 {
		return Invalid, false
	}
	set := -1
	for i := 0; i < len(fields); i++ {
		idx := -1
		for j := 0; j < len(swizzleSets); j++ {
			if swizzleSets[j] == fields[i] {
				idx = j
				break
			}
		}
		if idx < 0 || idx%4 >= int(v.Size) {
			return Invalid, false
		}
		if set >= 0 && idx/4 != set {
			return Invalid, false
		}
		set = idx / 4
	}
	if len(fields) == 1 {
		return Type{Kind: v.Elem}, true
	}
	return Vector(v.Elem, len(fields)), true
}
