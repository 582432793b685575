package vars

// certainSource backs the temporaries built by the operators. Their outcome
// is already fixed, so reading them must not consume samples from the
// operands' source.
var certainSource = SourceFunc(func() float64 { return 0 })

// Negate observes v and reassigns it to the complement of what was seen.
func Negate(v *RandomBool) {
	result := Certain(!v.Get(), WithSource(certainSource))
	v.Set(result)
}

// And observes left and then right, and assigns their conjunction to output.
// Both operands are always observed, so both collapse.
func And(output, left, right *RandomBool) {
	l := left.Get()
	r := right.Get()
	result := Certain(l && r, WithSource(certainSource))
	output.Set(result)
}
