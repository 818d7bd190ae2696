package geo

// A N-Dimensional Vector with components (x, y, z, ...) based on the origin
type Vector []float64

// New Vector from components
func NewVector(components ...float64) Vector {
	return components
}

func (a Vector) Minus(b Vector) Vector {
	c := []float64{}
	for i := 0; i < len(a); i++ {
		c = append(c, a[i]-b[i])
	}
	return c
}

// X returns the first component, 0 when the vector is empty.
func (a Vector) X() float64 {
	if len(a) < 1 {
		return 0
	}
	return a[0]
}

// Y returns the second component, 0 when the vector has fewer than two.
func (a Vector) Y() float64 {
	if len(a) < 2 {
		return 0
	}
	return a[1]
}
