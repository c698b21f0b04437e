package noise

// simplex is a seeded gradient noise over the simplex grid. Samples lie in
// [-1, 1].
type simplex struct {
	perm [512]uint8 // doubled so that lookups never wrap
}

const (
	skew2   = 0.36602540378443864676 // (√3 - 1) / 2
	unskew2 = 0.21132486540518711775 // (3 - √3) / 6
	skew3   = 1.0 / 3
	unskew3 = 1.0 / 6
)

// edges are the twelve cube-edge midpoints used as gradients.
var edges = [12][3]float64{
	{1, 1, 0}, {-1, 1, 0}, {1, -1, 0}, {-1, -1, 0},
	{1, 0, 1}, {-1, 0, 1}, {1, 0, -1}, {-1, 0, -1},
	{0, 1, 1}, {0, -1, 1}, {0, 1, -1}, {0, -1, -1},
}

func newSimplex(seed int64) *simplex {
	var p [256]uint8
	for i := range p {
		p[i] = uint8(i)
	}
	// Fisher-Yates driven by Hash2 so the table only depends on the seed.
	for i := len(p) - 1; i > 0; i-- {
		j := Hash2(seed, int64(i), 0x51) % uint64(i+1)
		p[i], p[j] = p[j], p[i]
	}

	sx := &simplex{}
	for i := range sx.perm {
		sx.perm[i] = p[i&255]
	}
	return sx
}

func (sx *simplex) at(i int) int { return int(sx.perm[i&511]) }

// corner returns the contribution of one simplex corner at offset d from the
// sample point. r2 is the squared radius of the corner's kernel.
func corner(g int, r2 float64, d ...float64) float64 {
	t := r2
	for _, v := range d {
		t -= v * v
	}
	if t <= 0 {
		return 0
	}
	grad := edges[g%12]
	var dot float64
	for k, v := range d {
		dot += grad[k] * v
	}
	t *= t
	return t * t * dot
}

func (sx *simplex) noise2D(x, y float64) float64 {
	s := (x + y) * skew2
	i, j := floor(x+s), floor(y+s)
	u := float64(i+j) * unskew2
	x0, y0 := x-float64(i)+u, y-float64(j)+u

	// Second corner: step along the larger axis first.
	di, dj := 0, 1
	if x0 > y0 {
		di, dj = 1, 0
	}

	ii, jj := i&255, j&255
	sum := corner(sx.at(ii+sx.at(jj)), 0.5, x0, y0)
	sum += corner(sx.at(ii+di+sx.at(jj+dj)), 0.5,
		x0-float64(di)+unskew2, y0-float64(dj)+unskew2)
	sum += corner(sx.at(ii+1+sx.at(jj+1)), 0.5,
		x0-1+2*unskew2, y0-1+2*unskew2)
	return clampUnit(70 * sum)
}

func (sx *simplex) noise3D(x, y, z float64) float64 {
	s := (x + y + z) * skew3
	i, j, k := floor(x+s), floor(y+s), floor(z+s)
	u := float64(i+j+k) * unskew3
	x0, y0, z0 := x-float64(i)+u, y-float64(j)+u, z-float64(k)+u

	// The two intermediate corners follow the axes in decreasing order of
	// the offset.
	var a, b [3]int
	switch {
	case x0 >= y0 && y0 >= z0:
		a, b = [3]int{1, 0, 0}, [3]int{1, 1, 0}
	case x0 >= y0 && x0 >= z0:
		a, b = [3]int{1, 0, 0}, [3]int{1, 0, 1}
	case x0 >= y0:
		a, b = [3]int{0, 0, 1}, [3]int{1, 0, 1}
	case y0 < z0:
		a, b = [3]int{0, 0, 1}, [3]int{0, 1, 1}
	case x0 < z0:
		a, b = [3]int{0, 1, 0}, [3]int{0, 1, 1}
	default:
		a, b = [3]int{0, 1, 0}, [3]int{1, 1, 0}
	}

	ii, jj, kk := i&255, j&255, k&255
	hash := func(o [3]int) int {
		return sx.at(ii + o[0] + sx.at(jj+o[1]+sx.at(kk+o[2])))
	}
	offset := func(o [3]int, n float64) (float64, float64, float64) {
		return x0 - float64(o[0]) + n*unskew3,
			y0 - float64(o[1]) + n*unskew3,
			z0 - float64(o[2]) + n*unskew3
	}

	var sum float64
	for n, o := range [4][3]int{{}, a, b, {1, 1, 1}} {
		dx, dy, dz := offset(o, float64(n))
		sum += corner(hash(o), 0.6, dx, dy, dz)
	}
	return clampUnit(32 * sum)
}

func floor(v float64) int {
	i := int(v)
	if v < float64(i) {
		i--
	}
	return i
}

func clampUnit(v float64) float64 {
	return min(1, max(-1, v))
}
