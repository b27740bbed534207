package chart

import "math"

// BandScale maps discrete labels onto equal width bands, in the manner of d3's scaleBand.
type BandScale struct {
	index     map[string]int
	domain    []string
	start     float64
	step      float64
	bandwidth float64
}

// NewBandScale lays out the distinct labels of domain across [rangeStart, rangeStop]. padding is used for both the
// inner and outer padding, as a fraction of the step, and bands are centred within the range.
func NewBandScale(domain []string, rangeStart, rangeStop, padding float64) *BandScale {
	b := &BandScale{index: make(map[string]int, len(domain))}
	for _, label := range domain {
		if _, ok := b.index[label]; ok {
			continue
		}
		b.index[label] = len(b.domain)
		b.domain = append(b.domain, label)
	}

	paddingInner := math.Min(1, math.Max(0, padding))
	paddingOuter := math.Max(0, padding)

	start, stop := rangeStart, rangeStop
	if stop < start {
		start, stop = stop, start
	}
	n := float64(len(b.domain))
	b.step = (stop - start) / math.Max(1, n-paddingInner+paddingOuter*2)
	b.start = start + (stop-start-b.step*(n-paddingInner))*0.5
	b.bandwidth = b.step * (1 - paddingInner)
	return b
}

// Position returns the start of the band for label.
func (b *BandScale) Position(label string) (float64, bool) {
	i, ok := b.index[label]
	if !ok {
		return 0, false
	}
	return b.start + b.step*float64(i), true
}

func (b *BandScale) Bandwidth() float64 {
	return b.bandwidth
}

func (b *BandScale) Step() float64 {
	return b.step
}

// Domain returns the distinct labels in first-seen order.
func (b *BandScale) Domain() []string {
	return b.domain
}

// LinearScale maps the continuous domain [d0, d1] onto [r0, r1].
type LinearScale struct {
	d0, d1 float64
	r0, r1 float64
}

func NewLinearScale(d0, d1, r0, r1 float64) *LinearScale {
	return &LinearScale{d0, d1, r0, r1}
}

// Scale interpolates v. A collapsed domain maps everything to r0, which for a value axis is the baseline.
func (l *LinearScale) Scale(v float64) float64 {
	span := l.d1 - l.d0
	if span == 0 || math.IsNaN(span) {
		return l.r0
	}
	return l.r0 + (v-l.d0)/span*(l.r1-l.r0)
}

func (l *LinearScale) Domain() (float64, float64) {
	return l.d0, l.d1
}

// Ticks returns roughly count human friendly values spanning the domain, stepping by 1, 2 or 5 times a power of ten.
func (l *LinearScale) Ticks(count int) []float64 {
	return ticks(l.d0, l.d1, count)
}

var (
	e10 = math.Sqrt(50)
	e5  = math.Sqrt(10)
	e2  = math.Sqrt(2)
)

func ticks(start, stop float64, count int) []float64 {
	if count <= 0 || math.IsNaN(start) || math.IsNaN(stop) {
		return nil
	}
	if start == stop {
		return []float64{start}
	}

	reverse := stop < start
	if reverse {
		start, stop = stop, start
	}

	i1, i2, inc := tickSpec(start, stop, float64(count))
	if i2 < i1 {
		return nil
	}

	n := int(i2 - i1 + 1)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		if inc < 0 {
			out[i] = (i1 + float64(i)) / -inc
		} else {
			out[i] = (i1 + float64(i)) * inc
		}
	}
	if reverse {
		for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

// tickSpec returns the first and last tick index and the increment. A negative increment means the step is
// 1/-inc, which keeps fractional ticks exact.
func tickSpec(start, stop, count float64) (float64, float64, float64) {
	step := (stop - start) / math.Max(0, count)
	power := math.Floor(math.Log10(step))
	e := step / math.Pow(10, power)

	factor := 1.0
	switch {
	case e >= e10:
		factor = 10
	case e >= e5:
		factor = 5
	case e >= e2:
		factor = 2
	}

	var i1, i2, inc float64
	if power < 0 {
		inc = math.Pow(10, -power) / factor
		i1 = math.Round(start * inc)
		i2 = math.Round(stop * inc)
		if i1/inc < start {
			i1++
		}
		if i2/inc > stop {
			i2--
		}
		inc = -inc
	} else {
		inc = math.Pow(10, power) * factor
		i1 = math.Round(start / inc)
		i2 = math.Round(stop / inc)
		if i1*inc < start {
			i1++
		}
		if i2*inc > stop {
			i2--
		}
	}

	if i2 < i1 && 0.5 <= count && count < 2 {
		return tickSpec(start, stop, count*2)
	}
	return i1, i2, inc
}
