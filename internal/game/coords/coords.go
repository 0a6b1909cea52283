// Package coords provides N-dimensional positions with optional per-axis
// labels.
package coords

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Coordinates is a point in N dimensions. Axes may carry labels such as
// "x" or "t"; an empty label marks an unlabeled axis.
type Coordinates struct {
	values []float32
	labels []string // nil, or len(values) entries
}

// New returns the origin in n dimensions.
func New(n int) *Coordinates {
	return &Coordinates{values: make([]float32, n)}
}

// FromValues returns unlabeled coordinates holding vs.
func FromValues(vs ...float32) *Coordinates {
	return &Coordinates{values: slices.Clone(vs)}
}

// New2D returns (x, y) labeled "x", "y".
func New2D(x, y float32) *Coordinates {
	c := FromValues(x, y)
	c.SetLabels("x", "y")
	return c
}

// New3D returns (x, y, z) labeled "x", "y", "z".
func New3D(x, y, z float32) *Coordinates {
	c := FromValues(x, y, z)
	c.SetLabels("x", "y", "z")
	return c
}

// New4D returns (x, y, z, t) labeled "x", "y", "z", "t".
func New4D(x, y, z, t float32) *Coordinates {
	c := FromValues(x, y, z, t)
	c.SetLabels("x", "y", "z", "t")
	return c
}

// SetLabels names every axis in order.
//
// Postcondition: returns false without modifying c when the label count
// differs from the dimension count or a non-empty label repeats.
func (c *Coordinates) SetLabels(labels ...string) bool {
	if len(labels) != len(c.values) {
		return false
	}
	seen := make(map[string]bool, len(labels))
	for _, l := range labels {
		if l != "" && seen[l] {
			return false
		}
		seen[l] = true
	}
	c.labels = slices.Clone(labels)
	return true
}

// Dimensions returns the number of axes.
func (c *Coordinates) Dimensions() int { return len(c.values) }

// Values returns a copy of the axis values.
func (c *Coordinates) Values() []float32 { return slices.Clone(c.values) }

// Labels returns the non-empty axis labels in axis order.
func (c *Coordinates) Labels() []string {
	var out []string
	for _, l := range c.labels {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

func (c *Coordinates) index(label string) int {
	if label == "" {
		return -1
	}
	return slices.Index(c.labels, label)
}

// HasDimension reports whether an axis is labeled label.
func (c *Coordinates) HasDimension(label string) bool { return c.index(label) >= 0 }

// Get returns the value on axis i.
func (c *Coordinates) Get(i int) (float32, bool) {
	if i < 0 || i >= len(c.values) {
		return 0, false
	}
	return c.values[i], true
}

// Set stores v on axis i. Non-finite values are rejected and leave the axis
// unchanged.
func (c *Coordinates) Set(i int, v float32) bool {
	if i < 0 || i >= len(c.values) || !finite(v) {
		return false
	}
	c.values[i] = v
	return true
}

func finite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// GetByLabel returns the value on the axis labeled label.
func (c *Coordinates) GetByLabel(label string) (float32, bool) {
	return c.Get(c.index(label))
}

// SetByLabel stores v on the axis labeled label.
func (c *Coordinates) SetByLabel(label string, v float32) bool {
	return c.Set(c.index(label), v)
}

// AddDimension appends an axis holding v and returns its index. An empty
// label leaves the axis unlabeled; a label already in use is ignored.
func (c *Coordinates) AddDimension(v float32, label string) int {
	i := len(c.values)
	c.values = append(c.values, v)
	if label != "" && c.HasDimension(label) {
		label = ""
	}
	if label != "" && c.labels == nil {
		c.labels = make([]string, i)
	}
	if c.labels != nil {
		c.labels = append(c.labels, label)
	}
	return i
}

// RemoveDimension deletes axis i and returns its value. Later axes shift
// down by one and keep their labels.
func (c *Coordinates) RemoveDimension(i int) (float32, bool) {
	v, ok := c.Get(i)
	if !ok {
		return 0, false
	}
	c.values = slices.Delete(c.values, i, i+1)
	if c.labels != nil {
		c.labels = slices.Delete(c.labels, i, i+1)
	}
	return v, true
}

// RemoveDimensionByLabel deletes the axis labeled label.
func (c *Coordinates) RemoveDimensionByLabel(label string) (float32, bool) {
	return c.RemoveDimension(c.index(label))
}

// Clone returns a deep copy of c.
func (c *Coordinates) Clone() *Coordinates {
	return &Coordinates{values: slices.Clone(c.values), labels: slices.Clone(c.labels)}
}

// Equal reports whether c and o have identical values and labels.
func (c *Coordinates) Equal(o *Coordinates) bool {
	return slices.Equal(c.values, o.values) && slices.Equal(c.labels, o.labels)
}

// Distance returns the Euclidean distance to o, or NaN when the dimension
// counts differ.
func (c *Coordinates) Distance(o *Coordinates) float32 {
	if len(c.values) != len(o.values) {
		return float32(math.NaN())
	}
	var sum float64
	for i, v := range c.values {
		d := float64(v - o.values[i])
		sum += d * d
	}
	return float32(math.Sqrt(sum))
}

// DirectionTo returns the unit vector from c toward target. It reports false
// when the points coincide or are not comparable.
func (c *Coordinates) DirectionTo(target *Coordinates) (*Coordinates, bool) {
	d := c.Distance(target)
	if d == 0 || math.IsNaN(float64(d)) {
		return nil, false
	}
	out := c.Clone()
	for i := range out.values {
		out.values[i] = (target.values[i] - c.values[i]) / d
	}
	return out, true
}

// MoveToward steps c up to step units toward target, stopping on target
// rather than passing it.
func (c *Coordinates) MoveToward(target *Coordinates, step float32) bool {
	dir, ok := c.DirectionTo(target)
	if !ok {
		return false
	}
	if remaining := c.Distance(target); step >= remaining {
		copy(c.values, target.values)
		return true
	}
	for i := range c.values {
		c.values[i] += dir.values[i] * step
	}
	return true
}

// Add returns c + o, or a copy of c when the dimension counts differ.
func (c *Coordinates) Add(o *Coordinates) *Coordinates {
	out := c.Clone()
	if len(c.values) == len(o.values) {
		for i := range out.values {
			out.values[i] += o.values[i]
		}
	}
	return out
}

// Sub returns c - o, or a copy of c when the dimension counts differ.
func (c *Coordinates) Sub(o *Coordinates) *Coordinates {
	out := c.Clone()
	if len(c.values) == len(o.values) {
		for i := range out.values {
			out.values[i] -= o.values[i]
		}
	}
	return out
}

// Scale returns c * k.
func (c *Coordinates) Scale(k float32) *Coordinates {
	out := c.Clone()
	for i := range out.values {
		out.values[i] *= k
	}
	return out
}

// Div returns c / k, or a copy of c when k is zero.
func (c *Coordinates) Div(k float32) *Coordinates {
	if k == 0 {
		return c.Clone()
	}
	return c.Scale(1 / k)
}

// XY returns the first two axes, zero-filled.
func (c *Coordinates) XY() (float32, float32) {
	x, _ := c.Get(0)
	y, _ := c.Get(1)
	return x, y
}

// String renders c as "(x:1, y:2)". Unlabeled axes use their index.
func (c *Coordinates) String() string {
	if len(c.values) == 0 {
		return "(empty)"
	}
	parts := make([]string, len(c.values))
	for i, v := range c.values {
		name := strconv.Itoa(i)
		if c.labels != nil && c.labels[i] != "" {
			name = c.labels[i]
		}
		parts[i] = name + ":" + strconv.FormatFloat(float64(v), 'f', -1, 32)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

type coordinatesJSON struct {
	Values []float32 `json:"values"`
	Labels []string  `json:"labels,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (c *Coordinates) MarshalJSON() ([]byte, error) {
	values := c.values
	if values == nil {
		values = []float32{}
	}
	return json.Marshal(coordinatesJSON{Values: values, Labels: c.labels})
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Coordinates) UnmarshalJSON(data []byte) error {
	var raw coordinatesJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("coords: decoding coordinates: %w", err)
	}
	out := FromValues(raw.Values...)
	if raw.Labels != nil && !out.SetLabels(raw.Labels...) {
		return fmt.Errorf("coords: %d labels for %d dimensions", len(raw.Labels), len(raw.Values))
	}
	*c = *out
	return nil
}
