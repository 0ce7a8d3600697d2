package convert

import "github.com/samcharles93/twixread/internal/mri"

// Extents are the user-facing output extents. Zero fields mean 1.
type Extents struct {
	Readout  int `json:"readout" yaml:"readout"`
	Phase1   int `json:"phase1" yaml:"phase1"`
	Phase2   int `json:"phase2" yaml:"phase2"`
	Slices   int `json:"slices" yaml:"slices"`
	Channels int `json:"channels" yaml:"channels"`
}

// Dims expands e into full output extents.
func (e Extents) Dims() mri.Dims {
	d := mri.Singleton()
	set := func(dim mri.Dim, n int) {
		if n != 0 {
			d.Set(dim, n)
		}
	}
	set(mri.Read, e.Readout)
	set(mri.Phase1, e.Phase1)
	set(mri.Phase2, e.Phase2)
	set(mri.Slice, e.Slices)
	set(mri.Coil, e.Channels)
	return d
}
