// Package catalog holds read-only dimension tables of standard hardware. Hole
// radii are tolerance-inflated so a hole of that radius fits the nominal
// part: callers must not add Tol again.
package catalog

import (
	"fmt"
	"math"
	"sort"

	"github.com/soypat/stage"
)

// Tol is the printing tolerance in mm. STol is half of it.
const (
	Tol  = 0.4
	STol = Tol / 2
)

func unknown(kind string, key interface{}) error {
	return fmt.Errorf("%w: no %s %v", stage.ErrUnknownMetric, kind, key)
}

// Bolt is a DIN 912 socket head cap screw.
type Bolt struct {
	M         float64 // nominal diameter
	HeadD     float64 // head diameter
	HeadL     float64 // head length
	ShankRTol float64 // shank hole radius
	HeadRTol  float64 // head counterbore radius
	HeadLTol  float64 // head counterbore depth
}

// DIN 912 head diameter by nominal diameter. Head length equals M.
var din912HeadD = map[float64]float64{
	2: 3.8, 2.5: 4.5, 3: 5.5, 4: 7, 5: 8.5, 6: 10, 8: 13, 10: 16, 12: 18,
}

// LookupBolt returns the DIN 912 bolt of nominal diameter m.
func LookupBolt(m float64) (Bolt, error) {
	d, ok := din912HeadD[m]
	if !ok {
		return Bolt{}, unknown("bolt M", m)
	}
	return Bolt{
		M:         m,
		HeadD:     d,
		HeadL:     m,
		ShankRTol: m/2 + STol,
		HeadRTol:  d/2 + STol,
		HeadLTol:  m + Tol,
	}, nil
}

// Nut is a DIN 934 hexagon nut.
type Nut struct {
	M        float64
	S        float64 // width across flats
	H        float64 // height
	CircR    float64 // circumscribed radius
	CircRTol float64 // pocket circumscribed radius
	STol     float64 // pocket width across flats
	HTol     float64 // pocket height
}

// DIN 934 width across flats and height by nominal diameter.
var din934 = map[float64][2]float64{
	2: {4, 1.6}, 2.5: {5, 2}, 3: {5.5, 2.4}, 4: {7, 3.2}, 5: {8, 4},
	6: {10, 5}, 8: {13, 6.5}, 10: {17, 8}, 12: {19, 10},
}

// LookupNut returns the DIN 934 nut of nominal diameter m.
func LookupNut(m float64) (Nut, error) {
	v, ok := din934[m]
	if !ok {
		return Nut{}, unknown("nut M", m)
	}
	s, h := v[0], v[1]
	circR := s / math.Sqrt(3)
	return Nut{
		M:        m,
		S:        s,
		H:        h,
		CircR:    circR,
		CircRTol: circR + STol,
		STol:     s + Tol,
		HTol:     h + Tol,
	}, nil
}

// Washer is a flat washer.
type Washer struct {
	M   float64
	ID  float64 // inner diameter
	OD  float64 // outer diameter
	T   float64 // thickness
	ODT float64 // outer diameter plus tolerance, for recesses
}

// DIN 125 and DIN 9021 washers: inner, outer diameter and thickness.
var (
	din125 = map[float64][3]float64{
		2: {2.2, 5, 0.3}, 2.5: {2.7, 6, 0.5}, 3: {3.2, 7, 0.5}, 4: {4.3, 9, 0.8},
		5: {5.3, 10, 1}, 6: {6.4, 12, 1.6}, 8: {8.4, 16, 1.6}, 10: {10.5, 20, 2}, 12: {13, 24, 2.5},
	}
	din9021 = map[float64][3]float64{
		3: {3.2, 9, 0.8}, 4: {4.3, 12, 1}, 5: {5.3, 15, 1.2}, 6: {6.4, 18, 1.6},
		8: {8.4, 24, 2}, 10: {10.5, 30, 2.5},
	}
)

func washer(table map[float64][3]float64, kind string, m float64) (Washer, error) {
	v, ok := table[m]
	if !ok {
		return Washer{}, unknown(kind, m)
	}
	return Washer{M: m, ID: v[0], OD: v[1], T: v[2], ODT: v[1] + Tol}, nil
}

// LookupWasher returns the DIN 125 washer for an M bolt.
func LookupWasher(m float64) (Washer, error) { return washer(din125, "washer M", m) }

// LookupLargeWasher returns the DIN 9021 large washer for an M bolt.
func LookupLargeWasher(m float64) (Washer, error) { return washer(din9021, "large washer M", m) }

// Bearing is a deep groove ball bearing.
type Bearing struct {
	Code string
	ID   float64
	OD   float64
	T    float64
	ODT  float64 // housing radius times two, tolerance included
}

var bearings = map[string][3]float64{
	"603": {3, 9, 5}, "623": {3, 10, 4}, "624": {4, 13, 5}, "625": {5, 16, 5},
	"608": {8, 22, 7}, "683": {3, 7, 3}, "688": {8, 16, 5},
}

// LookupBearing returns the bearing with the given code.
func LookupBearing(code string) (Bearing, error) {
	v, ok := bearings[code]
	if !ok {
		return Bearing{}, unknown("bearing", code)
	}
	return Bearing{Code: code, ID: v[0], OD: v[1], T: v[2], ODT: v[1] + Tol}, nil
}

// Bearings returns the known bearing codes in order.
func Bearings() []string {
	codes := make([]string, 0, len(bearings))
	for c := range bearings {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}
