package catalog

import "math"

// AluProf is the cross-section of a square aluminum extrusion.
type AluProf struct {
	W       float64 // side
	Slot    float64 // slot opening width
	InSq    float64 // side of the inner square core
	InHoleD float64 // central hole diameter
	WallT   float64 // wall thickness at the slot lips
	SlotD   float64 // slot depth from the face to the core
	BoltM   float64 // bolt that fits the slot
}

var aluprofs = map[float64]AluProf{
	10: {W: 10, Slot: 3, InSq: 4.2, InHoleD: 2.5, WallT: 1, SlotD: 2.9, BoltM: 3},
	15: {W: 15, Slot: 3.5, InSq: 5.6, InHoleD: 2.5, WallT: 1.2, SlotD: 4.7, BoltM: 3},
	20: {W: 20, Slot: 6, InSq: 7.5, InHoleD: 4.2, WallT: 1.8, SlotD: 6.1, BoltM: 5},
	30: {W: 30, Slot: 8, InSq: 11.5, InHoleD: 6.8, WallT: 2.2, SlotD: 9, BoltM: 6},
	40: {W: 40, Slot: 8, InSq: 14, InHoleD: 6.8, WallT: 4.3, SlotD: 12.3, BoltM: 8},
}

// LookupAluProf returns the profile of side w.
func LookupAluProf(w float64) (AluProf, error) {
	p, ok := aluprofs[w]
	if !ok {
		return AluProf{}, unknown("aluminum profile", w)
	}
	return p, nil
}

// NEMA is a stepper motor frame size.
type NEMA struct {
	Size    int
	W       float64 // face side
	BoltSep float64 // distance between bolt hole centers along a side
	BoltM   float64
	ShaftD  float64
	BossD   float64 // centering ring diameter
	BossH   float64
}

var nemas = map[int]NEMA{
	8:  {Size: 8, W: 20.3, BoltSep: 16, BoltM: 2, ShaftD: 4, BossD: 16, BossH: 1.5},
	11: {Size: 11, W: 28.2, BoltSep: 23, BoltM: 2.5, ShaftD: 5, BossD: 22, BossH: 2},
	14: {Size: 14, W: 35.2, BoltSep: 26, BoltM: 3, ShaftD: 5, BossD: 22, BossH: 2},
	17: {Size: 17, W: 42.3, BoltSep: 31, BoltM: 3, ShaftD: 5, BossD: 22, BossH: 2},
	23: {Size: 23, W: 56.4, BoltSep: 47.1, BoltM: 5, ShaftD: 6.35, BossD: 38.1, BossH: 1.6},
}

// LookupNEMA returns the motor frame of the given NEMA size.
func LookupNEMA(size int) (NEMA, error) {
	n, ok := nemas[size]
	if !ok {
		return NEMA{}, unknown("NEMA size", size)
	}
	return n, nil
}

// LinearGuide is a miniature linear guide rail with its carriage block.
// Block bolts are placed on a rectangle BoltSepW by BoltSepL centered on the
// block. BoltSepW zero means a single column of bolts on the block centerline.
type LinearGuide struct {
	Name      string
	RailW     float64
	RailH     float64
	RailBolt  float64 // rail bolt M
	RailPitch float64 // distance between rail bolts
	BlockW    float64
	BlockL    float64
	BlockH    float64 // rail bottom to block top
	BlockGap  float64 // rail bottom to block bottom
	BlockM    float64 // block bolt M
	BoltSepW  float64
	BoltSepL  float64
}

var guides = map[string]LinearGuide{
	"MGN9H": {Name: "MGN9H", RailW: 9, RailH: 6, RailBolt: 3, RailPitch: 20,
		BlockW: 20, BlockL: 39.9, BlockH: 10, BlockGap: 2, BlockM: 3, BoltSepW: 15, BoltSepL: 16},
	"MGN12H": {Name: "MGN12H", RailW: 12, RailH: 8, RailBolt: 3, RailPitch: 25,
		BlockW: 27, BlockL: 45.4, BlockH: 13, BlockGap: 3, BlockM: 3, BoltSepW: 20, BoltSepL: 20},
	"SEB16A": {Name: "SEB16A", RailW: 16, RailH: 9, RailBolt: 4, RailPitch: 40,
		BlockW: 32, BlockL: 42, BlockH: 12, BlockGap: 2, BlockM: 4, BoltSepW: 0, BoltSepL: 16},
}

// LookupLinearGuide returns the guide named name.
func LookupLinearGuide(name string) (LinearGuide, error) {
	g, ok := guides[name]
	if !ok {
		return LinearGuide{}, unknown("linear guide", name)
	}
	return g, nil
}

// GT2 timing belt constants.
const (
	GT2Pitch     = 2.0
	GT2Thick     = 1.38 // belt total thickness
	GT2ToothH    = 0.75
	GT2PitchLine = 0.254 // pitch line to tooth tip offset
)

// Pulley is a GT2 toothed pulley with a set screw hub.
type Pulley struct {
	Teeth   int
	PitchD  float64 // pitch diameter
	OD      float64 // tooth tip diameter
	FlangeD float64
	FlangeT float64
	ToothH  float64 // toothed section height, the belt width plus clearance
	HubD    float64
	HubH    float64
	Bore    float64
}

// TotalH returns the pulley length along its axis.
func (p Pulley) TotalH() float64 { return p.HubH + p.ToothH + 2*p.FlangeT }

var pulleyHubs = map[int][2]float64{16: {13, 7}, 20: {16, 7}, 40: {24, 7}}

// LookupGT2 returns the GT2 pulley with the given number of teeth for a belt
// of width beltW, bored for a shaft of diameter bore.
func LookupGT2(teeth int, beltW, bore float64) (Pulley, error) {
	hub, ok := pulleyHubs[teeth]
	if !ok {
		return Pulley{}, unknown("GT2 pulley teeth", teeth)
	}
	pd := float64(teeth) * GT2Pitch / math.Pi
	return Pulley{
		Teeth:   teeth,
		PitchD:  pd,
		OD:      pd - 2*GT2PitchLine,
		FlangeD: pd + 5,
		FlangeT: 1,
		ToothH:  beltW + 1,
		HubD:    hub[0],
		HubH:    hub[1],
		Bore:    bore,
	}, nil
}
