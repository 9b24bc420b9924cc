// Package layout carries the screen calibration for each aspect bucket: where
// buttons, participant boxes, pip rows, initiative rings and the hand counter
// sit in a normalized frame. The numbers were tuned against captures and are
// treated as data.
package layout

import (
	"image"

	"github.com/soocke/duel-vision-go/domain/combat"
	"github.com/soocke/duel-vision-go/domain/vision"
)

// Boxes places the participant boxes. The first box of each row is given and
// the rest follow at a fixed horizontal spacing. With AllyAnchorRight the ally
// row grows leftwards from AllyFirst.
type Boxes struct {
	EnemyFirst      vision.Region
	AllyFirst       vision.Region
	EnemySpacingX   float64
	AllySpacingX    float64
	AllyAnchorRight bool
}

// Fields locates the per-slot sub-regions relative to a participant box.
type Fields struct {
	Sigil  vision.Region
	School vision.Region
	Name   vision.Region
	Health vision.Region
	Pips   vision.Region
}

// Rings locates the initiative rings by centre and box size.
type Rings struct {
	SunCenter, SunSize       [2]float64
	DaggerCenter, DaggerSize [2]float64
}

// Sun is the ally-first ring region.
func (r Rings) Sun() vision.Region {
	return vision.FromCenter(r.SunCenter[0], r.SunCenter[1], r.SunSize[0], r.SunSize[1])
}

// Dagger is the enemy-first ring region.
func (r Rings) Dagger() vision.Region {
	return vision.FromCenter(r.DaggerCenter[0], r.DaggerCenter[1], r.DaggerSize[0], r.DaggerSize[1])
}

// Hand locates the card-count slot and maps its centre (in bucket reference
// pixels) to the number of cards held.
type Hand struct {
	Slot           vision.Region
	CentersByCount map[int]image.Point
}

// Profile is the full calibration for one bucket.
type Profile struct {
	Bucket       vision.Bucket
	Buttons      map[string]vision.Region
	Boxes        Boxes
	EnemyFields  Fields
	AllyFields   Fields
	Pips         vision.PipSlicing
	Rings        Rings
	Hand         Hand
	PlayerHealth vision.Region
}

// SlotBox returns the participant box for a slot.
func (p Profile) SlotBox(id combat.SlotID) vision.Region {
	if id.Side == combat.Enemy {
		return p.Boxes.EnemyFirst.Shift(float64(id.Index) * p.Boxes.EnemySpacingX)
	}
	dx := float64(id.Index) * p.Boxes.AllySpacingX
	if p.Boxes.AllyAnchorRight {
		dx = -dx
	}
	return p.Boxes.AllyFirst.Shift(dx)
}

// FieldsFor returns the sub-layout of a side.
func (p Profile) FieldsFor(side combat.Side) Fields {
	if side == combat.Enemy {
		return p.EnemyFields
	}
	return p.AllyFields
}

// ReferenceWidth is the width of the bucket's frame after normalization to
// refW x refH; pixel calibration values are relative to it.
func (p Profile) ReferenceWidth(refW, refH int) int {
	w, _ := p.Bucket.FitSize(refW, refH)
	return w
}

// For returns the profile for bucket, falling back to 16:9.
func For(bucket vision.Bucket) Profile {
	if p, ok := profiles[bucket]; ok {
		return p
	}
	return profiles[vision.Bucket16x9]
}

var defaultButtons = map[string]vision.Region{
	"pass":       {X1: 0.25, Y1: 0.57, X2: 0.45, Y2: 0.63},
	"flee":       {X1: 0.55, Y1: 0.57, X2: 0.74, Y2: 0.63},
	"crownsShop": {X1: 0.88, Y1: 0.00, X2: 0.96, Y2: 0.08},
	"upgradeNow": {X1: 0.76, Y1: 0.00, X2: 0.88, Y2: 0.08},
	"friends":    {X1: 0.93, Y1: 0.20, X2: 1.00, Y2: 0.42},
	"social":     {X1: 0.00, Y1: 0.72, X2: 0.08, Y2: 0.82},
	"spellBook":  {X1: 0.92, Y1: 0.86, X2: 1.00, Y2: 1.00},
}

var defaultFields = Fields{
	Sigil:  vision.Region{X1: 0.00, Y1: 0.05, X2: 0.20, Y2: 0.95},
	School: vision.Region{X1: 0.21, Y1: 0.05, X2: 0.34, Y2: 0.50},
	Name:   vision.Region{X1: 0.35, Y1: 0.00, X2: 0.99, Y2: 0.38},
	Health: vision.Region{X1: 0.35, Y1: 0.36, X2: 0.80, Y2: 0.68},
	Pips:   vision.Region{X1: 0.21, Y1: 0.66, X2: 0.99, Y2: 1.00},
}

func hand(centerY int, xs ...int) Hand {
	h := Hand{
		Slot:           vision.Region{X1: 0.15, Y1: 0.30, X2: 0.85, Y2: 0.62},
		CentersByCount: map[int]image.Point{},
	}
	for count, x := range xs {
		h.CentersByCount[count] = image.Pt(x, centerY)
	}
	return h
}

var profiles = map[vision.Bucket]Profile{
	vision.Bucket4x3: {
		Bucket:  vision.Bucket4x3,
		Buttons: defaultButtons,
		Boxes: Boxes{
			EnemyFirst:    vision.Region{X1: 0.005, Y1: 0.005, X2: 0.235, Y2: 0.085},
			AllyFirst:     vision.Region{X1: 0.005, Y1: 0.915, X2: 0.235, Y2: 0.995},
			EnemySpacingX: 0.25,
			AllySpacingX:  0.25,
		},
		EnemyFields: defaultFields,
		AllyFields:  defaultFields,
		Pips:        vision.PipSlicing{Count: 7, StartPx: 1, WidthPx: 16, GapPx: 2, TopCutPx: 1, BottomCutPx: 1},
		Rings: Rings{
			SunCenter: [2]float64{0.755, 0.605}, SunSize: [2]float64{0.1, 0.1},
			DaggerCenter: [2]float64{0.32, 0.39}, DaggerSize: [2]float64{0.08, 0.07},
		},
		Hand:         hand(300, 480, 436, 414, 392, 370, 348, 326, 304),
		PlayerHealth: vision.Region{X1: 0.00, Y1: 0.84, X2: 0.11, Y2: 0.90},
	},
	vision.Bucket16x10: {
		Bucket:  vision.Bucket16x10,
		Buttons: defaultButtons,
		Boxes: Boxes{
			EnemyFirst:    vision.Region{X1: 0.005, Y1: 0.005, X2: 0.2, Y2: 0.09},
			AllyFirst:     vision.Region{X1: 0.005, Y1: 0.91, X2: 0.2, Y2: 0.995},
			EnemySpacingX: 0.215,
			AllySpacingX:  0.215,
		},
		EnemyFields: defaultFields,
		AllyFields:  defaultFields,
		Pips:        vision.PipSlicing{Count: 7, StartPx: 2, WidthPx: 16, GapPx: 2, TopCutPx: 1, BottomCutPx: 1},
		Rings: Rings{
			SunCenter: [2]float64{0.705, 0.605}, SunSize: [2]float64{0.08, 0.1},
			DaggerCenter: [2]float64{0.36, 0.39}, DaggerSize: [2]float64{0.06, 0.08},
		},
		Hand:         hand(300, 576, 530, 506, 482, 458, 434, 410, 386),
		PlayerHealth: vision.Region{X1: 0.00, Y1: 0.85, X2: 0.10, Y2: 0.91},
	},
	vision.Bucket16x9: {
		Bucket:  vision.Bucket16x9,
		Buttons: defaultButtons,
		Boxes: Boxes{
			EnemyFirst:    vision.Region{X1: 0.005, Y1: 0.005, X2: 0.18, Y2: 0.095},
			AllyFirst:     vision.Region{X1: 0.005, Y1: 0.905, X2: 0.18, Y2: 0.995},
			EnemySpacingX: 0.2,
			AllySpacingX:  0.2,
		},
		EnemyFields: defaultFields,
		AllyFields:  defaultFields,
		Pips:        vision.PipSlicing{Count: 7, StartPx: 2, WidthPx: 17, GapPx: 2, TopCutPx: 1, BottomCutPx: 2},
		Rings: Rings{
			SunCenter: [2]float64{0.69, 0.605}, SunSize: [2]float64{0.08, 0.1},
			DaggerCenter: [2]float64{0.365, 0.39}, DaggerSize: [2]float64{0.055, 0.075},
		},
		Hand:         hand(300, 640, 590, 565, 540, 515, 490, 465, 440),
		PlayerHealth: vision.Region{X1: 0.00, Y1: 0.85, X2: 0.09, Y2: 0.90},
	},
	vision.Bucket43x18: {
		Bucket:  vision.Bucket43x18,
		Buttons: defaultButtons,
		Boxes: Boxes{
			EnemyFirst:      vision.Region{X1: 0.004, Y1: 0.005, X2: 0.135, Y2: 0.1},
			AllyFirst:       vision.Region{X1: 0.865, Y1: 0.9, X2: 0.996, Y2: 0.995},
			EnemySpacingX:   0.15,
			AllySpacingX:    0.15,
			AllyAnchorRight: true,
		},
		EnemyFields: defaultFields,
		AllyFields:  defaultFields,
		Pips:        vision.PipSlicing{Count: 7, StartPx: 2, WidthPx: 18, GapPx: 3, TopCutPx: 2, BottomCutPx: 2},
		Rings: Rings{
			SunCenter: [2]float64{0.64, 0.605}, SunSize: [2]float64{0.065, 0.1},
			DaggerCenter: [2]float64{0.40, 0.39}, DaggerSize: [2]float64{0.05, 0.08},
		},
		Hand:         hand(240, 640, 600, 580, 560, 540, 520, 500, 480),
		PlayerHealth: vision.Region{X1: 0.00, Y1: 0.84, X2: 0.07, Y2: 0.90},
	},
}
