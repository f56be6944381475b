package beatmap

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

type section int

const (
	secNone section = iota
	secGeneral
	secMetadata
	secDifficulty
	secTimingPoints
	secHitObjects
)

// DecodeBytes decodes .osu content held in memory.
func DecodeBytes(content []byte) (*Beatmap, error) {
	return Decode(bytes.NewReader(content))
}

// Decode reads a .osu file. Unknown sections and keys are ignored; malformed
// numeric values fall back to the client's defaults.
func Decode(r io.Reader) (*Beatmap, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	version, err := readHeader(sc)
	if err != nil {
		return nil, err
	}

	b := &Beatmap{
		FormatVersion: version,
		StackLeniency: 0.7,
		Difficulty: Difficulty{
			HPDrainRate:       5,
			CircleSize:        5,
			OverallDifficulty: 5,
			ApproachRate:      5,
			SliderMultiplier:  1.4,
			SliderTickRate:    1,
		},
	}

	offset := 0.0
	if version < 5 {
		offset = earlyVersionTimingOffset
	}

	sec := secNone
	seenAR := false

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			sec = sectionOf(line)
			continue
		}

		switch sec {
		case secGeneral:
			k, v := splitKeyVal(line)
			switch strings.ToLower(k) {
			case "mode":
				b.Mode = parseInt(v, 0)
			case "stackleniency":
				b.StackLeniency = parseFloat(v, 0.7)
			}

		case secMetadata:
			k, v := splitKeyVal(line)
			switch strings.ToLower(k) {
			case "title":
				b.Metadata.Title = v
			case "artist":
				b.Metadata.Artist = v
			case "creator":
				b.Metadata.Creator = v
			case "version":
				b.Metadata.Version = v
			case "beatmapid":
				b.Metadata.BeatmapID = parseInt(v, 0)
			case "beatmapsetid":
				b.Metadata.BeatmapSetID = parseInt(v, 0)
			}

		case secDifficulty:
			k, v := splitKeyVal(line)
			switch strings.ToLower(k) {
			case "hpdrainrate":
				b.Difficulty.HPDrainRate = parseFloat(v, 5)
			case "circlesize":
				b.Difficulty.CircleSize = parseFloat(v, 5)
			case "overalldifficulty":
				b.Difficulty.OverallDifficulty = parseFloat(v, 5)
				// Old maps have no ApproachRate key and use OD for it.
				if !seenAR {
					b.Difficulty.ApproachRate = b.Difficulty.OverallDifficulty
				}
			case "approachrate":
				b.Difficulty.ApproachRate = parseFloat(v, 5)
				seenAR = true
			case "slidermultiplier":
				b.Difficulty.SliderMultiplier = parseFloat(v, 1.4)
			case "slidertickrate":
				b.Difficulty.SliderTickRate = parseFloat(v, 1)
			}

		case secTimingPoints:
			tp, ok, err := parseTimingPoint(line, offset)
			if err != nil {
				return nil, err
			}
			if ok {
				b.TimingPoints = append(b.TimingPoints, tp)
			}

		case secHitObjects:
			ho, ok, err := parseHitObject(line, offset)
			if err != nil {
				return nil, err
			}
			if ok {
				b.HitObjects = append(b.HitObjects, ho)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read .osu: %w", err)
	}

	clampDifficulty(&b.Difficulty, b.Mode)
	return b, nil
}

func readHeader(sc *bufio.Scanner) (int, error) {
	for sc.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(sc.Text(), "\ufeff"))
		if line == "" {
			continue
		}
		const prefix = "osu file format v"
		if !strings.HasPrefix(strings.ToLower(line), prefix) {
			return 0, fmt.Errorf("%w: %q", ErrInvalidHeader, line)
		}
		v, err := strconv.Atoi(strings.TrimSpace(line[len(prefix):]))
		if err != nil {
			return 0, fmt.Errorf("%w: %q: %v", ErrInvalidHeader, line, err)
		}
		return v, nil
	}
	if err := sc.Err(); err != nil {
		return 0, fmt.Errorf("read .osu: %w", err)
	}
	return 0, fmt.Errorf("%w: empty file", ErrInvalidHeader)
}

func sectionOf(line string) section {
	switch strings.ToLower(line) {
	case "[general]":
		return secGeneral
	case "[metadata]":
		return secMetadata
	case "[difficulty]":
		return secDifficulty
	case "[timingpoints]":
		return secTimingPoints
	case "[hitobjects]":
		return secHitObjects
	}
	return secNone
}

// time,beatLength,meter,sampleSet,sampleIndex,volume,uninherited,effects
func parseTimingPoint(line string, offset float64) (TimingPoint, bool, error) {
	parts := strings.Split(line, ",")
	if len(parts) < 2 {
		return TimingPoint{}, false, nil
	}
	beatLength := parseFloat(parts[1], math.NaN())
	if math.IsNaN(beatLength) {
		return TimingPoint{}, false, nil
	}
	if err := checkRange(line, beatLength); err != nil {
		return TimingPoint{}, false, err
	}

	tp := TimingPoint{
		Time:           parseFloat(parts[0], 0) + offset,
		BeatLength:     beatLength,
		Uninherited:    true,
		SliderVelocity: 1,
	}
	if len(parts) >= 7 {
		tp.Uninherited = strings.TrimSpace(parts[6]) == "1"
	}
	// A negative beat length is an inverse slider velocity percentage.
	if beatLength < 0 {
		tp.Uninherited = false
		tp.SliderVelocity = clampFloat(100/-beatLength, 0.1, 10)
	}
	if err := checkRange(line, tp.Time); err != nil {
		return TimingPoint{}, false, err
	}
	return tp, true, nil
}

// x,y,time,type,hitSound,objectParams...,hitSample
func parseHitObject(line string, offset float64) (HitObject, bool, error) {
	parts := strings.Split(line, ",")
	if len(parts) < 5 {
		return HitObject{}, false, nil
	}
	flags := parseInt(parts[3], 0)
	ho := HitObject{
		Pos:      Vec2{X: parseFloat(parts[0], 0), Y: parseFloat(parts[1], 0)},
		Time:     parseFloat(parts[2], 0) + offset,
		NewCombo: flags&typeNewCombo != 0,
	}

	switch {
	case flags&typeHold != 0:
		ho.Kind = KindHold
		ho.EndTime = ho.Time
		if len(parts) >= 6 {
			end, _, _ := strings.Cut(parts[5], ":")
			ho.EndTime = parseFloat(end, ho.Time) + offset
		}

	case flags&typeSpinner != 0:
		ho.Kind = KindSpinner
		ho.EndTime = ho.Time
		if len(parts) >= 6 {
			ho.EndTime = math.Max(ho.Time, parseFloat(parts[5], ho.Time)+offset)
		}

	case flags&typeSlider != 0:
		ho.Kind = KindSlider
		ho.Slides = 1
		if len(parts) >= 6 {
			ho.CurveType, ho.ControlPoints = parseCurve(parts[5], ho.Pos)
		}
		if len(parts) >= 7 {
			ho.Slides = max(1, parseInt(parts[6], 1))
		}
		if len(parts) >= 8 {
			ho.Length = math.Max(0, parseFloat(parts[7], 0))
		}

	case flags&typeCircle != 0:
		ho.Kind = KindCircle

	default:
		return HitObject{}, false, nil
	}

	values := []float64{ho.Pos.X, ho.Pos.Y, ho.Time, ho.EndTime, ho.Length}
	for _, p := range ho.ControlPoints {
		values = append(values, p.X, p.Y)
	}
	if err := checkRange(line, values...); err != nil {
		return HitObject{}, false, err
	}
	return ho, true, nil
}

// checkRange rejects values the client itself refuses to parse: non-finite
// numbers and anything beyond a 32-bit integer.
func checkRange(line string, values ...float64) error {
	for _, v := range values {
		if math.IsNaN(v) || math.Abs(v) > maxParseValue {
			return fmt.Errorf("%w: %q", ErrInvalidValue, line)
		}
	}
	return nil
}

// parseCurve turns "B|x:y|x:y" into a curve type and control points, head
// included as the first point.
func parseCurve(spec string, head Vec2) (byte, []Vec2) {
	tokens := strings.Split(strings.TrimSpace(spec), "|")
	curve := byte('B')
	if t := strings.TrimSpace(tokens[0]); len(t) == 1 {
		curve = strings.ToUpper(t)[0]
	}

	points := []Vec2{head}
	for _, tok := range tokens[1:] {
		xs, ys, ok := strings.Cut(strings.TrimSpace(tok), ":")
		if !ok {
			continue
		}
		points = append(points, Vec2{X: parseFloat(xs, head.X), Y: parseFloat(ys, head.Y)})
	}
	return curve, points
}

func clampDifficulty(d *Difficulty, mode int) {
	d.HPDrainRate = clampFloat(d.HPDrainRate, 0, 10)
	d.OverallDifficulty = clampFloat(d.OverallDifficulty, 0, 10)
	d.ApproachRate = clampFloat(d.ApproachRate, 0, 10)
	if mode == 3 {
		d.CircleSize = clampFloat(d.CircleSize, 1, maxManiaKeyCount)
	} else {
		d.CircleSize = clampFloat(d.CircleSize, 0, 10)
	}
	d.SliderMultiplier = clampFloat(d.SliderMultiplier, 0.4, 3.6)
	d.SliderTickRate = clampFloat(d.SliderTickRate, 0.5, 8)
}

func splitKeyVal(line string) (string, string) {
	k, v, _ := strings.Cut(line, ":")
	return strings.TrimSpace(k), strings.TrimSpace(v)
}

func parseInt(s string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		// Some editors write integral fields as floats.
		if f, ferr := strconv.ParseFloat(strings.TrimSpace(s), 64); ferr == nil {
			return int(f)
		}
		return def
	}
	return v
}

func parseFloat(s string, def float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return def
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
