// Package curveyaml encodes curves as YAML documents and decodes them again.
//
// A document lists the keys of a curve in time order. Times are stored in
// ticks so that they survive the round trip exactly:
//
//	keys:
//	  - time: 0
//	    value: 1
//	    interpolator: Cubic
//	    tie: Slope
//	    from: {slope: 2, slopeSpace: span}
//	  - time: 705600000
//	    value: 3
//	    interpolator: Linear
//
// Decoded documents are validated before any curve is built, and unknown
// fields are rejected.
package curveyaml

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"honnef.co/go/keyframe"
)

// ErrInvalidDocument is wrapped by errors for documents that parse but don't
// describe a valid curve.
var ErrInvalidDocument = errors.New("invalid curve document")

// Document is the YAML form of a curve.
type Document struct {
	Keys []Key `yaml:"keys" validate:"unique=Time,dive"`
}

// Key is the YAML form of a key.
type Key struct {
	// Time in ticks.
	Time         int64    `yaml:"time"`
	Value        float64  `yaml:"value"`
	Interpolator string   `yaml:"interpolator" validate:"required"`
	Tie          string   `yaml:"tie,omitempty" validate:"omitempty,oneof=Manual Slope SlopeAndAccel"`
	Into         *Tangent `yaml:"into,omitempty"`
	From         *Tangent `yaml:"from,omitempty"`
}

// Tangent is the YAML form of a tangent. Spaces are "key" or "span"; an
// empty space means "key".
type Tangent struct {
	Slope      float64 `yaml:"slope,omitempty"`
	SlopeSpace string  `yaml:"slopeSpace,omitempty" validate:"omitempty,oneof=key span"`
	Accel      float64 `yaml:"accel,omitempty"`
	AccelSpace string  `yaml:"accelSpace,omitempty" validate:"omitempty,oneof=key span"`
	Auto       string  `yaml:"auto,omitempty" validate:"omitempty,oneof=Manual Flat Linear Smooth"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

var (
	tieModes  = map[string]keyframe.TieMode{}
	autoModes = map[string]keyframe.AutoMode{}
	spaces    = map[string]keyframe.Space{"": keyframe.SpaceKey, "key": keyframe.SpaceKey, "span": keyframe.SpaceSpan}
)

func init() {
	for _, m := range []keyframe.TieMode{keyframe.TieManual, keyframe.TieSlope, keyframe.TieSlopeAndAccel} {
		tieModes[m.String()] = m
	}
	for _, m := range []keyframe.AutoMode{keyframe.AutoManual, keyframe.AutoFlat, keyframe.AutoLinear, keyframe.AutoSmooth} {
		autoModes[m.String()] = m
	}
}

func spaceName(s keyframe.Space) string {
	if s == keyframe.SpaceSpan {
		return "span"
	}
	return "key"
}

// Encode returns the document describing c.
func Encode(c *keyframe.Curve) *Document {
	doc := &Document{}
	for k := range c.Keys() {
		dk := Key{
			Time:         k.Time().Ticks(),
			Value:        k.Value(),
			Interpolator: k.Interpolator().Name(),
		}
		if tie := k.TieMode(); tie != keyframe.TieManual {
			dk.Tie = tie.String()
		}
		ip := k.Interpolator()
		dk.Into = encodeTangent(k.Into().State(), ip)
		dk.From = encodeTangent(k.From().State(), ip)
		doc.Keys = append(doc.Keys, dk)
	}
	return doc
}

// encodeTangent returns the document form of a tangent's stored state, or nil
// if the state is what a new key with interpolator ip starts out with. Inert
// tangents are included, as their state applies once they gain a span.
func encodeTangent(st keyframe.TangentState, ip keyframe.Interpolator) *Tangent {
	def := keyframe.TangentState{Slope: ip.DefaultSlope(), Accel: ip.DefaultAccel()}
	if st == def {
		return nil
	}
	out := &Tangent{
		Slope:      st.Slope,
		SlopeSpace: spaceName(st.SlopeSpace),
		Accel:      st.Accel,
		AccelSpace: spaceName(st.AccelSpace),
	}
	if st.Auto != keyframe.AutoManual {
		out.Auto = st.Auto.String()
	}
	return out
}

// Marshal encodes c as YAML.
func Marshal(c *keyframe.Curve) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(Encode(c)); err != nil {
		return nil, fmt.Errorf("failed to encode curve: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode curve: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a curve from YAML. Interpolator names are looked up in
// reg, which may be nil to use [keyframe.Builtins]. The options are passed
// to [keyframe.NewCurve].
func Unmarshal(data []byte, reg *keyframe.Registry, opts ...keyframe.Option) (*keyframe.Curve, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse curve YAML: %w", err)
	}
	return Decode(&doc, reg, opts...)
}

// Decode builds a curve from a document.
func Decode(doc *Document, reg *keyframe.Registry, opts ...keyframe.Option) (*keyframe.Curve, error) {
	if err := validate.Struct(doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	keys := make([]*keyframe.Key, 0, len(doc.Keys))
	for i, dk := range doc.Keys {
		var kopts []keyframe.KeyOption
		if dk.Tie != "" {
			kopts = append(kopts, keyframe.WithTieMode(tieModes[dk.Tie]))
		}
		// The side a tie propagated to holds a span space slope. Applying it
		// first leaves the other side as the one edited last.
		first, second := keyframe.Into, keyframe.From
		if dk.Tie != "" && spanSlope(dk.From) && !spanSlope(dk.Into) {
			first, second = second, first
		}
		kopts = append(kopts, tangentOptions(first, dk.tangent(first))...)
		kopts = append(kopts, tangentOptions(second, dk.tangent(second))...)
		k, err := keyframe.NewKey(reg, keyframe.FromTicks(dk.Time), dk.Value, dk.Interpolator, kopts...)
		if err != nil {
			return nil, fmt.Errorf("key %d: %w", i, err)
		}
		keys = append(keys, k)
	}
	c := keyframe.NewCurve(reg, opts...)
	for _, k := range keys {
		c.AddKey(k, false)
	}
	return c, nil
}

func (k *Key) tangent(dir keyframe.Direction) *Tangent {
	if dir == keyframe.Into {
		return k.Into
	}
	return k.From
}

func spanSlope(t *Tangent) bool {
	return t != nil && t.SlopeSpace == "span"
}

func tangentOptions(dir keyframe.Direction, t *Tangent) []keyframe.KeyOption {
	if t == nil {
		return nil
	}
	return []keyframe.KeyOption{
		keyframe.WithSlope(dir, t.Slope, spaces[t.SlopeSpace]),
		keyframe.WithAccel(dir, t.Accel, spaces[t.AccelSpace]),
		keyframe.WithAutoMode(dir, autoModes[t.Auto]),
	}
}
