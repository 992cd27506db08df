package animgif

import (
	"image/color"

	"github.com/tidwall/gjson"
)

// config.go loads a batch of FrameOptions from a JSON manifest, for callers
// who describe a frame sequence data-driven instead of building
// FrameOptions struct literals in Go. Uses gjson's ForEach traversal instead
// of an encoding/json struct-tag decode, since the manifest is schema-light
// and queried rather than fully unmarshaled.

// LoadManifest parses a JSON array of per-frame option objects into
// FrameOptions values, in array order. Each object may set any of:
//
//	delay             centiseconds (int)
//	delayMs           milliseconds (int), used only if delay is absent/zero
//	quality           1..30 (int)
//	transparent       "#rrggbb" or {"r":int,"g":int,"b":int}
//	disposal          "none" | "doNotDispose" | "restoreBackground" | "restorePrevious"
//	autoTransparent   bool (accepted but not read; the encoder-wide flag is set by the caller)
//	clip              bool (accepted but not read, see above)
//	discardDuplicate  bool (accepted but not read, see above)
//
// Unknown keys are ignored. A malformed manifest (not a JSON array) is
// reported as an InvalidFrame error.
func LoadManifest(data []byte) ([]FrameOptions, error) {
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, newError(InvalidFrame, "manifest must be a JSON array of frame descriptors")
	}

	var opts []FrameOptions
	var parseErr error

	root.ForEach(func(_, entry gjson.Result) bool {
		if !entry.IsObject() {
			parseErr = newError(InvalidFrame, "manifest entries must be JSON objects")
			return false
		}

		o := FrameOptions{}

		if v := entry.Get("delay"); v.Exists() {
			o.DelayCentiseconds = int(v.Int())
		}
		if v := entry.Get("delayMs"); v.Exists() {
			o.DelayMS = int(v.Int())
		}
		if v := entry.Get("quality"); v.Exists() {
			o.Quality = int(v.Int())
		}

		if v := entry.Get("transparent"); v.Exists() {
			tc, err := parseTransparent(v)
			if err != nil {
				parseErr = err
				return false
			}
			o.Transparent = tc
		}

		if v := entry.Get("disposal"); v.Exists() {
			d, err := parseDisposal(v.String())
			if err != nil {
				parseErr = err
				return false
			}
			o.Disposal = d
		}

		opts = append(opts, o)
		return true
	})

	if parseErr != nil {
		return nil, parseErr
	}
	return opts, nil
}

func parseTransparent(v gjson.Result) (*color.RGBA, error) {
	if v.Type == gjson.String {
		s := v.String()
		r, g, b, err := parseHexColor(s)
		if err != nil {
			return nil, err
		}
		return &color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
	}
	if v.IsObject() {
		r := byte(v.Get("r").Int())
		g := byte(v.Get("g").Int())
		b := byte(v.Get("b").Int())
		return &color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
	}
	return nil, newError(InvalidFrame, "transparent must be a \"#rrggbb\" string or {r,g,b} object")
}

func parseHexColor(s string) (r, g, b byte, err error) {
	if len(s) == 7 && s[0] == '#' {
		s = s[1:]
	}
	if len(s) != 6 {
		return 0, 0, 0, newError(InvalidFrame, "transparent color string must be \"#rrggbb\"")
	}
	var v [3]byte
	for i := 0; i < 3; i++ {
		hi, ok1 := hexDigit(s[i*2])
		lo, ok2 := hexDigit(s[i*2+1])
		if !ok1 || !ok2 {
			return 0, 0, 0, newError(InvalidFrame, "transparent color string has invalid hex digits")
		}
		v[i] = hi<<4 | lo
	}
	return v[0], v[1], v[2], nil
}

func hexDigit(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}

func parseDisposal(s string) (Disposal, error) {
	switch s {
	case "", "none", "unspecified":
		return DisposalUnspecified, nil
	case "doNotDispose":
		return DisposalDoNotDispose, nil
	case "restoreBackground":
		return DisposalRestoreBackground, nil
	case "restorePrevious":
		return DisposalRestorePrevious, nil
	default:
		return DisposalUnspecified, newError(InvalidFrame, "unknown disposal value: "+s)
	}
}
