// SPDX-License-Identifier: MPL-2.0

package dts

import (
	"encoding/xml"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Element and attribute names of the DTS metadata document. The channel
// element name is misspelled in the file format itself.
const (
	elemModule  = "Module"
	elemChannel = "AnalogInputChanel"

	attrStartRecordSample = "StartRecordSampleNumber"
	attrProportional      = "ProportionalToExcitation"
	attrIsInverted        = "IsInverted"
	attrMeasuredExcit     = "MeasuredExcitationVoltage"
	attrFactoryExcit      = "FactoryExcitationVoltage"
	attrInitialEU         = "InitialEu"
	attrZeroMethod        = "ZeroMethod"
	attrUnit              = "Eu"
	attrDisplayOrder      = "AbsoluteDisplayOrder"
	attrDescription       = "Description"
	attrSerialNumber      = "SerialNumber"
	attrSensitivity       = "Sensitivity"
)

// ParseMetadata parses the DTS metadata document into one entry per channel
// element, flattening nested Module grouping and re-sorting ascending by the
// absolute display order, which is the authoritative channel ordering.
//
// The raw bytes may be UTF-8 or UTF-16LE/BE, with or without a byte-order
// mark. Some acquisition firmware concatenates two XML prologs into one
// file; only the content before the second prolog is parsed.
func ParseMetadata(raw []byte) ([]ChannelMetadata, error) {
	text, err := decodeMetadataText(raw)
	if err != nil {
		return nil, err
	}
	text = trimDuplicateProlog(text)

	dec := xml.NewDecoder(strings.NewReader(text))
	// The prolog may still declare utf-16; the text has already been decoded,
	// so every charset is passed through as-is.
	dec.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) { return input, nil }

	var (
		channels    []ChannelMetadata
		moduleStack []float64
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &FormatError{Reason: "failed to parse DTS metadata XML", Err: err}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case elemModule:
				start := 0.0
				for _, a := range t.Attr {
					if a.Name.Local == attrStartRecordSample {
						start = parseFloatAttr(a.Value)
					}
				}
				moduleStack = append(moduleStack, start)
			case elemChannel:
				start := 0.0
				if len(moduleStack) > 0 {
					start = moduleStack[len(moduleStack)-1]
				}
				channels = append(channels, channelFromAttrs(t.Attr, start))
			}
		case xml.EndElement:
			if t.Name.Local == elemModule && len(moduleStack) > 0 {
				moduleStack = moduleStack[:len(moduleStack)-1]
			}
		}
	}

	sort.SliceStable(channels, func(i, j int) bool {
		return channels[i].DisplayOrder < channels[j].DisplayOrder
	})

	return channels, nil
}

func channelFromAttrs(attrs []xml.Attr, moduleStart float64) ChannelMetadata {
	meta := ChannelMetadata{
		MeasuredExcitationVoltage: math.NaN(),
		FactoryExcitationVoltage:  math.NaN(),
		Sensitivity:               math.NaN(),
		ZeroMethod:                ZeroNone,
		StartRecordSampleNumber:   moduleStart,
	}

	for _, a := range attrs {
		switch a.Name.Local {
		case attrProportional:
			meta.ProportionalToExcitation = strings.EqualFold(a.Value, "True")
		case attrIsInverted:
			meta.IsInverted = strings.EqualFold(a.Value, "True")
		case attrMeasuredExcit:
			meta.MeasuredExcitationVoltage = parseFloatAttr(a.Value)
		case attrFactoryExcit:
			meta.FactoryExcitationVoltage = parseFloatAttr(a.Value)
		case attrInitialEU:
			meta.InitialEU = parseFloatAttr(a.Value)
		case attrZeroMethod:
			switch a.Value {
			case "UsePreCalZero":
				meta.ZeroMethod = ZeroUsePreCalZero
			case "AverageOverTime":
				meta.ZeroMethod = ZeroAverageOverTime
			default:
				meta.ZeroMethod = ZeroNone
			}
		case attrUnit:
			meta.Unit = a.Value
		case attrDescription:
			meta.Description = a.Value
		case attrSerialNumber:
			meta.SerialNumber = a.Value
		case attrSensitivity:
			meta.Sensitivity = parseFloatAttr(a.Value)
		case attrDisplayOrder:
			if v, err := strconv.ParseUint(strings.TrimSpace(a.Value), 10, 32); err == nil {
				meta.DisplayOrder = uint32(v)
			}
		}
	}

	return meta
}

// decodeMetadataText turns the raw document bytes into a UTF-8 string,
// honoring a byte-order mark when present and falling back to a zero-byte
// heuristic for BOM-less UTF-16.
func decodeMetadataText(raw []byte) (string, error) {
	switch {
	case len(raw) == 0:
		return "", nil
	case len(raw) >= 3 && raw[0] == 0xEF && raw[1] == 0xBB && raw[2] == 0xBF:
		raw = raw[3:]
		if !utf8.Valid(raw) {
			return "", &FormatError{Reason: "failed to decode DTS metadata: invalid UTF-8 after BOM"}
		}
		return string(raw), nil
	case len(raw) >= 2 && raw[0] == 0xFF && raw[1] == 0xFE:
		return decodeUTF16(raw[2:], unicode.LittleEndian)
	case len(raw) >= 2 && raw[0] == 0xFE && raw[1] == 0xFF:
		return decodeUTF16(raw[2:], unicode.BigEndian)
	}

	// BOM-less UTF-16 is detected by the zero byte in the first code unit.
	// This must run before the UTF-8 check: ASCII-only UTF-16 text is
	// byte-wise valid UTF-8 (NUL included) and would otherwise slip through.
	if len(raw) > 1 && raw[0] != 0 && raw[1] == 0 {
		return decodeUTF16(raw, unicode.LittleEndian)
	}
	if len(raw) > 1 && raw[0] == 0 {
		return decodeUTF16(raw, unicode.BigEndian)
	}

	if utf8.Valid(raw) {
		return string(raw), nil
	}

	return "", &FormatError{Reason: "unable to determine encoding of DTS metadata file"}
}

func decodeUTF16(b []byte, endianness unicode.Endianness) (string, error) {
	dec := unicode.UTF16(endianness, unicode.IgnoreBOM).NewDecoder()
	out, _, err := transform.Bytes(dec, b)
	if err != nil {
		return "", &FormatError{Reason: "failed to decode UTF-16 DTS metadata", Err: err}
	}
	return string(out), nil
}

// trimDuplicateProlog drops everything from a second "<?xml" declaration
// onward, a quirk of some legacy exports.
func trimDuplicateProlog(text string) string {
	first := strings.Index(text, "<?xml")
	if first < 0 {
		return text
	}
	rest := text[first+5:]
	second := strings.Index(rest, "<?xml")
	if second < 0 {
		return text
	}
	return text[:first+5+second]
}

func parseFloatAttr(value string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
