// internal/driver/wire/text.go
package wire

import (
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"

	"printer-bridge/internal/model"
)

var encoders = map[model.Encoding]encoding.Encoding{
	model.EncodingWindows1252: charmap.Windows1252,
	model.EncodingWindows1251: charmap.Windows1251,
	model.EncodingShiftJIS:    japanese.ShiftJIS,
	model.EncodingGB2312:      simplifiedchinese.GBK,
	model.EncodingBig5:        traditionalchinese.Big5,
}

// EncodeText converts s into the byte encoding enc.
// Characters the target cannot represent become '?'; the charmap replacement
// byte 0x1A is a device command on some emulations.
func EncodeText(s string, enc model.Encoding) ([]byte, error) {
	switch enc {
	case model.EncodingUTF8:
		return []byte(s), nil
	case model.EncodingASCII, "":
		out := make([]byte, 0, len(s))
		for _, r := range s {
			if r < 0x80 {
				out = append(out, byte(r))
			} else {
				out = append(out, '?')
			}
		}
		return out, nil
	}

	e, ok := encoders[enc]
	if !ok {
		return nil, fmt.Errorf("unsupported text encoding %q", enc)
	}
	encoder := e.NewEncoder()
	if out, err := encoder.String(s); err == nil {
		return []byte(out), nil
	}

	out := make([]byte, 0, len(s))
	for _, r := range s {
		b, err := encoder.String(string(r))
		if err != nil {
			out = append(out, '?')
			continue
		}
		out = append(out, b...)
	}
	return out, nil
}
