package main

import (
	"bytes"
	"testing"
)

func fourcc(a, b, c, d byte) PixelFormat {
	return PixelFormat(uint32(a) | uint32(b)<<8 | uint32(c)<<16 | uint32(d)<<24)
}

func TestEncodePixel_KnownLayouts(t *testing.T) {
	const full = 0xFFFFFFFF
	cases := []struct {
		name   string
		format PixelFormat
		r      uint32
		want   []byte
	}{
		{"XRGB8888 red", FormatXRGB8888, full, []byte{0x00, 0x00, 0xFF, 0xFF}},
		{"ABGR8888 red", FormatABGR8888, full, []byte{0xFF, 0x00, 0x00, 0xFF}},
		{"BGRA8888 red", FormatBGRA8888, full, []byte{0xFF, 0xFF, 0x00, 0x00}},
		{"RGB565 red", FormatRGB565, full, []byte{0x00, 0xF8}},
		{"RGB565_BE red", FormatRGB565 | FormatBigEndian, full, []byte{0xF8, 0x00}},
		{"BGR565 red", FormatBGR565, full, []byte{0x1F, 0x00}},
		{"RGB888 red", FormatRGB888, full, []byte{0x00, 0xF8, 0x00}},
		{"BGR888 red", FormatBGR888, full, []byte{0x1F, 0x00, 0x00}},
		{"RGB332 red", FormatRGB332, full, []byte{0xE0}},
		{"BGR233 red", FormatBGR233, full, []byte{0x07}},
		{"ARGB4444 red", FormatARGB4444, full, []byte{0x00, 0xFF}},
		{"RGBA5551 red", FormatRGBA5551, full, []byte{0x01, 0xF8}},
		{"XRGB2101010 red", FormatXRGB2101010, full, []byte{0x00, 0x00, 0xF0, 0xFF}},
		{"C8 red", FormatC8, full, []byte{0xFF}},
		{"RGB565 half red", FormatRGB565, 0x7FFFFFFF, []byte{0x00, 0x78}},
	}
	for _, tc := range cases {
		got := make([]byte, len(tc.want))
		encodePixel(got, tc.format, full, tc.r, 0, 0)
		if !bytes.Equal(got, tc.want) {
			t.Fatalf("%s: expected % X, got % X", tc.name, tc.want, got)
		}
	}
}

func TestEncodePixel_C8Black(t *testing.T) {
	got := []byte{0x55}
	encodePixel(got, FormatC8, 0xFFFFFFFF, 0, 0, 0)
	if got[0] != 0 {
		t.Fatalf("expected 0x00, got 0x%02X", got[0])
	}
}

func TestEncodePixel_UnknownFormatWritesNothing(t *testing.T) {
	got := []byte{1, 2, 3, 4}
	encodePixel(got, fourcc('Y', 'U', 'Y', 'V'), 0xFFFFFFFF, 0xFFFFFFFF, 0xFFFFFFFF, 0xFFFFFFFF)
	if !bytes.Equal(got, []byte{1, 2, 3, 4}) {
		t.Fatalf("expected untouched buffer, got % X", got)
	}
}

func TestEncodePixel_ShortDestinationWritesNothing(t *testing.T) {
	got := []byte{1, 2, 3}
	encodePixel(got, FormatXRGB8888, 0xFFFFFFFF, 0xFFFFFFFF, 0xFFFFFFFF, 0xFFFFFFFF)
	if !bytes.Equal(got, []byte{1, 2, 3}) {
		t.Fatalf("expected untouched buffer, got % X", got)
	}
}

func TestPixelCodec_WhiteAndBlackRoundTrip(t *testing.T) {
	for name, f := range formatNames {
		for _, big := range []bool{false, true} {
			format := f
			if big {
				format |= FormatBigEndian
			}
			buf := make([]byte, 4)
			encodePixel(buf, format, channelFull, channelFull, channelFull, channelFull)
			a, r, g, b, ok := decodePixel(buf, format)
			if !ok || a != channelFull || r != channelFull || g != channelFull || b != channelFull {
				t.Fatalf("%s big=%v: expected white, got a=%08x r=%08x g=%08x b=%08x ok=%v", name, big, a, r, g, b, ok)
			}
			encodePixel(buf, format, channelFull, 0, 0, 0)
			_, r, g, b, ok = decodePixel(buf, format)
			if !ok || r != 0 || g != 0 || b != 0 {
				t.Fatalf("%s big=%v: expected black, got r=%08x g=%08x b=%08x", name, big, r, g, b)
			}
		}
	}
}

func TestPixelCodec_HighByteOf24BitFormatsIsZero(t *testing.T) {
	for _, f := range []PixelFormat{FormatRGB888, FormatBGR888} {
		buf := []byte{0x55, 0x55, 0x55}
		encodePixel(buf, f, channelFull, channelFull, channelFull, channelFull)
		if buf[2] != 0 {
			t.Fatalf("%v: expected zero high byte, got 0x%02X", f, buf[2])
		}
	}
}

func TestFormatCpp(t *testing.T) {
	cases := []struct {
		format PixelFormat
		want   int
	}{
		{FormatC8, 1},
		{FormatRGB332, 1},
		{FormatRGB565, 2},
		{FormatXRGB1555, 2},
		{FormatRGB888, 3},
		{FormatXRGB8888, 4},
		{FormatBGRA1010102, 4},
		{FormatXRGB8888 | FormatBigEndian, 4},
		{fourcc('N', 'V', '1', '2'), 0},
	}
	for _, tc := range cases {
		if got := formatCpp(tc.format); got != tc.want {
			t.Fatalf("%v: expected cpp %d, got %d", tc.format, tc.want, got)
		}
	}
}

func TestParsePixelFormat(t *testing.T) {
	f, ok := parsePixelFormat("XRGB8888")
	if !ok || f != FormatXRGB8888 {
		t.Fatalf("expected XRGB8888, got %v ok=%v", f, ok)
	}
	f, ok = parsePixelFormat("BGR565_BE")
	if !ok || f != FormatBGR565|FormatBigEndian {
		t.Fatalf("expected BGR565_BE, got %v ok=%v", f, ok)
	}
	if f.String() != "BGR565_BE" {
		t.Fatalf("expected name BGR565_BE, got %q", f.String())
	}
	if _, ok := parsePixelFormat("YUYV"); ok {
		t.Fatal("expected YUYV to be rejected")
	}
	if s := fourcc('Y', 'U', 'Y', 'V').String(); s != "unknown" {
		t.Fatalf("expected unknown, got %q", s)
	}
}

func TestExpand_ReplicatesBits(t *testing.T) {
	if got := expand(0x1F, 5); got != 0xFFFFFFFF {
		t.Fatalf("expected 0xFFFFFFFF, got 0x%08X", got)
	}
	if got := expand(0x10, 5); got != 0x84210842 {
		t.Fatalf("expected 0x84210842, got 0x%08X", got)
	}
	if got := expand(1, 0); got != 0 {
		t.Fatalf("expected 0 for zero-width field, got 0x%08X", got)
	}
}

// pixelField is where a channel lands in the packed value. A zero width means
// the format has no such channel.
type pixelField struct {
	shift, width uint
}

type packedLayout struct {
	cpp        int
	a, r, g, b pixelField
}

var packedLayouts = map[string]packedLayout{
	"RGB332": {1, pixelField{}, pixelField{5, 3}, pixelField{2, 3}, pixelField{0, 2}},
	"BGR233": {1, pixelField{}, pixelField{0, 3}, pixelField{3, 3}, pixelField{6, 2}},

	"XRGB4444": {2, pixelField{12, 4}, pixelField{8, 4}, pixelField{4, 4}, pixelField{0, 4}},
	"ARGB4444": {2, pixelField{12, 4}, pixelField{8, 4}, pixelField{4, 4}, pixelField{0, 4}},
	"XBGR4444": {2, pixelField{12, 4}, pixelField{0, 4}, pixelField{4, 4}, pixelField{8, 4}},
	"ABGR4444": {2, pixelField{12, 4}, pixelField{0, 4}, pixelField{4, 4}, pixelField{8, 4}},
	"RGBX4444": {2, pixelField{0, 4}, pixelField{12, 4}, pixelField{8, 4}, pixelField{4, 4}},
	"RGBA4444": {2, pixelField{0, 4}, pixelField{12, 4}, pixelField{8, 4}, pixelField{4, 4}},
	"BGRX4444": {2, pixelField{0, 4}, pixelField{4, 4}, pixelField{8, 4}, pixelField{12, 4}},
	"BGRA4444": {2, pixelField{0, 4}, pixelField{4, 4}, pixelField{8, 4}, pixelField{12, 4}},

	"XRGB1555": {2, pixelField{15, 1}, pixelField{10, 5}, pixelField{5, 5}, pixelField{0, 5}},
	"ARGB1555": {2, pixelField{15, 1}, pixelField{10, 5}, pixelField{5, 5}, pixelField{0, 5}},
	"XBGR1555": {2, pixelField{15, 1}, pixelField{0, 5}, pixelField{5, 5}, pixelField{10, 5}},
	"ABGR1555": {2, pixelField{15, 1}, pixelField{0, 5}, pixelField{5, 5}, pixelField{10, 5}},
	"RGBX5551": {2, pixelField{0, 1}, pixelField{11, 5}, pixelField{6, 5}, pixelField{1, 5}},
	"RGBA5551": {2, pixelField{0, 1}, pixelField{11, 5}, pixelField{6, 5}, pixelField{1, 5}},
	"BGRX5551": {2, pixelField{0, 1}, pixelField{1, 5}, pixelField{6, 5}, pixelField{11, 5}},
	"BGRA5551": {2, pixelField{0, 1}, pixelField{1, 5}, pixelField{6, 5}, pixelField{11, 5}},

	"RGB565": {2, pixelField{}, pixelField{11, 5}, pixelField{5, 6}, pixelField{0, 5}},
	"BGR565": {2, pixelField{}, pixelField{0, 5}, pixelField{5, 6}, pixelField{11, 5}},
	"RGB888": {3, pixelField{}, pixelField{11, 5}, pixelField{5, 6}, pixelField{0, 5}},
	"BGR888": {3, pixelField{}, pixelField{0, 5}, pixelField{5, 6}, pixelField{11, 5}},

	"XRGB8888": {4, pixelField{24, 8}, pixelField{16, 8}, pixelField{8, 8}, pixelField{0, 8}},
	"ARGB8888": {4, pixelField{24, 8}, pixelField{16, 8}, pixelField{8, 8}, pixelField{0, 8}},
	"XBGR8888": {4, pixelField{24, 8}, pixelField{0, 8}, pixelField{8, 8}, pixelField{16, 8}},
	"ABGR8888": {4, pixelField{24, 8}, pixelField{0, 8}, pixelField{8, 8}, pixelField{16, 8}},
	"RGBX8888": {4, pixelField{0, 8}, pixelField{24, 8}, pixelField{16, 8}, pixelField{8, 8}},
	"RGBA8888": {4, pixelField{0, 8}, pixelField{24, 8}, pixelField{16, 8}, pixelField{8, 8}},
	"BGRX8888": {4, pixelField{0, 8}, pixelField{8, 8}, pixelField{16, 8}, pixelField{24, 8}},
	"BGRA8888": {4, pixelField{0, 8}, pixelField{8, 8}, pixelField{16, 8}, pixelField{24, 8}},

	"XRGB2101010": {4, pixelField{30, 2}, pixelField{20, 10}, pixelField{10, 10}, pixelField{0, 10}},
	"ARGB2101010": {4, pixelField{30, 2}, pixelField{20, 10}, pixelField{10, 10}, pixelField{0, 10}},
	"XBGR2101010": {4, pixelField{30, 2}, pixelField{0, 10}, pixelField{10, 10}, pixelField{20, 10}},
	"ABGR2101010": {4, pixelField{30, 2}, pixelField{0, 10}, pixelField{10, 10}, pixelField{20, 10}},
	"RGBX1010102": {4, pixelField{0, 2}, pixelField{22, 10}, pixelField{12, 10}, pixelField{2, 10}},
	"RGBA1010102": {4, pixelField{0, 2}, pixelField{22, 10}, pixelField{12, 10}, pixelField{2, 10}},
	"BGRX1010102": {4, pixelField{0, 2}, pixelField{2, 10}, pixelField{12, 10}, pixelField{22, 10}},
	"BGRA1010102": {4, pixelField{0, 2}, pixelField{2, 10}, pixelField{12, 10}, pixelField{22, 10}},
}

func (f pixelField) place(v uint32) uint32 {
	if f.width == 0 {
		return 0
	}
	return v >> (32 - f.width) << f.shift
}

func TestPixelCodec_ChannelsRoundTrip(t *testing.T) {
	const a, r, g, b = 0x9ABCDEF0, 0x12345678, 0xDEADBEEF, 0x87654321
	for name, base := range formatNames {
		if base == FormatC8 {
			continue
		}
		l, ok := packedLayouts[name]
		if !ok {
			t.Fatalf("%s: no expected layout", name)
		}
		packed := l.a.place(a) | l.r.place(r) | l.g.place(g) | l.b.place(b)

		for _, big := range []bool{false, true} {
			format := base
			if big {
				format |= FormatBigEndian
			}
			want := make([]byte, l.cpp)
			for i := range l.cpp {
				shift := 8 * i
				if big {
					shift = 8 * (l.cpp - 1 - i)
				}
				want[i] = byte(packed >> shift)
			}
			got := make([]byte, l.cpp)
			encodePixel(got, format, a, r, g, b)
			if !bytes.Equal(got, want) {
				t.Fatalf("%v: expected % X, got % X", format, want, got)
			}

			da, dr, dg, db, ok := decodePixel(got, format)
			if !ok {
				t.Fatalf("%v: expected decode to succeed", format)
			}
			channels := []struct {
				label   string
				f       pixelField
				in, out uint32
			}{
				{"a", l.a, a, da},
				{"r", l.r, r, dr},
				{"g", l.g, g, dg},
				{"b", l.b, b, db},
			}
			for _, c := range channels {
				if c.f.width == 0 {
					if c.label == "a" && c.out != channelFull {
						t.Fatalf("%v: expected opaque alpha, got %08x", format, c.out)
					}
					continue
				}
				if c.out>>(32-c.f.width) != c.in>>(32-c.f.width) {
					t.Fatalf("%v: channel %s expected top %d bits of %08x, got %08x", format, c.label, c.f.width, c.in, c.out)
				}
			}
		}
	}
}

func TestPixelFormat_FourccCodes(t *testing.T) {
	const window PixelFormat = FormatABGR8888
	if window != fourcc('A', 'B', '2', '4') {
		t.Fatalf("expected AB24, got %08x", uint32(window))
	}
	cases := map[PixelFormat]PixelFormat{
		FormatC8:          fourcc('C', '8', ' ', ' '),
		FormatRGB565:      fourcc('R', 'G', '1', '6'),
		FormatBGR888:      fourcc('B', 'G', '2', '4'),
		FormatXRGB8888:    fourcc('X', 'R', '2', '4'),
		FormatBGRA1010102: fourcc('B', 'A', '3', '0'),
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("expected %08x, got %08x", uint32(want), uint32(got))
		}
	}
}
