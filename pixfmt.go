package rawbridge

// Pixel-format normalization. The engines deliver either 4-byte RGBA (drop
// the trailing alpha) or 3-byte reversed-order BGR (swap the outer bytes);
// the output channel order is fixed RGB regardless of delivery order, so one
// of these conversions runs before every frame write.

// DropAlpha packs 4-byte RGBA pixels from src into 3-byte RGB pixels in dst,
// keeping the first three bytes of each pixel. dst must hold
// len(src)/4*3 bytes; src length must be a multiple of 4.
func DropAlpha(dst, src []byte) {
	di := 0
	for si := 0; si+3 < len(src); si += 4 {
		dst[di] = src[si]
		dst[di+1] = src[si+1]
		dst[di+2] = src[si+2]
		di += 3
	}
}

// SwapRB swaps byte 0 and byte 2 of every 3-byte pixel in place, converting
// BGR to RGB (or back).
func SwapRB(buf []byte) {
	for i := 0; i+2 < len(buf); i += 3 {
		buf[i], buf[i+2] = buf[i+2], buf[i]
	}
}

// swapBE32 byte-swaps every aligned 4-byte word of buf in place, converting
// big-endian sample words to little-endian. A trailing partial word is left
// untouched.
func swapBE32(buf []byte) {
	for i := 0; i+3 < len(buf); i += 4 {
		buf[i], buf[i+3] = buf[i+3], buf[i]
		buf[i+1], buf[i+2] = buf[i+2], buf[i+1]
	}
}
