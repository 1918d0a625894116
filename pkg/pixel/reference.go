package pixel

// Reference is the straightforward per-texel converter.
type Reference struct{}

// Convert implements Converter.
func (Reference) Convert(raw []byte, width, height int, layout Layout, sel ComponentSelection) ([]byte, error) {
	n, err := checkInput(raw, width, height, layout, sel)
	if err != nil {
		return nil, err
	}
	bpp := layout.BytesPerPixel()
	out := make([]byte, n*4)
	for i := 0; i < n; i++ {
		c := unpack(layout, readTexel(raw, i*bpp, bpp))
		out[i*4+0] = c[sel[0]]
		out[i*4+1] = c[sel[1]]
		out[i*4+2] = c[sel[2]]
		out[i*4+3] = c[sel[3]]
	}
	return out, nil
}
