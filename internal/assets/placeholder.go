package assets

import (
	"hash/fnv"
	"image"

	"github.com/fogleman/gg"
)

// Soft background tints for placeholder cards. The tint is picked by a
// hash of the text so the same title always gets the same card.
var placeholderTints = [][3]float64{
	{0.93, 0.94, 0.96},
	{0.93, 0.96, 0.93},
	{0.96, 0.94, 0.91},
	{0.94, 0.92, 0.96},
	{0.91, 0.95, 0.96},
	{0.96, 0.92, 0.93},
}

var placeholderFontPaths = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Bold.ttf",
	"/usr/share/fonts/TTF/DejaVuSans-Bold.ttf",
	"/Library/Fonts/Arial Bold.ttf",
	"C:\\Windows\\Fonts\\arialbd.ttf",
}

// Placeholder renders a simple colored card with the text centered and
// wrapped. It never fails: if no system font can be loaded the drawing
// falls back to gg's built-in face.
func Placeholder(text string, width, height int) image.Image {
	dc := gg.NewContext(width, height)

	tint := placeholderTints[int(hashString(text))%len(placeholderTints)]
	dc.SetRGB(tint[0], tint[1], tint[2])
	dc.Clear()

	for _, path := range placeholderFontPaths {
		if err := dc.LoadFontFace(path, 48); err == nil {
			break
		}
	}

	dc.SetRGB(0.08, 0.08, 0.08)
	dc.DrawStringWrapped(text,
		float64(width)/2, float64(height)/2,
		0.5, 0.5,
		float64(width)*0.8, 1.5,
		gg.AlignCenter)

	return dc.Image()
}

func hashString(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}
