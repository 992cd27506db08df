package main

import (
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/gifkit/animgif"
)

func main() {
	fmt.Println("GIF Encoder Examples")
	fmt.Println("====================")

	fmt.Println("\n1. Creating simple animation...")
	if err := simpleAnimation(); err != nil {
		fmt.Printf("Error: %v\n", err)
	} else {
		fmt.Println("created animation.gif")
	}

	fmt.Println("\n2. Creating gradient animation...")
	if err := gradientAnimation(); err != nil {
		fmt.Printf("Error: %v\n", err)
	} else {
		fmt.Println("created gradient.gif")
	}

	fmt.Println("\n3. Creating with custom options...")
	if err := customOptions(); err != nil {
		fmt.Printf("Error: %v\n", err)
	} else {
		fmt.Println("created custom.gif")
	}

	fmt.Println("\nAll done!")
}

// simpleAnimation draws a moving red circle over a white background.
func simpleAnimation() error {
	width, height := 200, 200

	sink := animgif.NewMemorySink()
	enc, err := animgif.NewEncoder(sink, width, height, animgif.EncoderOptions{
		Repeat:  0,
		Quality: 10,
	})
	if err != nil {
		return err
	}

	for i := 0; i < 10; i++ {
		img := image.NewRGBA(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				img.Set(x, y, color.White)
			}
		}

		centerX := 50 + i*15
		centerY := 100
		radius := 30
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				dx, dy := x-centerX, y-centerY
				if dx*dx+dy*dy <= radius*radius {
					img.Set(x, y, color.RGBA{255, 0, 0, 255})
				}
			}
		}

		frame, err := animgif.FrameFromImage(img, width, height, animgif.FrameOptions{
			DelayMS: 100,
		})
		if err != nil {
			return err
		}
		if err := enc.AddFrame(frame); err != nil {
			return err
		}
	}

	if err := enc.Close(); err != nil {
		return err
	}
	return os.WriteFile("animation.gif", sink.Bytes(), 0644)
}

// gradientAnimation sweeps a color gradient across the canvas.
func gradientAnimation() error {
	width, height := 200, 200

	sink := animgif.NewMemorySink()
	enc, err := animgif.NewEncoder(sink, width, height, animgif.EncoderOptions{
		Repeat:  0,
		Quality: 10,
	})
	if err != nil {
		return err
	}

	for f := 0; f < 20; f++ {
		img := image.NewRGBA(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				r := uint8((x + f*10) % 256)
				g := uint8((y + f*10) % 256)
				img.Set(x, y, color.RGBA{r, g, 200, 255})
			}
		}

		frame, err := animgif.FrameFromImage(img, width, height, animgif.FrameOptions{
			DelayMS: 50,
		})
		if err != nil {
			return err
		}
		if err := enc.AddFrame(frame); err != nil {
			return err
		}
	}

	if err := enc.Close(); err != nil {
		return err
	}
	return os.WriteFile("gradient.gif", sink.Bytes(), 0644)
}

// customOptions demonstrates per-frame disposal plus the ClipFrame and
// DiscardDuplicates encoder-wide optimizations together.
func customOptions() error {
	width, height := 150, 150

	sink := animgif.NewMemorySink()
	enc, err := animgif.NewEncoder(sink, width, height, animgif.EncoderOptions{
		Repeat:            0,
		Quality:           5,
		ClipFrame:         true,
		DiscardDuplicates: true,
	})
	if err != nil {
		return err
	}

	size, offsetX, offsetY := 50, 50, 50

	for f := 0; f < 15; f++ {
		img := image.NewRGBA(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				img.Set(x, y, color.RGBA{20, 20, 40, 255})
			}
		}

		hue := float64(f) / 15.0
		r, g, b := hsvToRGB(hue, 1.0, 1.0)
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				img.Set(offsetX+x, offsetY+y, color.RGBA{r, g, b, 255})
			}
		}

		frame, err := animgif.FrameFromImage(img, width, height, animgif.FrameOptions{
			DelayCentiseconds: 8,
			Disposal:          animgif.DisposalRestoreBackground,
		})
		if err != nil {
			return err
		}
		if err := enc.AddFrame(frame); err != nil {
			return err
		}
	}

	if err := enc.Close(); err != nil {
		return err
	}

	if summary, err := enc.DebugSummary(); err == nil {
		fmt.Println(summary)
	}

	return os.WriteFile("custom.gif", sink.Bytes(), 0644)
}

// hsvToRGB converts HSV color to RGB (h: 0-1, s: 0-1, v: 0-1).
func hsvToRGB(h, s, v float64) (uint8, uint8, uint8) {
	if s == 0 {
		val := uint8(v * 255)
		return val, val, val
	}

	h = h * 6
	i := int(h)
	f := h - float64(i)
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))

	var r, g, b float64
	switch i {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}

	return uint8(r * 255), uint8(g * 255), uint8(b * 255)
}
