package render

import (
	"log/slog"

	ppt "github.com/VantageDataChat/GoPPT"

	"auto_slide_deck_generator/theme"
)

// NeutralBackground replaces a background spec that cannot be applied.
const NeutralBackground = "F2F2F2"

// backgroundFill converts a theme background into a slide fill. An invalid
// spec degrades to a neutral solid fill; it never aborts the render.
func backgroundFill(bg theme.Background, logger *slog.Logger) *ppt.Fill {
	if err := bg.Validate(); err != nil {
		logger.Warn("background not applicable, using neutral fill", "err", err)
		return solidFill(NeutralBackground)
	}
	if bg.Kind == theme.BackgroundSolid {
		return solidFill(bg.Color1.Hex())
	}
	return ppt.NewFill().SetGradientLinear(color(bg.Color1.Hex()), color(bg.Color2.Hex()), bg.AngleDegrees)
}

func solidFill(hex string) *ppt.Fill {
	return ppt.NewFill().SetSolid(color(hex))
}

func color(hex string) ppt.Color {
	return ppt.NewColor("FF" + hex)
}
