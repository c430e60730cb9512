package domain

// EffectCategory groups effects for display.
type EffectCategory string

const (
	CategoryMonochrome EffectCategory = "monochrome"
	CategoryColor      EffectCategory = "color"
)

// Effect is a preconfigured film simulation applied by the image model.
type Effect struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Category    EffectCategory `json:"category"`
	Prompt      string         `json:"-"`
}

var effectCatalog = []Effect{
	{
		ID:          "acros_bw",
		Name:        "Acros B&W",
		Description: "Smooth monochrome gradation with deep blacks and fine grain.",
		Category:    CategoryMonochrome,
		Prompt: "Convert this image to black and white using Fujifilm Acros film simulation. " +
			"Apply smooth gradation, deep rich blacks, beautiful highlight roll-off, and subtle film grain. " +
			"Maintain excellent tonal separation and contrast while preserving all detail and composition.",
	},
	{
		ID:          "classic_chrome",
		Name:        "Classic Chrome",
		Description: "Documentary look with muted colors and strong contrast.",
		Category:    CategoryColor,
		Prompt: "Apply Fujifilm Classic Chrome film simulation to this image. " +
			"Create a documentary-style look with slightly lower saturation, stronger contrast, and a distinctive Kodak-like color palette. " +
			"Maintain photojournalism aesthetic with bold yet subdued tones.",
	},
	{
		ID:          "classic_negative",
		Name:        "Classic Negative",
		Description: "Nostalgic print-film colors with warm skin tones.",
		Category:    CategoryColor,
		Prompt: "Apply Fujifilm Classic Negative film simulation to this image. " +
			"Create rich, bold colors with nostalgic rendering reminiscent of 1990s-2000s photo albums. " +
			"Apply complex color shifts where greens appear silvery, enhance skin tone warmth, and create emotionally-driven contrast.",
	},
}

// Effects returns a copy of the catalog in display order.
func Effects() []Effect {
	out := make([]Effect, len(effectCatalog))
	copy(out, effectCatalog)
	return out
}

// EffectIDs returns the identifiers of all catalog entries.
func EffectIDs() []string {
	ids := make([]string, 0, len(effectCatalog))
	for _, e := range effectCatalog {
		ids = append(ids, e.ID)
	}
	return ids
}

// LookupEffect returns the catalog entry for id.
func LookupEffect(id string) (Effect, bool) {
	for _, e := range effectCatalog {
		if e.ID == id {
			return e, true
		}
	}
	return Effect{}, false
}
