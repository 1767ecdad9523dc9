package tts

// Voice is one entry of the public catalog: a human-facing label plus the
// storage object holding its preview clip.
type Voice struct {
	Label       string `json:"label"`
	PreviewFile string `json:"-"`
}

// DefaultVoiceID is used for any label missing from the mapping. An
// unrecognized label is never an error.
const DefaultVoiceID = "Leda"

// voiceIDs maps user-facing labels to provider voice identifiers,
// case-sensitively.
var voiceIDs = map[string]string{
	"Amel":  "Leda",
	"Wael":  "Algenib",
	"Imene": "Sulafat",
	"Amine": "Achird",
}

// Catalog lists the selectable voices in display order.
var Catalog = []Voice{
	{Label: "Amel", PreviewFile: "amel.wav"},
	{Label: "Wael", PreviewFile: "wael.wav"},
	{Label: "Imene", PreviewFile: "imen.wav"},
	{Label: "Amine", PreviewFile: "amine.wav"},
}

// ResolveVoice maps a label to its provider identifier, falling back to
// DefaultVoiceID.
func ResolveVoice(label string) string {
	if id, ok := voiceIDs[label]; ok {
		return id
	}
	return DefaultVoiceID
}
