package sequencer

// NumKitSlots is the number of drum slots a kit maps.
const NumKitSlots = 16

// SlotNames labels the kit slots. A drum's Slot in the config picks one.
var SlotNames = [NumKitSlots]string{
	"Kick", "Snare", "Closed HH", "Open HH",
	"Low Tom", "Mid Tom", "High Tom", "Crash",
	"Ride", "Clap", "Rimshot", "Cowbell",
	"Clave", "Maracas", "Low Conga", "High Conga",
}

// DrumKit maps drum slots to MIDI notes
type DrumKit struct {
	Name  string
	Notes [NumKitSlots]uint8
}

// Note returns the MIDI note for slot, or false outside the kit.
func (k DrumKit) Note(slot int) (uint8, bool) {
	if slot < 0 || slot >= NumKitSlots {
		return 0, false
	}
	return k.Notes[slot], true
}

// Slot returns the first slot mapped to note.
func (k DrumKit) Slot(note uint8) (int, bool) {
	for i, n := range k.Notes {
		if n == note {
			return i, true
		}
	}
	return -1, false
}

// Kits contains all available drum kit mappings
var Kits = map[string]DrumKit{
	"gm": {
		Name: "General MIDI",
		Notes: [NumKitSlots]uint8{
			36, 38, 42, 46, 41, 43, 45, 49,
			51, 39, 37, 56, 75, 70, 64, 63,
		},
	},
	"rd8": {
		Name: "Behringer RD-8",
		Notes: [NumKitSlots]uint8{
			36, 40, 42, 46, 45, 48, 50, 49, // RD-8 snare is 40, not 38
			51, 39, 37, 56, 75, 70, 64, 63,
		},
	},
	"tr8s": {
		Name: "Roland TR-8S",
		Notes: [NumKitSlots]uint8{
			36, 38, 42, 46, 41, 43, 45, 49,
			51, 39, 37, 56, 75, 70, 62, 63,
		},
	},
	"er1": {
		Name: "Korg ER-1",
		Notes: [NumKitSlots]uint8{
			36, 38, 42, 46, 40, 41, 43, 49, // perc synths, PCM hats/crash, audio ins
			45, 39, 37, 56, 75, 70, 64, 63,
		},
	},
}

// KitNames returns the list of available kit names
func KitNames() []string {
	return []string{"gm", "rd8", "tr8s", "er1"}
}

// GetKit returns a kit by name, defaulting to GM if not found
func GetKit(name string) DrumKit {
	if kit, ok := Kits[name]; ok {
		return kit
	}
	return Kits[DefaultKit]
}

// DefaultKit is the default kit name
const DefaultKit = "gm"
