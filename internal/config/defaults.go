package config

type typeDefault struct {
	displayType    string
	displayVariant string
	buttons        map[string]string
	options        map[string]string
}

// Inky Impression HATs expose four buttons on BCM 5, 6, 16 and 24.
var impressionPins = map[string]string{
	"A": "5u",
	"B": "6u",
	"C": "16u",
	"D": "24u",
}

// Window rectangles line up with the physical buttons on the left edge.
var impressionRects = map[string]string{
	"A": "0,37,37,74",
	"B": "0,148,37,185",
	"C": "0,259,37,296",
	"D": "0,370,37,407",
}

var typeDefaults = map[string]typeDefault{
	"inky-impression-5.7": {
		displayType:    "inky",
		displayVariant: "5.7",
		buttons:        impressionPins,
		options:        map[string]string{"width": "600", "height": "448"},
	},
	"inky-impression-7.3": {
		displayType:    "inky",
		displayVariant: "7.3",
		buttons:        impressionPins,
		options:        map[string]string{"width": "800", "height": "480"},
	},
	"window-inky-impression-5.7": {
		displayType: "window",
		buttons:     impressionRects,
		options:     map[string]string{"width": "600", "height": "448", "button_color": "#777777"},
	},
	"window-inky-impression-7.3": {
		displayType: "window",
		buttons:     impressionRects,
		options:     map[string]string{"width": "800", "height": "480", "button_color": "#777777"},
	},
}

// typeAliases map alternative names, including the pygame-era ones, onto a
// backend kind or preset.
var typeAliases = map[string]string{
	"simulator":                  "window",
	"pygame":                     "window",
	"pygame-inky-impression-5.7": "window-inky-impression-5.7",
	"pygame-inky-impression-7.3": "window-inky-impression-7.3",
}
