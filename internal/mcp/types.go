package mcp

// PickColorInput is the input for the pick_color tool.
type PickColorInput struct {
	TimeoutSeconds int `json:"timeout_seconds,omitempty" jsonschema:"Seconds to wait for the user to click before giving up (default: 60, max: 600)"`
}

// ColorOutput describes a picked color.
type ColorOutput struct {
	Hex      string `json:"hex"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	PickedAt string `json:"picked_at,omitempty"`
}

// SamplePixelInput is the input for the sample_pixel tool.
type SamplePixelInput struct {
	X int `json:"x" jsonschema:"required,Horizontal screen coordinate in pixels"`
	Y int `json:"y" jsonschema:"required,Vertical screen coordinate in pixels"`
}

// LastColorInput is the input for the last_color tool.
type LastColorInput struct{}
