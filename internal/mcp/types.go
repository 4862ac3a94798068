package mcp

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct{}

// WindowInfo describes one logical window and its peers.
type WindowInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name,omitempty"`
	Parent     string `json:"parent,omitempty"`
	Owner      string `json:"owner,omitempty"`
	Style      string `json:"style"`
	ExStyle    string `json:"ex_style,omitempty"`
	Rect       string `json:"rect"`
	Client     string `json:"client"`
	Managed    bool   `json:"managed"`
	Visible    bool   `json:"visible"`
	Minimized  bool   `json:"minimized"`
	Desktop    bool   `json:"desktop,omitempty"`
	WholePeer  string `json:"whole_peer,omitempty"`
	ClientPeer string `json:"client_peer,omitempty"`
	IconPeer   string `json:"icon_peer,omitempty"`
}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Windows []WindowInfo `json:"windows"`
}

// MoveWindowInput is the input for the move_window tool.
type MoveWindowInput struct {
	Window string `json:"window" jsonschema:"required,Window name from the scene or numeric id"`
	Rect   string `json:"rect" jsonschema:"required,New frame rectangle as left,top,right,bottom in parent client coordinates"`
	Raise  bool   `json:"raise,omitempty" jsonschema:"When true, restack the window above its siblings' peers as well"`
}

// MoveWindowOutput is the output for the move_window tool.
type MoveWindowOutput struct {
	WholeMask  uint16 `json:"whole_mask"`
	ClientMask uint16 `json:"client_mask"`
	Client     string `json:"client"`
}

// SetStyleInput is the input for the set_style tool.
type SetStyleInput struct {
	Window  string  `json:"window" jsonschema:"required,Window name from the scene or numeric id"`
	Style   string  `json:"style" jsonschema:"required,Style flags, e.g. WS_OVERLAPPEDWINDOW|WS_VISIBLE"`
	ExStyle *string `json:"ex_style,omitempty" jsonschema:"Extended style flags; omitted keeps the current ones"`
}

// SetStyleOutput is the output for the set_style tool.
type SetStyleOutput struct {
	Previous string `json:"previous"`
	Managed  bool   `json:"managed"`
}

// SetTitleInput is the input for the set_title tool.
type SetTitleInput struct {
	Window string `json:"window" jsonschema:"required,Window name from the scene or numeric id"`
	Title  string `json:"title" jsonschema:"required,Window text"`
}

// SetIconInput is the input for the set_icon tool.
type SetIconInput struct {
	Window string `json:"window" jsonschema:"required,Window name from the scene or numeric id"`
	Path   string `json:"path,omitempty" jsonschema:"PNG or BMP file; empty clears the icon"`
	Small  bool   `json:"small,omitempty" jsonschema:"Set the small icon instead of the big one"`
}

// SetIconOutput is the output for the set_icon tool.
type SetIconOutput struct {
	HadPrevious bool `json:"had_previous"`
}

// SetIconicInput is the input for the set_iconic tool.
type SetIconicInput struct {
	Window string `json:"window" jsonschema:"required,Window name from the scene or numeric id"`
	Iconic bool   `json:"iconic" jsonschema:"True to minimize, false to restore"`
}

// ReparentWindowInput is the input for the reparent_window tool.
type ReparentWindowInput struct {
	Window string `json:"window" jsonschema:"required,Window name from the scene or numeric id"`
	Parent string `json:"parent,omitempty" jsonschema:"New parent; empty means the desktop"`
}

// ReparentWindowOutput is the output for the reparent_window tool.
type ReparentWindowOutput struct {
	Previous string `json:"previous"`
}

// DestroyWindowInput is the input for the destroy_window tool.
type DestroyWindowInput struct {
	Window string `json:"window" jsonschema:"required,Window name from the scene or numeric id"`
}

// DestroyWindowOutput is the output for the destroy_window tool.
type DestroyWindowOutput struct {
	Destroyed []string `json:"destroyed"`
}

// ClassifyStyleInput is the input for the classify_style tool.
type ClassifyStyleInput struct {
	Style      string `json:"style" jsonschema:"required,Style flags"`
	ExStyle    string `json:"ex_style,omitempty" jsonschema:"Extended style flags"`
	ClassStyle string `json:"class_style,omitempty" jsonschema:"Class style flags"`
	TopLevel   *bool  `json:"top_level,omitempty" jsonschema:"Whether the window sits directly on the desktop (default: true)"`
}
