package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// sourceProperties are the ways a tool can name its input image.
func sourceProperties(withSession bool) map[string]interface{} {
	props := map[string]interface{}{
		"path": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to the image file",
		},
		"image_base64": map[string]interface{}{
			"type":        "string",
			"description": "Base64-encoded image bytes. A data URI prefix is accepted",
		},
		"mime_type": map[string]interface{}{
			"type":        "string",
			"description": "Media type of image_base64 (e.g., image/jpeg). Sniffed from the bytes when omitted",
		},
	}
	if withSession {
		props["session_id"] = map[string]interface{}{
			"type":        "string",
			"description": "Use the current image of an editor session",
		}
	}
	return props
}

func sessionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Editor session ID returned by editor_open",
	}
}

func percentProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": description,
		"minimum":     0,
		"maximum":     200,
		"default":     100,
	}
}

// withProperties returns a copy of base with extra added.
func withProperties(base map[string]interface{}, extra map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func sessionOnlySchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"session_id": sessionProperty(),
		},
		"required": []string{"session_id"},
	}
}

func documentSchema(extra map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": withProperties(sourceProperties(true), extra),
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Images
		{
			Name:        "image_load",
			Description: "Decode an image and return its dimensions, media type, alpha and size in bytes.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": sourceProperties(true),
			},
		},
		{
			Name:        "image_edit",
			Description: "Rotate, colour-adjust and optionally crop an image in one pass. Returns the re-encoded image as base64 in the source's format (JPEG at quality 90 for lossy output).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(sourceProperties(true), map[string]interface{}{
					"rotation": map[string]interface{}{
						"type":        "integer",
						"description": "Clockwise rotation in degrees. Any value is accepted; the canvas grows to fit",
						"default":     0,
					},
					"brightness": percentProperty("Brightness percentage, 100 = unchanged"),
					"contrast":   percentProperty("Contrast percentage, 100 = unchanged"),
					"saturation": percentProperty("Saturation percentage, 100 = unchanged"),
					"crop": map[string]interface{}{
						"type":        "object",
						"description": "Crop rectangle in percent of the image. Only allowed when rotation is 0; width and height must be at least 10",
						"properties": map[string]interface{}{
							"x": map[string]interface{}{"type": "number"},
							"y": map[string]interface{}{"type": "number"},
							"w": map[string]interface{}{"type": "number"},
							"h": map[string]interface{}{"type": "number"},
						},
						"required": []string{"x", "y", "w", "h"},
					},
				}),
			},
		},

		// Editor sessions
		{
			Name:        "editor_open",
			Description: "Open an interactive editor session on an image. Returns the session state including its session_id.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(sourceProperties(false), map[string]interface{}{
					"viewport_width": map[string]interface{}{
						"type":        "number",
						"description": "Rendered width of the image container in pixels. Defaults to the image width",
					},
					"viewport_height": map[string]interface{}{
						"type":        "number",
						"description": "Rendered height of the image container in pixels. Defaults to the image height",
					},
				}),
			},
		},
		{
			Name:        "editor_state",
			Description: "Return the current state of an editor session.",
			InputSchema: sessionOnlySchema(),
		},
		{
			Name:        "editor_rotate",
			Description: "Rotate the session image 90 degrees left or right, or by an arbitrary number of degrees. Rotating away from 0 leaves crop mode.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionProperty(),
					"direction": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"left", "right"},
						"description": "Rotate 90 degrees counter-clockwise (left) or clockwise (right)",
					},
					"degrees": map[string]interface{}{
						"type":        "integer",
						"description": "Clockwise degrees to add when direction is omitted",
					},
				},
				"required": []string{"session_id"},
			},
		},
		{
			Name:        "editor_adjust",
			Description: "Set brightness, contrast and saturation of the session image. Omitted components keep their current value.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionProperty(),
					"brightness": percentProperty("Brightness percentage, 100 = unchanged"),
					"contrast":   percentProperty("Contrast percentage, 100 = unchanged"),
					"saturation": percentProperty("Saturation percentage, 100 = unchanged"),
				},
				"required": []string{"session_id"},
			},
		},
		{
			Name:        "editor_crop_mode",
			Description: "Turn crop mode on or off. Crop mode is only available when the image is not rotated.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionProperty(),
					"enabled": map[string]interface{}{
						"type":        "boolean",
						"description": "true to show the crop rectangle, false to hide it",
					},
				},
				"required": []string{"session_id", "enabled"},
			},
		},
		{
			Name:        "editor_pointer",
			Description: "Feed a pointer event to the crop rectangle. Pressing on the body starts a move, pressing on the bottom-right handle starts a resize; move updates the rectangle and up ends the drag.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionProperty(),
					"type": map[string]interface{}{
						"type": "string",
						"enum": []string{"down", "move", "up"},
					},
					"target": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"body", "handle", "outside"},
						"description": "What a down event hit. A down outside the rectangle starts no drag. Ignored for move and up",
					},
					"x": map[string]interface{}{
						"type":        "number",
						"description": "Pointer X in viewport pixels",
					},
					"y": map[string]interface{}{
						"type":        "number",
						"description": "Pointer Y in viewport pixels",
					},
				},
				"required": []string{"session_id", "type", "x", "y"},
			},
		},
		{
			Name:        "editor_viewport",
			Description: "Report a new rendered size of the image container. Not allowed during a drag.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionProperty(),
					"width":      map[string]interface{}{"type": "number"},
					"height":     map[string]interface{}{"type": "number"},
				},
				"required": []string{"session_id", "width", "height"},
			},
		},
		{
			Name:        "editor_suggest_crop",
			Description: "Fit the crop rectangle around the detected document content. Not available while rotated.",
			InputSchema: sessionOnlySchema(),
		},
		{
			Name:        "editor_reset",
			Description: "Discard rotation, colour adjustments and the crop rectangle.",
			InputSchema: sessionOnlySchema(),
		},
		{
			Name:        "editor_save",
			Description: "Apply the session's edits and return the result as base64. The result becomes the session's image and the edits are reset.",
			InputSchema: sessionOnlySchema(),
		},
		{
			Name:        "editor_close",
			Description: "Close an editor session and release its image.",
			InputSchema: sessionOnlySchema(),
		},

		// Document tasks
		{
			Name:        "document_ocr",
			Description: "Extract all printed and handwritten text from a document image, keeping its line structure.",
			InputSchema: documentSchema(nil),
		},
		{
			Name:        "document_transcribe_handwriting",
			Description: "Transcribe only the handwritten text of a document image.",
			InputSchema: documentSchema(nil),
		},
		{
			Name:        "document_extract_table",
			Description: "Extract the main table of a document image as headers and rows.",
			InputSchema: documentSchema(nil),
		},
		{
			Name:        "document_extract_fields",
			Description: "Extract labelled fields (name, date, total, ...) from a form or receipt image.",
			InputSchema: documentSchema(map[string]interface{}{
				"fields": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Labels to extract. All fields found are returned when omitted",
				},
			}),
		},
		{
			Name:        "document_remove_handwriting",
			Description: "Return a PNG of the document with handwriting removed. Requires a provider that can produce images.",
			InputSchema: documentSchema(map[string]interface{}{
				"save": map[string]interface{}{
					"type":        "boolean",
					"description": "Also write cleaned-document.png to the output directory",
					"default":     false,
				},
			}),
		},

		// Exports
		{
			Name:        "export_pdf",
			Description: "Write text to a paginated A4 PDF in the output directory.",
			InputSchema: textExportSchema(),
		},
		{
			Name:        "export_word",
			Description: "Write text to a Word-compatible .doc file in the output directory.",
			InputSchema: textExportSchema(),
		},
		{
			Name:        "export_csv",
			Description: "Write a table to a CSV file in the output directory.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"title": map[string]interface{}{
						"type":        "string",
						"description": "File name without extension. Defaults to document",
					},
					"headers": map[string]interface{}{
						"type":  "array",
						"items": map[string]interface{}{"type": "string"},
					},
					"rows": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type":  "array",
							"items": map[string]interface{}{"type": "string"},
						},
					},
				},
				"required": []string{"headers"},
			},
		},
	}
}

func textExportSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"title": map[string]interface{}{
				"type":        "string",
				"description": "Document title, also used as the file name. Defaults to document",
			},
			"text": map[string]interface{}{
				"type":        "string",
				"description": "Text to export. Line breaks are kept",
			},
		},
		"required": []string{"text"},
	}
}
